package service

import (
	"errors"
	"strconv"

	"github.com/zywang/bookmart-backend/internal/app/repository"
	"github.com/zywang/bookmart-backend/pkg/im"
	"github.com/zywang/bookmart-backend/pkg/logger"
	"gorm.io/gorm"
)

var ErrChatWithSelf = errors.New("cannot open a conversation with yourself")

// ChatCredential is everything a client needs to sign in to the chat
// service.
type ChatCredential struct {
	AppID   int    `json:"app_id"`
	UserID  string `json:"user_id"`
	UserSig string `json:"user_sig"`
}

// Conversation points a client at the one-to-one channel with a peer.
type Conversation struct {
	ConversationID string `json:"conversation_id"`
	PeerID         uint   `json:"peer_id"`
	PeerNickname   string `json:"peer_nickname"`
	PeerAvatar     string `json:"peer_avatar"`
}

type IMService interface {
	IssueCredential(userID uint) (*ChatCredential, error)
	OpenConversation(userID, peerID uint) (*Conversation, error)
}

type imService struct {
	client   *im.Client
	userRepo repository.UserRepository
}

func NewIMService(client *im.Client, userRepo repository.UserRepository) IMService {
	return &imService{
		client:   client,
		userRepo: userRepo,
	}
}

func (s *imService) IssueCredential(userID uint) (*ChatCredential, error) {
	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	identifier := strconv.FormatUint(uint64(userID), 10)
	sig, err := s.client.GenUserSig(identifier)
	if err != nil {
		logger.Error("Failed to generate chat credential", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	return &ChatCredential{
		AppID:   s.client.GetConfig().AppID,
		UserID:  identifier,
		UserSig: sig,
	}, nil
}

func (s *imService) OpenConversation(userID, peerID uint) (*Conversation, error) {
	if userID == peerID {
		return nil, ErrChatWithSelf
	}

	peer, err := s.userRepo.FindByID(peerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	conv := &Conversation{
		ConversationID: im.ConversationID(userID, peerID),
		PeerID:         peerID,
		PeerNickname:   "unknown user",
	}
	if peer.Profile != nil {
		conv.PeerNickname = peer.Profile.Nickname
		conv.PeerAvatar = peer.Profile.AvatarURL
	}
	return conv, nil
}
