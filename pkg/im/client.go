package im

import (
	"bytes"
	"compress/zlib"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidConfig = errors.New("invalid im configuration")

// Client issues chat credentials for the IM platform.
type Client struct {
	config Config
}

// NewClient creates a new IM client with the given configuration
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Client{config: config}, nil
}

// GetConfig returns the client configuration
func (c *Client) GetConfig() Config {
	return c.config
}

type sigDocument struct {
	Ver        string `json:"TLS.ver"`
	Identifier string `json:"TLS.identifier"`
	SDKAppID   int    `json:"TLS.sdkappid"`
	Expire     int    `json:"TLS.expire"`
	Time       int64  `json:"TLS.time"`
	Sig        string `json:"TLS.sig"`
}

// GenUserSig issues a signed credential the client SDK presents when
// logging in to the chat service.
func (c *Client) GenUserSig(identifier string) (string, error) {
	now := time.Now().Unix()

	content := fmt.Sprintf(
		"TLS.identifier:%s\nTLS.sdkappid:%d\nTLS.time:%d\nTLS.expire:%d\n",
		identifier, c.config.AppID, now, c.config.SigExpirySeconds,
	)
	mac := hmac.New(sha256.New, []byte(c.config.SecretKey))
	mac.Write([]byte(content))
	sig := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	doc := sigDocument{
		Ver:        "2.0",
		Identifier: identifier,
		SDKAppID:   c.config.AppID,
		Expire:     c.config.SigExpirySeconds,
		Time:       now,
		Sig:        sig,
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}

	var compressed bytes.Buffer
	w := zlib.NewWriter(&compressed)
	if _, err := w.Write(payload); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	return base64URLEncode(compressed.Bytes()), nil
}

// base64URLEncode uses the sig-safe alphabet the chat SDK expects:
// '+' -> '*', '/' -> '-', '=' -> '_'.
func base64URLEncode(data []byte) string {
	encoded := base64.StdEncoding.EncodeToString(data)
	out := make([]byte, len(encoded))
	for i := 0; i < len(encoded); i++ {
		switch encoded[i] {
		case '+':
			out[i] = '*'
		case '/':
			out[i] = '-'
		case '=':
			out[i] = '_'
		default:
			out[i] = encoded[i]
		}
	}
	return string(out)
}

// ConversationID derives the stable one-to-one conversation id for a
// pair of users: the smaller id always comes first.
func ConversationID(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("p2p_%d_%d", a, b)
}
