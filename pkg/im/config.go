package im

// Config represents the configuration for the IM platform client
type Config struct {
	// AppID is the IM application id
	AppID int

	// SecretKey signs user credentials
	SecretKey string

	// SigExpirySeconds is how long an issued user signature stays valid
	SigExpirySeconds int
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.AppID == 0 {
		return ErrInvalidConfig
	}
	if c.SecretKey == "" {
		return ErrInvalidConfig
	}
	if c.SigExpirySeconds <= 0 {
		return ErrInvalidConfig
	}
	return nil
}
