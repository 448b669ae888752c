package kuaidi100

// Config represents the configuration for the Kuaidi100 client
type Config struct {
	// Customer is the customer identifier issued by Kuaidi100
	Customer string

	// Key is the signing key paired with the customer identifier
	Key string

	// BaseURL is the Kuaidi100 API base URL
	BaseURL string
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Customer == "" {
		return ErrInvalidConfig
	}
	if c.Key == "" {
		return ErrInvalidConfig
	}
	if c.BaseURL == "" {
		return ErrInvalidConfig
	}
	return nil
}
