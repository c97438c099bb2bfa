package email

// Config holds email service configuration.
// Postmark tokens are optional so development environments can fall back to DevSender.
type Config struct {
	PostmarkServerToken  string  `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string  `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string  `env:"SENDER_EMAIL" envDefault:"no-reply@tutorhub.local"`
	SupportEmail         string  `env:"SUPPORT_EMAIL" envDefault:"support@tutorhub.local"`
	DevOutputDir         string  `env:"EMAIL_DEV_DIR" envDefault:"./tmp/emails"`
	RatePerSecond        float64 `env:"EMAIL_RATE_PER_SECOND" envDefault:"10"`
	Burst                int     `env:"EMAIL_BURST" envDefault:"20"`
}

// PostmarkEnabled reports whether both Postmark tokens are set.
func (c Config) PostmarkEnabled() bool {
	return c.PostmarkServerToken != "" && c.PostmarkAccountToken != ""
}
