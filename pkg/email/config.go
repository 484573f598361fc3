package email

import "time"

// Config holds settings for every delivery backend.
// Only the fields of the selected backend need to be set.
type Config struct {
	// FromEmail and FromName are the operator defaults used by the ingress
	// when a submission does not carry its own sender.
	FromEmail string `env:"EMAIL_FROM"`
	FromName  string `env:"EMAIL_FROM_NAME"`

	// HTMLBody sends the job body as HTML instead of plain text.
	HTMLBody bool `env:"EMAIL_HTML_BODY" envDefault:"false"`

	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`

	AWSRegion          string `env:"AWS_REGION" envDefault:"us-east-1"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	SESEndpoint        string `env:"SES_ENDPOINT"`
	SESConfigSet       string `env:"SES_CONFIGURATION_SET"`

	SMTPHost     string        `env:"SMTP_HOST"`
	SMTPPort     int           `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string        `env:"SMTP_USER"`
	SMTPPassword string        `env:"SMTP_PASS"`
	SMTPHelo     string        `env:"SMTP_HELO" envDefault:"localhost"`
	SMTPTimeout  time.Duration `env:"SMTP_TIMEOUT" envDefault:"30s"`
	SMTPStartTLS bool          `env:"SMTP_STARTTLS" envDefault:"true"`

	DKIMSelector   string `env:"SMTP_DKIM_SELECTOR"`
	DKIMDomain     string `env:"SMTP_DKIM_DOMAIN"`
	DKIMPrivateKey string `env:"SMTP_DKIM_PRIVATE_KEY"`
	DKIMKeyPath    string `env:"SMTP_DKIM_KEY_PATH"`

	DevDir string `env:"EMAIL_DEV_DIR" envDefault:"./emails"`
}
