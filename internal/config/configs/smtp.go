package configs

// SMTP holds the global fallback SMTP endpoint. Organizations may store
// their own credentials; when they have none, mail goes out through this
// endpoint. SSL selects implicit TLS (port 465 style) instead of STARTTLS.
type SMTP struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM" envDefault:"no-reply@mailburst.local"`
	FromName string `env:"FROM_NAME" envDefault:"Mailburst"`
	SSL      bool   `env:"SSL" envDefault:"false"`
}
