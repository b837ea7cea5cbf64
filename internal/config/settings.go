package config

// FullConfig is the runtime settings document stored in the options table
// (row name="configs"). Operators edit it through /admin/configs; the cached
// copy lives in the configs service.
type FullConfig struct {
	SEO          SEOConfig    `json:"seo"`
	URL          URLConfig    `json:"url"`
	MailOptions  MailOptions  `json:"mail_options"`
	AuthSecurity AuthSecurity `json:"auth_security"`
}

type SEOConfig struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

type URLConfig struct {
	// WebURL is the public site, ServerURL the API host. Confirmation links
	// are built from ServerURL, falling back to WebURL.
	WebURL    string `json:"web_url"`
	ServerURL string `json:"server_url"`
}

type MailOptions struct {
	Enable   bool          `json:"enable"`
	Provider string        `json:"provider"` // "smtp" | "resend"
	From     string        `json:"from"`
	SMTP     *SMTPConfig   `json:"smtp"`
	Resend   *ResendConfig `json:"resend"`
}

type SMTPConfig struct {
	Host   string `json:"host"`
	Port   int    `json:"port"`
	Secure bool   `json:"secure"`
	User   string `json:"user"`
	Pass   string `json:"pass"`
}

type ResendConfig struct {
	APIKey string `json:"api_key"`
}

type AuthSecurity struct {
	DisablePasswordLogin bool `json:"disable_password_login"`
}

func DefaultFullConfig() FullConfig {
	return FullConfig{
		SEO: SEOConfig{
			Title:       "Newsletter",
			Description: "Sign up to get every issue in your inbox.",
			Keywords:    []string{},
		},
		URL: URLConfig{
			WebURL:    "http://127.0.0.1:8000",
			ServerURL: "http://127.0.0.1:8000",
		},
		MailOptions: MailOptions{
			Enable:   false,
			Provider: "smtp",
			From:     "",
			SMTP: &SMTPConfig{
				Host:   "",
				Port:   465,
				Secure: true,
				User:   "",
				Pass:   "",
			},
			Resend: &ResendConfig{
				APIKey: "",
			},
		},
		AuthSecurity: AuthSecurity{
			DisablePasswordLogin: false,
		},
	}
}
