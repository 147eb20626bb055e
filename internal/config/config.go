package config

import "errors"

// Config represents the full application configuration.
type Config struct {
	GitHub   GitHubConfig   `yaml:"github"`
	Airtable AirtableConfig `yaml:"airtable"`
	Server   ServerConfig   `yaml:"server"`
	HTTP     HTTPConfig     `yaml:"http"`
	Sync     SyncConfig     `yaml:"sync"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GitHubConfig configures the tracker API client and the bot identity.
type GitHubConfig struct {
	// Token is the personal access token for the bot account.
	Token string `yaml:"token"`

	// BotLogin is the bot's own account name, used to find its prior
	// reviews on a pull request.
	BotLogin string `yaml:"botLogin"`

	// BaseURL overrides the API endpoint (GitHub Enterprise, tests).
	BaseURL string `yaml:"baseURL"`
}

// AirtableConfig configures the tracking-table client.
type AirtableConfig struct {
	APIKey string `yaml:"apiKey"`

	// TableURL is the full records endpoint for the issues table,
	// including base ID and table name.
	TableURL string `yaml:"tableURL"`
}

// ServerConfig configures the webhook listener.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ReadTimeout     string `yaml:"readTimeout"`
	WriteTimeout    string `yaml:"writeTimeout"`
	ShutdownTimeout string `yaml:"shutdownTimeout"`
}

// HTTPConfig holds outbound HTTP client settings.
type HTTPConfig struct {
	Timeout           string  `yaml:"timeout"`
	MaxRetries        int     `yaml:"maxRetries"`
	InitialBackoff    string  `yaml:"initialBackoff"`
	MaxBackoff        string  `yaml:"maxBackoff"`
	BackoffMultiplier float64 `yaml:"backoffMultiplier"`
}

// SyncConfig configures the reconciliation engine.
type SyncConfig struct {
	// RetryInterval is the fixed wait between attempts when the
	// tracking table rate-limits a record creation.
	RetryInterval string `yaml:"retryInterval"`
}

// LoggingConfig configures request/response logging.
type LoggingConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Level         string `yaml:"level"`  // debug, info, error
	Format        string `yaml:"format"` // json, human
	RedactAPIKeys bool   `yaml:"redactAPIKeys"`
}

// Validate checks that the secrets without which the bot cannot talk to
// either remote are present. Called once at startup; a failure is fatal.
func (c Config) Validate() error {
	var errs []error

	if c.GitHub.Token == "" {
		errs = append(errs, errors.New("github.token is required"))
	}
	if c.Airtable.APIKey == "" {
		errs = append(errs, errors.New("airtable.apiKey is required"))
	}
	if c.Airtable.TableURL == "" {
		errs = append(errs, errors.New("airtable.tableURL is required"))
	}

	return errors.Join(errs...)
}
