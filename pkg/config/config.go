package config

import "time"

// Config represents the complete configuration for the substrate service.
// It provides type-safe access to all configuration values with validation.
type Config struct {
	Server   ServerConfig   `koanf:"server"   validate:"required"`
	Database DatabaseConfig `koanf:"database" validate:"required"`
	Redis    RedisConfig    `koanf:"redis"`
	Runtime  RuntimeConfig  `koanf:"runtime"  validate:"required"`
	Billing  BillingConfig  `koanf:"billing"`
	Mailer   MailerConfig   `koanf:"mailer"`
	Assist   AssistConfig   `koanf:"assist"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Host        string        `koanf:"host"         validate:"required"        env:"SERVER_HOST"`
	Port        int           `koanf:"port"         validate:"min=1,max=65535" env:"SERVER_PORT"`
	CORSEnabled bool          `koanf:"cors_enabled"                            env:"SERVER_CORS_ENABLED"`
	Timeout     time.Duration `koanf:"timeout"                                 env:"SERVER_TIMEOUT"`
}

// DatabaseConfig contains database connection configuration.
type DatabaseConfig struct {
	ConnString string          `koanf:"conn_string" env:"DB_CONN_STRING"`
	Host       string          `koanf:"host"        env:"DB_HOST"`
	Port       string          `koanf:"port"        env:"DB_PORT"`
	User       string          `koanf:"user"        env:"DB_USER"`
	Password   SensitiveString `koanf:"password"    env:"DB_PASSWORD"    sensitive:"true"`
	DBName     string          `koanf:"name"        env:"DB_NAME"`
	SSLMode    string          `koanf:"ssl_mode"    env:"DB_SSL_MODE"`
}

// RedisConfig contains Redis connection configuration.
type RedisConfig struct {
	URL      string          `koanf:"url"      env:"REDIS_URL"`
	Host     string          `koanf:"host"     env:"REDIS_HOST"`
	Port     string          `koanf:"port"     env:"REDIS_PORT"`
	Password SensitiveString `koanf:"password" env:"REDIS_PASSWORD" sensitive:"true"`
	DB       int             `koanf:"db"       env:"REDIS_DB"`
}

// RuntimeConfig contains runtime behavior configuration.
type RuntimeConfig struct {
	Environment string `koanf:"environment" validate:"oneof=development staging production" env:"RUNTIME_ENVIRONMENT"`
	LogLevel    string `koanf:"log_level"   validate:"oneof=debug info warn error"          env:"RUNTIME_LOG_LEVEL"`
	LogJSON     bool   `koanf:"log_json"                                                    env:"RUNTIME_LOG_JSON"`
}

// BillingConfig contains payment provider configuration.
type BillingConfig struct {
	APIBaseURL    string          `koanf:"api_base_url"   env:"BILLING_API_BASE_URL"`
	APIKey        SensitiveString `koanf:"api_key"        env:"BILLING_API_KEY"        sensitive:"true"`
	WebhookSecret SensitiveString `koanf:"webhook_secret" env:"BILLING_WEBHOOK_SECRET" sensitive:"true"`
	SuccessURL    string          `koanf:"success_url"    env:"BILLING_SUCCESS_URL"`
	CancelURL     string          `koanf:"cancel_url"     env:"BILLING_CANCEL_URL"`
}

// MailerConfig contains transactional email provider configuration.
type MailerConfig struct {
	APIBaseURL string          `koanf:"api_base_url" env:"MAILER_API_BASE_URL"`
	APIKey     SensitiveString `koanf:"api_key"      env:"MAILER_API_KEY"      sensitive:"true"`
	FromEmail  string          `koanf:"from_email"   env:"MAILER_FROM_EMAIL"`
}

// AssistConfig contains LLM provider configuration.
type AssistConfig struct {
	APIKey      SensitiveString `koanf:"api_key"     env:"ASSIST_API_KEY" sensitive:"true"`
	Model       string          `koanf:"model"       env:"ASSIST_MODEL"`
	MaxTokens   int             `koanf:"max_tokens"  env:"ASSIST_MAX_TOKENS"`
	Temperature float64         `koanf:"temperature" env:"ASSIST_TEMPERATURE"`
}

// Default returns the default configuration values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        3000,
			CORSEnabled: true,
			Timeout:     15 * time.Second,
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    "5432",
			User:    "substrate",
			DBName:  "substrate",
			SSLMode: "disable",
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: "6379",
		},
		Runtime: RuntimeConfig{
			Environment: "development",
			LogLevel:    "info",
		},
		Billing: BillingConfig{
			APIBaseURL: "https://api.stripe.com",
		},
		Mailer: MailerConfig{
			APIBaseURL: "https://api.resend.com",
			FromEmail:  "noreply@substrate.dev",
		},
		Assist: AssistConfig{
			Model:       "gpt-4o-mini",
			MaxTokens:   1024,
			Temperature: 0.2,
		},
	}
}
