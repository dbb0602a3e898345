package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// defaultSecretPrefix marks the placeholder JWT secret shipped in .env examples.
const defaultSecretPrefix = "change-me"

// Config holds all runtime configuration values.  It is built once at
// process start by Load and passed by value to every component that needs
// it; nothing in the application reads the environment after that.
type Config struct {
	Env        string `env:"APP_ENV" env-default:"development"` // environment (development/test/production)
	Port       string `env:"APP_PORT" env-default:"8000"`       // HTTP port to listen on
	AppName    string `env:"APP_NAME" env-default:"PublicVoice"`
	AppVersion string `env:"APP_VERSION" env-default:"1.0.0"`

	DBUser string `env:"DB_USER" env-required:"true"` // database username
	DBPass string `env:"DB_PASS"`                     // database password (optional)
	DBHost string `env:"DB_HOST" env-default:"127.0.0.1"`
	DBPort string `env:"DB_PORT" env-default:"3306"`
	DBName string `env:"DB_NAME" env-required:"true"`

	JWTSecret    string `env:"JWT_SECRET" env-required:"true"`    // secret used to sign JWTs
	JWTAlgorithm string `env:"JWT_ALGORITHM" env-default:"HS256"` // HS256, HS384 or HS512
	AccessTTLMin int    `env:"ACCESS_TOKEN_TTL_MIN" env-default:"30"`
	BcryptCost   int    `env:"BCRYPT_COST" env-default:"12"`

	CORSOrigins []string `env:"CORS_ORIGINS" env-separator:"," env-default:"http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"`
	FrontendURL string   `env:"FRONTEND_URL" env-default:"http://localhost:5173"` // base of password reset links

	UploadDir      string `env:"UPLOAD_DIR" env-default:"uploads"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" env-default:"5242880"` // 5 MB

	OpenAIKey   string        `env:"OPENAI_API_KEY"` // empty disables enrichment
	OpenAIBase  string        `env:"OPENAI_API_BASE"`
	OpenAIModel string        `env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`
	AITimeout   time.Duration `env:"AI_TIMEOUT" env-default:"20s"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" env-default:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM_EMAIL" env-default:"no-reply@publicvoice.local"`
	SMTPUseTLS   bool   `env:"SMTP_USE_TLS" env-default:"true"`

	RabbitURL string `env:"RABBITMQ_URL"` // empty sends reset emails directly over SMTP
	MailQueue string `env:"MAIL_QUEUE" env-default:"mail.password_reset"`

	Redis     RedisConfig
	RateLimit RateLimitConfig
}

// Load reads an optional .env file and then the process environment into a
// Config.  Missing required variables or an unsafe production setup are
// reported as errors so that main can exit with a clear message.
func Load() (Config, error) {
	_ = godotenv.Load() // .env is optional; real environment wins
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.RateLimit.normalize(); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.IsProduction() && strings.HasPrefix(c.JWTSecret, defaultSecretPrefix) {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.IsProduction() && c.SMTPHost == "" && c.RabbitURL == "" {
		return errors.New("SMTP_HOST or RABBITMQ_URL must be set in production")
	}
	switch c.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("unsupported JWT_ALGORITHM %q", c.JWTAlgorithm)
	}
	if c.AccessTTLMin <= 0 {
		return errors.New("ACCESS_TOKEN_TTL_MIN must be positive")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST out of range: %d", c.BcryptCost)
	}
	return nil
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production") || strings.EqualFold(c.Env, "prod")
}

// AccessTTL returns the configured access token lifetime.
func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.AccessTTLMin) * time.Minute
}

// EnrichmentEnabled reports whether an AI credential is configured.
func (c Config) EnrichmentEnabled() bool {
	return strings.TrimSpace(c.OpenAIKey) != ""
}
