package config

import (
	"time" // Durations for TTLs

	"github.com/joho/godotenv"             // For loading .env files
	"github.com/kelseyhightower/envconfig" // Environment to struct decoding
)

// Config holds the application configuration
type Config struct {
	AppPort    string `envconfig:"APP_PORT" default:"5000"`         // Application port
	DBUser     string `envconfig:"DB_USER" default:"root"`          // Database user
	DBPassword string `envconfig:"DB_PASSWORD"`                     // Database password
	DBHost     string `envconfig:"DB_HOST" default:"127.0.0.1"`     // Database host
	DBPort     string `envconfig:"DB_PORT" default:"3306"`          // Database port
	DBName     string `envconfig:"DB_NAME" default:"krishna_store"` // Database name

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"` // JWT secret key
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`      // Token lifetime

	RedisAddr string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"` // Redis server address
	RedisPass string `envconfig:"REDIS_PASS"`                          // Redis password
	RedisDB   int    `envconfig:"REDIS_DB" default:"0"`                // Redis database number

	IsProd         bool     `envconfig:"IS_PROD" default:"false"` // Is production environment
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS"`         // Storefront and admin SPA origins, comma separated

	OTPLength       int           `envconfig:"OTP_LENGTH" default:"6"`
	OTPTTL          time.Duration `envconfig:"OTP_TTL" default:"10m"`
	OTPResendWindow time.Duration `envconfig:"OTP_RESEND_WINDOW" default:"60s"`
	OTPMaxAttempts  int           `envconfig:"OTP_MAX_ATTEMPTS" default:"5"`

	TwilioSID   string `envconfig:"TWILIO_ACCOUNT_SID"`
	TwilioToken string `envconfig:"TWILIO_AUTH_TOKEN"`
	TwilioFrom  string `envconfig:"TWILIO_FROM_NUMBER"` // Empty means SMS are only logged

	BirthdayHour           int           `envconfig:"BIRTHDAY_HOUR" default:"9"`                // Local hour of the daily birthday run
	StrictOrderTransitions bool          `envconfig:"ORDER_STRICT_TRANSITIONS" default:"false"` // Reject illegal status moves
	ShopCacheTTL           time.Duration `envconfig:"SHOP_CACHE_TTL" default:"60s"`             // Public shop info cache lifetime
	ProductCacheTTL        time.Duration `envconfig:"PRODUCT_CACHE_TTL" default:"5m"`           // Featured products cache lifetime
}

// LoadConfig loads configuration from the environment, reading .env first if present
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // Load .env file if present
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DSN builds the MySQL Data Source Name
func (c *Config) DSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?charset=utf8mb4&parseTime=true&loc=Local"
}
