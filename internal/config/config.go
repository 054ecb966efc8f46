package config

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Catalog   CatalogConfig
	Booking   BookingConfig
	Location  LocationConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" envDefault:"localhost"`
	Port            int           `env:"SERVER_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	AllowedOrigins  []string      `env:"SERVER_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

type PostgresConfig struct {
	User     string `env:"POSTGRES_USER,required"`
	Password string `env:"POSTGRES_PASSWORD,required"`
	Name     string `env:"POSTGRES_DB,required"`
	Host     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	SSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	MaxConns int32  `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type AuthConfig struct {
	JWTSecret string `env:"AUTH_JWT_SECRET,required,notEmpty"`
	JWTIssuer string `env:"AUTH_JWT_ISSUER"`
}

// CatalogConfig selects the listing data source. With an empty BaseURL the
// service reads its own database.
type CatalogConfig struct {
	BaseURL     string        `env:"CATALOG_BASE_URL"`
	Token       string        `env:"CATALOG_TOKEN"`
	Timeout     time.Duration `env:"CATALOG_TIMEOUT" envDefault:"5s"`
	MaxTries    uint          `env:"CATALOG_MAX_TRIES" envDefault:"3"`
	RatePerSec  float64       `env:"CATALOG_RATE_PER_SEC" envDefault:"50"`
	ListingTTL  time.Duration `env:"CATALOG_LISTING_TTL" envDefault:"60s"`
	SessionsTTL time.Duration `env:"CATALOG_SESSIONS_TTL" envDefault:"15s"`
}

type BookingConfig struct {
	Timezone     string        `env:"BOOKING_TIMEZONE" envDefault:"Asia/Kolkata"`
	SelectionTTL time.Duration `env:"BOOKING_SELECTION_TTL" envDefault:"30m"`
	WindowMonths int           `env:"BOOKING_WINDOW_MONTHS" envDefault:"3"`
}

type LocationConfig struct {
	DefaultLat float64 `env:"DEFAULT_LAT" envDefault:"19.0760"`
	DefaultLng float64 `env:"DEFAULT_LNG" envDefault:"72.8777"`
}

type RateLimitConfig struct {
	PerMinute int `env:"RATE_LIMIT_PER_MIN" envDefault:"60"`
}

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if _, err := time.LoadLocation(c.Booking.Timezone); err != nil {
		return fmt.Errorf("invalid BOOKING_TIMEZONE: %w", err)
	}

	if c.Booking.WindowMonths < 1 {
		return fmt.Errorf("invalid BOOKING_WINDOW_MONTHS: %d", c.Booking.WindowMonths)
	}

	if c.Booking.SelectionTTL <= 0 {
		return fmt.Errorf("invalid BOOKING_SELECTION_TTL: %s", c.Booking.SelectionTTL)
	}

	if c.RateLimit.PerMinute < 1 {
		return fmt.Errorf("invalid RATE_LIMIT_PER_MIN: %d", c.RateLimit.PerMinute)
	}

	if c.Catalog.BaseURL != "" {
		u, err := url.Parse(c.Catalog.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid CATALOG_BASE_URL: %q", c.Catalog.BaseURL)
		}
	}

	return nil
}

// BookingLocation returns the booking time zone. validate has already checked it.
func (c *Config) BookingLocation() *time.Location {
	loc, err := time.LoadLocation(c.Booking.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Postgres.User, c.Postgres.Password),
		Host:     c.Postgres.Host + ":" + strconv.Itoa(c.Postgres.Port),
		Path:     c.Postgres.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.Postgres.SSLMode),
	}
	return u.String()
}

func (c *Config) ServerAddr() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}
