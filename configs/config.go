package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"littlelemon/entity"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver  string
	DBSource  string
	Port      string
	JWTSecret string
	JWTTTL    time.Duration

	LogLevel  string
	LogFormat string

	ThrottleAnon Rate
	ThrottleUser Rate
	RedisAddr    string

	CORSOrigins []string

	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// Rate is a request budget such as "20/minute".
type Rate struct {
	Limit  int
	Period time.Duration
}

func (r Rate) String() string { return fmt.Sprintf("%d/%s", r.Limit, r.Period) }

// LoadConfig reads .env (when present) and the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	ttl, err := time.ParseDuration(getEnv("JWT_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("JWT_TTL: %w", err)
	}
	anon, err := ParseRate(getEnv("THROTTLE_ANON", "20/minute"))
	if err != nil {
		return nil, fmt.Errorf("THROTTLE_ANON: %w", err)
	}
	user, err := ParseRate(getEnv("THROTTLE_USER", "100/minute"))
	if err != nil {
		return nil, fmt.Errorf("THROTTLE_USER: %w", err)
	}

	adminPassword := getEnv("ADMIN_PASSWORD", "")
	if len(adminPassword) > entity.MaxPasswordBytes {
		return nil, fmt.Errorf("ADMIN_PASSWORD must be at most %d bytes", entity.MaxPasswordBytes)
	}

	return &Config{
		DBDriver:      getEnv("DB_DRIVER", "sqlite"),
		DBSource:      getEnv("DB_SOURCE", "littlelemon.db"),
		Port:          getEnv("PORT", "8000"),
		JWTSecret:     getEnv("JWT_SECRET", "changeme"),
		JWTTTL:        ttl,
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
		ThrottleAnon:  anon,
		ThrottleUser:  user,
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "*")),
		AdminUsername: getEnv("ADMIN_USERNAME", ""),
		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: adminPassword,
	}, nil
}

// ParseRate accepts "<n>/<second|minute|hour|day>".
func ParseRate(s string) (Rate, error) {
	num, period, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return Rate{}, fmt.Errorf("invalid rate %q", s)
	}
	n, err := strconv.Atoi(num)
	if err != nil || n <= 0 {
		return Rate{}, fmt.Errorf("invalid rate %q", s)
	}
	var d time.Duration
	switch strings.ToLower(period) {
	case "s", "sec", "second":
		d = time.Second
	case "m", "min", "minute":
		d = time.Minute
	case "h", "hour":
		d = time.Hour
	case "d", "day":
		d = 24 * time.Hour
	default:
		return Rate{}, fmt.Errorf("invalid rate period %q", period)
	}
	return Rate{Limit: n, Period: d}, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
