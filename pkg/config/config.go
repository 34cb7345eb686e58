package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string

	ServerPort int

	DatabaseURL string

	JWTSecret      []byte
	JWTAlgorithm   string
	AccessTokenTTL time.Duration

	BcryptCost int

	KafkaBrokers []string
	KafkaTopic   string

	LogLevel string
}

// Load reads the given dotenv files (".env" when none are given) and then the
// process environment. Variables already set in the environment win over the
// files. Missing files are skipped.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	ttl, err := EnvDurationDefault("JWT_ACCESS_TTL", 20*time.Minute)
	if err != nil {
		return Config{}, err
	}
	port, err := EnvIntDefault("SERVER_PORT", 8080)
	if err != nil {
		return Config{}, err
	}
	cost, err := EnvIntDefault("BCRYPT_COST", 10)
	if err != nil {
		return Config{}, err
	}

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "auth"),

		ServerPort: port,

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret:      []byte(os.Getenv("JWT_SECRET")),
		JWTAlgorithm:   EnvDefault("JWT_ALGORITHM", "HS256"),
		AccessTokenTTL: ttl,

		BcryptCost: cost,

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   EnvDefault("KAFKA_TOPIC", "user_events"),

		LogLevel: EnvDefault("LOG_LEVEL", "info"),
	}, nil
}

func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.ServerPort)
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%w: env %s=%q: %w", ErrInvalidValue, key, v, err)
	}
	return n, nil
}

func EnvDurationDefault(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%w: env %s: %w", ErrInvalidValue, key, err)
	}
	return d, nil
}
