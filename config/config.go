package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultServerPort       = 8080
	defaultCommentaryModel  = "gpt-4o-mini"
	defaultCommentaryAPIURL = "https://api.openai.com/v1"
)

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicBaseURL   string
}

// Enabled reports whether archiving to R2 was configured.
func (c R2Config) Enabled() bool {
	return c.AccountID != ""
}

type CommentaryConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type Config struct {
	DatabaseURL           string
	JWTSecretKey          string
	OrganizerPasswordHash string
	ServerPort            int
	RedisURL              string
	R2                    R2Config
	Commentary            CommentaryConfig
	CORSAllowedOrigins    []string
}

// Load reads the configuration from the environment, after loading .env if present.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return loadFrom(os.Getenv)
}

func loadFrom(getenv func(string) string) (*Config, error) {
	dbURL := getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	passwordHash := getenv("ORGANIZER_PASSWORD_HASH")
	if passwordHash == "" {
		return nil, fmt.Errorf("ORGANIZER_PASSWORD_HASH environment variable is not set")
	}

	port := defaultServerPort
	if portStr := getenv("SERVER_PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
		}
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	r2 := R2Config{
		AccountID:       getenv("R2_ACCOUNT_ID"),
		AccessKeyID:     getenv("R2_ACCESS_KEY_ID"),
		SecretAccessKey: getenv("R2_SECRET_ACCESS_KEY"),
		BucketName:      getenv("R2_BUCKET_NAME"),
		PublicBaseURL:   getenv("R2_PUBLIC_BASE_URL"),
	}
	if err := validateR2(r2); err != nil {
		return nil, err
	}

	commentary := CommentaryConfig{
		APIKey:  getenv("COMMENTARY_API_KEY"),
		Model:   getenv("COMMENTARY_MODEL"),
		BaseURL: getenv("COMMENTARY_BASE_URL"),
	}
	if commentary.Model == "" {
		commentary.Model = defaultCommentaryModel
	}
	if commentary.BaseURL == "" {
		commentary.BaseURL = defaultCommentaryAPIURL
	}

	return &Config{
		DatabaseURL:           dbURL,
		JWTSecretKey:          jwtKey,
		OrganizerPasswordHash: passwordHash,
		ServerPort:            port,
		RedisURL:              getenv("REDIS_URL"),
		R2:                    r2,
		Commentary:            commentary,
		CORSAllowedOrigins:    splitOrigins(getenv("CORS_ALLOWED_ORIGINS")),
	}, nil
}

func validateR2(c R2Config) error {
	fields := []string{c.AccountID, c.AccessKeyID, c.SecretAccessKey, c.BucketName, c.PublicBaseURL}
	set := 0
	for _, f := range fields {
		if f != "" {
			set++
		}
	}
	if set != 0 && set != len(fields) {
		return errors.New("R2 configuration is partial: set all R2_* variables or none")
	}
	return nil
}

func splitOrigins(raw string) []string {
	origins := make([]string, 0)
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
