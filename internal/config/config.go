package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

type Supabase struct {
	URL        string
	ServiceKey string
	AnonKey    string
	JWTSecret  string
}

// Configured reports whether the handlers can reach the platform at all.
func (s Supabase) Configured() bool {
	return s.URL != "" && s.ServiceKey != ""
}

type Config struct {
	Port           int
	LogLevel       zapcore.Level
	LogFormat      string
	MaxConnections int

	Supabase Supabase

	DatabaseURL string
	DBHost      string
	DBPort      int
	DBUser      string
	DBPassword  string
	DBName      string

	EmbeddingHost   string
	EmbeddingModel  string
	EmbeddingAPIKey string

	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
}

func Load() *Config {
	// .env is optional
	_ = godotenv.Load()

	dbPort, err := strconv.Atoi(os.Getenv("DB_PORT"))
	if err != nil {
		dbPort = 5432
	}

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil || port <= 0 {
		port = 8080
	}

	maxConns, err := strconv.Atoi(os.Getenv("MAX_CONNECTIONS"))
	if err != nil || maxConns <= 0 {
		maxConns = 256
	}

	return &Config{
		Port:           port,
		LogLevel:       parseLevel(os.Getenv("LOG_LEVEL")),
		LogFormat:      strings.ToLower(strings.TrimSpace(os.Getenv("LOG_FORMAT"))),
		MaxConnections: maxConns,

		Supabase: Supabase{
			URL:        strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
			ServiceKey: os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
			AnonKey:    os.Getenv("SUPABASE_ANON_KEY"),
			JWTSecret:  os.Getenv("SUPABASE_JWT_SECRET"),
		},

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      os.Getenv("DB_HOST"),
		DBPort:      dbPort,
		DBUser:      os.Getenv("DB_USER"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      os.Getenv("DB_NAME"),

		EmbeddingHost:   getenv("EMBEDDING_HOST", "http://localhost:11434/v1"),
		EmbeddingModel:  getenv("EMBEDDING_MODEL", "gte-small"),
		EmbeddingAPIKey: getenv("EMBEDDING_API_KEY", "none"),

		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:   getenv("OPENAI_MODEL", "gpt-4o-mini"),
	}
}

// ConnString returns DATABASE_URL, or a DSN assembled from the DB_* variables.
// Empty means no direct database access is configured.
func (c *Config) ConnString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	if c.DBHost == "" {
		return ""
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "", "info":
		return zapcore.InfoLevel
	default:
		return zapcore.WarnLevel
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
