package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/docextract/constants"
)

// Config holds all application configuration
type Config struct {
	Database   DatabaseConfig
	Server     ServerConfig
	OCR        OCRConfig
	LLM        LLMConfig
	Extraction ExtractionConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr     string
	Workers      int
	PollInterval time.Duration
	InboxDir     string
}

// OCRConfig holds local text recognition configuration
type OCRConfig struct {
	Tesseract        string
	TesseractLang    string
	TessdataDir      string
	ArtifactCacheDir string
	PSM              int
}

// LLMConfig holds cloud vision model configuration
type LLMConfig struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
	RPM         int
}

// ExtractionConfig holds orchestrator defaults
type ExtractionConfig struct {
	PreferredProvider string
	EnableFallback    bool
	MockMode          bool
	ProviderTimeout   time.Duration
	MaxConcurrent     int
	MaxRetries        int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", ""),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			GRPCAddr:     getEnv("GRPC_ADDR", ":8080"),
			Workers:      getEnvAsInt("WORKERS", 4),
			PollInterval: getEnvAsDuration("POLL_INTERVAL", 10*time.Second),
			InboxDir:     getEnv("INBOX_DIR", ""),
		},
		OCR: OCRConfig{
			Tesseract:        getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang:    getEnv("TESSERACT_LANG", "eng"),
			TessdataDir:      getEnv("TESSDATA_PREFIX", ""),
			ArtifactCacheDir: getEnv("ARTIFACT_CACHE_DIR", ""),
			PSM:              getEnvAsInt("TESSERACT_PSM", 0),
		},
		LLM: LLMConfig{
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", ""),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
			RPM:         getEnvAsInt("OPENAI_RPM", 60),
		},
		Extraction: ExtractionConfig{
			PreferredProvider: getEnv("OCR_PREFERRED_PROVIDER", constants.ProviderAuto),
			EnableFallback:    getEnvAsBool("OCR_ENABLE_FALLBACK", true),
			MockMode:          getEnvAsBool("OCR_MOCK_MODE", false),
			ProviderTimeout:   getEnvAsDuration("OCR_PROVIDER_TIMEOUT", 60*time.Second),
			MaxConcurrent:     getEnvAsInt("OCR_MAX_CONCURRENT", 4),
			MaxRetries:        getEnvAsInt("OCR_MAX_RETRIES", constants.MaxRetries),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	switch c.Extraction.PreferredProvider {
	case constants.ProviderAuto, constants.ProviderCloud, constants.ProviderLocal, constants.ProviderMock:
	default:
		return NewAppError("CONFIG_ERROR", "OCR_PREFERRED_PROVIDER must be one of auto|cloud|local|mock", ErrInvalidInput)
	}
	if c.Extraction.MaxRetries < 0 || c.Extraction.MaxRetries > constants.MaxRetries {
		return NewAppError("CONFIG_ERROR", "OCR_MAX_RETRIES must be between 0 and 3", ErrInvalidInput)
	}
	if c.Extraction.MaxConcurrent < 0 {
		return NewAppError("CONFIG_ERROR", "OCR_MAX_CONCURRENT must not be negative", ErrInvalidInput)
	}
	return nil
}

// RequireDatabase validates settings needed by the DB-backed binaries.
func (c *Config) RequireDatabase() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" {
		return NewAppError("CONFIG_ERROR", "GRPC_ADDR is required", ErrInvalidInput)
	}
	return nil
}
