package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/joseph-ayodele/nutrilabel/constants"
	"github.com/joseph-ayodele/nutrilabel/internal/nutrition"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	OCR      OCRConfig
	LLM      LLMConfig
	Parse    ParseConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver          string // sqlite | postgres
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string
	MCPAddr  string // empty disables the MCP tool endpoint
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Tesseract   string
	TessdataDir string
	Language    string
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	BaseURL     string
	Model       string
	APIKey      string
	Temperature float32
	Timeout     time.Duration
	Vision      bool
}

// ParseConfig holds label-parsing defaults
type ParseConfig struct {
	DefaultRegion      constants.Region
	MaxServingCalories float64
	CeilingCarbs       float64
	CeilingSugars      float64
	CeilingFiber       float64
	CeilingProtein     float64
	CeilingFat         float64
}

// LoadDotEnv loads a .env file when present; a missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	defaults := nutrition.DefaultLimits()
	region, _ := constants.ParseRegion(getEnv("DEFAULT_REGION", string(constants.DefaultRegion)))

	return &Config{
		Database: DatabaseConfig{
			Driver:          strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			DSN:             getEnv("DB_URL", "file:nutrilabel.db?_pragma=foreign_keys(1)"),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			GRPCAddr: getEnv("GRPC_ADDR", ":8080"),
			MCPAddr:  getEnv("MCP_ADDR", ""),
		},
		OCR: OCRConfig{
			Tesseract:   getEnv("TESSERACT_BIN", "tesseract"),
			TessdataDir: getEnv("TESSDATA_PREFIX", ""),
			Language:    getEnv("TESSERACT_LANG", "eng"),
		},
		LLM: LLMConfig{
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
			Vision:      getEnvAsBool("OPENAI_VISION", false),
		},
		Parse: ParseConfig{
			DefaultRegion:      region,
			MaxServingCalories: getEnvAsFloat64("MAX_SERVING_CALORIES", defaults.MaxServingCalories),
			CeilingCarbs:       getEnvAsFloat64("UK_CEILING_CARBS", defaults.ServingCeilings[nutrition.FieldTotalCarbs]),
			CeilingSugars:      getEnvAsFloat64("UK_CEILING_SUGARS", defaults.ServingCeilings[nutrition.FieldSugars]),
			CeilingFiber:       getEnvAsFloat64("UK_CEILING_FIBRE", defaults.ServingCeilings[nutrition.FieldFiber]),
			CeilingProtein:     getEnvAsFloat64("UK_CEILING_PROTEIN", defaults.ServingCeilings[nutrition.FieldProtein]),
			CeilingFat:         getEnvAsFloat64("UK_CEILING_FAT", defaults.ServingCeilings[nutrition.FieldFat]),
		},
	}
}

// Limits converts the parse settings into parser limits.
func (p ParseConfig) Limits() nutrition.Limits {
	l := nutrition.DefaultLimits()
	if p.MaxServingCalories > 0 {
		l.MaxServingCalories = p.MaxServingCalories
	}
	return l.
		WithCeiling(nutrition.FieldTotalCarbs, p.CeilingCarbs).
		WithCeiling(nutrition.FieldSugars, p.CeilingSugars).
		WithCeiling(nutrition.FieldFiber, p.CeilingFiber).
		WithCeiling(nutrition.FieldProtein, p.CeilingProtein).
		WithCeiling(nutrition.FieldFat, p.CeilingFat)
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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
	v := NewValidator().
		Field("DB_DRIVER", c.Database.Driver, Required, OneOf("sqlite", "postgres")).
		Field("DB_URL", c.Database.DSN, Required).
		Field("GRPC_ADDR", c.Server.GRPCAddr, Required).
		Field("DEFAULT_REGION", string(c.Parse.DefaultRegion), OneOf(constants.RegionsAsStringSlice()...)).
		Field("MAX_SERVING_CALORIES", c.Parse.MaxServingCalories, NonNegative)
	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}
