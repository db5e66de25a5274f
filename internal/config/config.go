package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultDBPath      = "./dev.db"
	defaultPort        = "8080"
	defaultEnv         = "dev"
	defaultLogLevel    = "info"
	defaultLogFormat   = "tint"
	defaultFluentPort  = 24224
	defaultQuotesTable = "quotes"

	BackendSQLite   = "sqlite"
	BackendDynamoDB = "dynamodb"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Port     string
	DBPath   string
	AppEnv   string
	AppName  string
	LogLevel string
	// LogFormat is one of tint, json or text.
	LogFormat string

	FluentEnabled bool
	FluentHost    string
	FluentPort    int

	QuotesBackend    string
	QuotesTable      string
	AWSRegion        string
	DynamoDBEndpoint string

	AdminToken   string
	CORSOrigins  []string
	RateCardPath string
}

// IsDev reports whether the service runs in a local development environment.
func (c Config) IsDev() bool {
	return c.AppEnv == "" || c.AppEnv == "dev" || c.AppEnv == "development"
}

// Load reads environment variables and returns a populated Config. Values
// from the dotenv files fill only variables that are not already set.
func Load(envFiles ...string) Config {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, path := range envFiles {
		// Best-effort: production uses real env injection.
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Printf("warning: could not load %s: %v", path, err)
		}
	}

	cfg := Config{
		Port:          getEnvAsString("PORT", defaultPort),
		DBPath:        getEnvAsString("DB_PATH", defaultDBPath),
		AppEnv:        getEnvAsString("APP_ENV", defaultEnv),
		AppName:       getEnvAsString("APP_NAME", "renoquote"),
		LogLevel:      getEnvAsString("LOG_LEVEL", defaultLogLevel),
		LogFormat:     strings.ToLower(getEnvAsString("LOG_FORMAT", defaultLogFormat)),
		FluentEnabled: getEnvAsBool("FLUENT_ENABLED", false),
		FluentHost:    os.Getenv("FLUENT_HOST"),
		FluentPort:    getEnvAsInt("FLUENT_PORT", defaultFluentPort),

		QuotesBackend:    strings.ToLower(getEnvAsString("QUOTES_BACKEND", BackendSQLite)),
		QuotesTable:      getEnvAsString("QUOTES_TABLE", defaultQuotesTable),
		AWSRegion:        os.Getenv("AWS_REGION"),
		DynamoDBEndpoint: os.Getenv("DYNAMODB_ENDPOINT"),

		AdminToken:   os.Getenv("ADMIN_TOKEN"),
		CORSOrigins:  splitList(os.Getenv("CORS_ORIGINS")),
		RateCardPath: os.Getenv("RATECARD_PATH"),
	}

	if cfg.FluentEnabled && cfg.FluentHost == "" {
		log.Print("warning: FLUENT_ENABLED is true but FLUENT_HOST is not set, disabling fluent")
		cfg.FluentEnabled = false
	}
	switch cfg.LogFormat {
	case "tint", "json", "text":
	default:
		log.Printf("warning: unknown LOG_FORMAT %q, using %s", cfg.LogFormat, defaultLogFormat)
		cfg.LogFormat = defaultLogFormat
	}
	switch cfg.QuotesBackend {
	case BackendSQLite:
	case BackendDynamoDB:
		if cfg.AWSRegion == "" {
			log.Print("warning: QUOTES_BACKEND is dynamodb but AWS_REGION is not set")
		}
	default:
		log.Printf("warning: unknown QUOTES_BACKEND %q, using %s", cfg.QuotesBackend, BackendSQLite)
		cfg.QuotesBackend = BackendSQLite
	}
	if cfg.AdminToken == "" {
		log.Print("warning: ADMIN_TOKEN is not set, rate card uploads are disabled")
	}

	return cfg
}

func getEnvAsString(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	raw := getEnvAsString(key, "")
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("warning: %s=%q is not an integer, using %d", key, raw, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	raw := getEnvAsString(key, "")
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("warning: %s=%q is not a boolean, using %t", key, raw, defaultValue)
		return defaultValue
	}
	return value
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
