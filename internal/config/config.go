package config

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	defaultBatchLimit = 1000
	dotEnvFile        = ".env"
)

// Config holds all configuration for the analyzer service and CLI
type Config struct {
	// Auth
	AuthToken string

	// Server
	Port        string
	Environment string

	// Reference tables; empty means the embedded defaults
	TablesPath string

	// Maximum rows analyzed by one batch run, 0 for no limit
	BatchLimit int
}

// FileReader abstracts file access so tests can inject a .env file
type FileReader interface {
	Open(filename string) (io.ReadCloser, error)
	Stat(filename string) (os.FileInfo, error)
}

type osFileReader struct{}

func (osFileReader) Open(filename string) (io.ReadCloser, error) { return os.Open(filename) }
func (osFileReader) Stat(filename string) (os.FileInfo, error) { return os.Stat(filename) }

// Load reads configuration from environment variables, seeded from ./.env if present
func Load() *Config {
	return LoadWithFileReader(osFileReader{})
}

// LoadWithFileReader reads configuration using fr to look for a .env file.
// Variables already set in the environment take precedence over .env values.
func LoadWithFileReader(fr FileReader) *Config {
	dotenv := readDotEnv(fr)
	lookup := func(key, defaultValue string) string {
		if value := os.Getenv(key); value != "" {
			return value
		}
		if value := dotenv[key]; value != "" {
			return value
		}
		return defaultValue
	}

	batchLimit := defaultBatchLimit
	if l := lookup("BATCH_LIMIT", ""); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed >= 0 {
			batchLimit = parsed
		}
	}

	return &Config{
		AuthToken:   lookup("AUTH_TOKEN", "super-secret-token"),
		Port:        lookup("PORT", "8080"),
		Environment: strings.ToLower(lookup("ENV", EnvProduction)),
		TablesPath:  lookup("TABLES_PATH", ""),
		BatchLimit:  batchLimit,
	}
}

// IsDevelopment reports whether detailed errors may be shown to clients
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// readDotEnv parses the .env file, returning nil when it is absent or invalid
func readDotEnv(fr FileReader) map[string]string {
	if _, err := fr.Stat(dotEnvFile); err != nil {
		return nil
	}
	f, err := fr.Open(dotEnvFile)
	if err != nil {
		return nil
	}
	defer f.Close()

	values, err := godotenv.Parse(f)
	if err != nil {
		return nil
	}
	return values
}
