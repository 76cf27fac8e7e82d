package config

import (
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config carries everything the client and the stub server read from the
// environment. Defaults make a fresh checkout work against a local stub.
type Config struct {
	// APIBase is the SOIN API root, including the /api prefix.
	APIBase string
	// TokenFile is where the bearer token survives between runs.
	TokenFile string
	// StubAddr is the listen address for the development stub server.
	StubAddr string
	// JWTSecret signs the stub server's tokens.
	JWTSecret string
}

// Load reads .env (if present) and the SOIN_* variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	return &Config{
		APIBase:   getEnv("SOIN_API_BASE", "http://localhost:8080/api"),
		TokenFile: getEnv("SOIN_TOKEN_FILE", defaultTokenFile()),
		StubAddr:  getEnv("SOIN_STUB_ADDR", ":8080"),
		JWTSecret: getEnv("SOIN_JWT_SECRET", "soin_dev_secret"),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".soin_token"
	}
	return filepath.Join(home, ".soin", "token")
}
