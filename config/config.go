package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr          string
	CatalogPath   string // empty uses the embedded catalog
	TickInterval  time.Duration
	StaticDir     string
	AdminToken    string
	DevCommands   bool
	CommandRate   float64
	CommandBurst  int
	OutboundQueue int
}

// InitConfig loads an optional .env file into the process environment.
func InitConfig() error {
	if err := godotenv.Load(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load .env: %w", err)
	}
	log.Println("Successfully loaded environment variables")
	return nil
}

// Load reads the server configuration from the environment.
func Load() (Config, error) {
	if err := InitConfig(); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Addr:        ":" + getEnvDefault("PORT", "3000"),
		CatalogPath: os.Getenv("CATALOG_PATH"),
		StaticDir:   os.Getenv("STATIC_DIR"),
		AdminToken:  os.Getenv("ADMIN_TOKEN"),
	}

	tickMs, err := getEnvInt("TICK_MS", 1000)
	if err != nil {
		return Config{}, err
	}
	if tickMs <= 0 {
		return Config{}, fmt.Errorf("TICK_MS must be > 0, got %d", tickMs)
	}
	cfg.TickInterval = time.Duration(tickMs) * time.Millisecond

	if cfg.DevCommands, err = getEnvBool("DEV_COMMANDS", false); err != nil {
		return Config{}, err
	}
	if cfg.CommandRate, err = getEnvFloat("CMD_RATE", 30); err != nil {
		return Config{}, err
	}
	if cfg.CommandBurst, err = getEnvInt("CMD_BURST", 60); err != nil {
		return Config{}, err
	}
	if cfg.OutboundQueue, err = getEnvInt("OUTBOUND_QUEUE", 64); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func GetEnvVariable(v string) (string, error) {
	if v == "" {
		return "", fmt.Errorf("input param empty")
	}
	b := os.Getenv(v)
	if b == "" {
		return "", fmt.Errorf("failed to get variable for %s", v)
	}

	return b, nil

}

func getEnvDefault(key, def string) string {
	v, err := GetEnvVariable(key)
	if err != nil {
		return def
	}
	return v
}

func getEnvInt(key string, def int) (int, error) {
	v, err := GetEnvVariable(key)
	if err != nil {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, def float64) (float64, error) {
	v, err := GetEnvVariable(key)
	if err != nil {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getEnvBool(key string, def bool) (bool, error) {
	v, err := GetEnvVariable(key)
	if err != nil {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
