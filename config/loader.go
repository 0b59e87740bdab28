package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for environment overrides, e.g.
// VOICEAPI_WHISPER_API_KEY overrides whisper.api_key.
const envPrefix = "VOICEAPI"

// secretKeys are config keys expected to arrive via the environment rather
// than the config file, so they are bound explicitly.
var secretKeys = []string{
	"whisper.api_key",
	"auth.secret",
	"storage.secret_key",
	"database.dsn",
}

// Load reads configuration from the given config file (searched in standard
// locations when empty), overlays a .env file and environment variables, and
// returns the validated Config.
func Load(configFile string) (*Config, error) {
	if configFile == "" {
		configFile = findFile("config.yml")
	}
	if envFile := findFile(".env"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not load %s: %v\n", envFile, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range secretKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// findFile searches the standard locations for a file and returns the first
// hit, or "".
func findFile(name string) string {
	candidates := []string{
		"./" + name,
		"./cmd/voiceapi/" + name,
		"./config/" + name,
		"../" + name,
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
