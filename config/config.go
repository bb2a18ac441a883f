package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	AppName     = "carretao-autocateg"
	EnvFileName = "config.env"
)

// LoadEnvFile loads environment variables from the config file in the user's
// config directory. Errors are ignored since the file may not exist.
func LoadEnvFile() {
	configBase, err := os.UserConfigDir()
	if err != nil {
		return
	}
	_ = godotenv.Load(EnvFilePath(configBase))
}

// EnvFilePath returns the config file location under the given base
// directory.
func EnvFilePath(configBase string) string {
	return filepath.Join(configBase, AppName, EnvFileName)
}

// DefaultDBPath returns where the suggestion database lives when the
// operator doesn't override it: the user config dir, falling back to the
// working directory.
func DefaultDBPath() string {
	configBase, err := os.UserConfigDir()
	if err != nil {
		return "autocateg.db"
	}
	return filepath.Join(configBase, AppName, "autocateg.db")
}
