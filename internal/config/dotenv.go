package config

import (
	"os"

	"github.com/joho/godotenv"
)

// envFiles are tried in order. godotenv never overwrites variables that
// are already set, so the process environment wins over .env.local,
// which wins over .env.
var envFiles = []string{".env.local", ".env"}

// LoadDotEnv applies the dotenv overlay and reports which files existed
func LoadDotEnv() []string {
	var found []string
	for _, name := range envFiles {
		if _, err := os.Stat(name); err == nil {
			found = append(found, name)
		}
	}
	if len(found) > 0 {
		_ = godotenv.Load(found...)
	}
	return found
}
