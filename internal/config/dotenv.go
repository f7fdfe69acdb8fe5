package config

import "github.com/joho/godotenv"

// LoadDotEnv loads a .env file into the environment. Variables already set
// in the environment take precedence over file values. A missing file is
// returned as an error the caller may ignore.
func LoadDotEnv(path string) error {
	return godotenv.Load(path)
}
