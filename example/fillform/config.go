package main

import (
	"encoding/json"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	APIKey   string `json:"api_key"`
	BaseURL  string `json:"base_url"`
	Model    string `json:"model"`
	StateDir string `json:"state_dir"`
}

func loadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	conf := &Config{StateDir: "tmp/fillform"}
	if file, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(file, conf); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		conf.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		conf.BaseURL = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		conf.Model = v
	}
	return conf, nil
}
