package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`
	Email struct {
		Enabled      bool   `yaml:"enabled"`
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUser     string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
	} `yaml:"email"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
	} `yaml:"telegram"`
}

func LoadConfig() *Config {
	path := os.Getenv("TASKBOARD_CONFIG")
	if path == "" {
		path = "config/config.yaml"
	}
	f, err := os.Open(path)
	if err != nil {
		panic("Failed to open config: " + err.Error())
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		panic("Failed to parse config: " + err.Error())
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	return &cfg
}
