package config

import (
	"os"
	"time"

	"github.com/go-yaml/yaml"
	"github.com/pkg/errors"
)

type Config struct {
	Server     Server     `yaml:"server"`
	Auth       Auth       `yaml:"auth"`
	Invitation Invitation `yaml:"invitation"`
}

type Server struct {
	ListenAddr    string `yaml:"listenAddr"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

type Auth struct {
	JwtSecret string `yaml:"jwtSecret"`
	TokenTTL  string `yaml:"tokenTTL"` // go duration string, e.g. "24h"

	// ---
	TTL time.Duration
}

type Invitation struct {
	// BaseURL is prepended to invitation tokens to build shareable
	// links, e.g. https://example.com/invite/
	BaseURL string `yaml:"baseUrl"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if config.Server.ListenAddr == "" {
		config.Server.ListenAddr = ":8000"
	}
	if config.Auth.JwtSecret == "" {
		return Config{}, errors.New("config: auth.jwtSecret is required")
	}
	config.Auth.TTL = 24 * time.Hour
	if config.Auth.TokenTTL != "" {
		ttl, err := time.ParseDuration(config.Auth.TokenTTL)
		if err != nil {
			return Config{}, errors.Wrap(err, "config: invalid auth.tokenTTL")
		}
		config.Auth.TTL = ttl
	}

	return config, nil
}
