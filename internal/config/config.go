// Package config loads the chatx configuration from defaults, an optional
// TOML file, and CHATX_-prefixed environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Client struct {
		ServerURL      string `koanf:"server_url"`
		MediaURL       string `koanf:"media_url"`
		DatabasePath   string `koanf:"database_path"`
		WindowSize     int    `koanf:"window_size"`
		RequestTimeout int    `koanf:"request_timeout_seconds"`
	} `koanf:"client"`

	Server struct {
		ListenAddr string `koanf:"listen_addr"`
		ImageDir   string `koanf:"image_dir"`
	} `koanf:"server"`

	Model struct {
		BaseURL       string `koanf:"base_url"`
		APIKey        string `koanf:"api_key"`
		Name          string `koanf:"name"`
		HistoryTokens int    `koanf:"history_tokens"`
	} `koanf:"model"`
}

func Load(configPath string) (*Config, error) {
	var k = koanf.New(".")

	k.Load(confmap.Provider(map[string]interface{}{
		"client.server_url":              "http://localhost:5000",
		"client.media_url":               "http://localhost:5000",
		"client.database_path":           "chatx.db",
		"client.window_size":             20,
		"client.request_timeout_seconds": 60,
		"server.listen_addr":             ":5000",
		"server.image_dir":               "static",
		"model.base_url":                 "http://localhost:11434/v1/",
		"model.name":                     "llama3.1:8b",
		"model.history_tokens":           2048,
	}, "."), nil)

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	} else {
		defaultPaths := []string{"./chatx.toml", "$HOME/.chatx.toml"}
		for _, path := range defaultPaths {
			path = os.ExpandEnv(path)
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err == nil {
					break
				}
			}
		}
	}

	k.Load(env.Provider("CHATX_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "CHATX_")), "_", ".", 1)
	}), nil)

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if config.Client.WindowSize <= 0 {
		return nil, fmt.Errorf("client.window_size must be positive")
	}

	return &config, nil
}
