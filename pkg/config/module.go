package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cfoust/raingame/pkg/ingress"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DEFAULT []byte

func decode(data []byte, config *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	err := decoder.Decode(config)
	if errors.Is(err, io.EOF) {
		// Empty file
		return nil
	}
	return err
}

func readFile(path string, config *Config) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("does not exist")
	}

	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return decode(data, config)
	}

	return fmt.Errorf(
		"not in a valid format",
	)
}

// Process starts from the default configuration and applies the provided
// configuration files on top of it in order. Later files win; fields a file
// does not mention keep their previous value.
func Process(configPaths []string) (*Config, error) {
	config := Config{}
	if err := decode(DEFAULT, &config); err != nil {
		return nil, fmt.Errorf(
			"invalid default config file: %v",
			err,
		)
	}

	for _, path := range configPaths {
		err := readFile(path, &config)
		if err != nil {
			return nil, fmt.Errorf(
				"could not process config file %s: %v",
				path,
				err,
			)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func validPort(port int) bool {
	return port > 0 && port < 65536
}

func (c *Config) Validate() error {
	if !validPort(c.Server.Port) {
		return fmt.Errorf("server port %d is out of range", c.Server.Port)
	}
	if !validPort(c.Client.Port) {
		return fmt.Errorf("client port %d is out of range", c.Client.Port)
	}
	if _, err := ingress.ParseTransport(c.Server.Transport); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if _, err := ingress.ParseTransport(c.Client.Transport); err != nil {
		return fmt.Errorf("client: %w", err)
	}
	if c.Server.QueueCapacity < 1 || c.Client.QueueCapacity < 1 {
		return fmt.Errorf("queue capacity must be at least 1")
	}
	if c.Server.MessagesPerSecond < 0 {
		return fmt.Errorf("messagesPerSecond cannot be negative")
	}
	if err := c.Game.Engine().Validate(); err != nil {
		return fmt.Errorf("game: %w", err)
	}
	return nil
}
