// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds the vireo CLI configuration.
//
// Loaded from ~/.vireo/vireo.yaml (created on first run) or from the
// path given with --config. Command-line flags override file values.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	Port         int    `yaml:"port" validate:"gte=1,lte=65535"`
	MaxGraphs    int    `yaml:"max_graphs" validate:"gte=1"`
	QueryLimit   int    `yaml:"query_limit" validate:"gte=1"`
	QueryTimeout string `yaml:"query_timeout"` // e.g. "30s"
}

type StorageConfig struct {
	// DataDir is where badger-backed graphs keep their files.
	DataDir string `yaml:"data_dir" validate:"required"`

	// Backend is the default backend for new graphs: "memory" or "badger".
	Backend string `yaml:"backend" validate:"oneof=memory badger"`

	// BatchSize is the mutation count between commits during loads.
	BatchSize int `yaml:"batch_size" validate:"gte=1"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	LogDir string `yaml:"log_dir"`
	JSON   bool   `yaml:"json"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:         8080,
			MaxGraphs:    16,
			QueryLimit:   1000,
			QueryTimeout: "30s",
		},
		Storage: StorageConfig{
			DataDir:   "~/.vireo/data",
			Backend:   "badger",
			BatchSize: 1000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// loadConfig reads the config file, creating it with defaults on first run.
//
// An empty path resolves to ~/.vireo/vireo.yaml. The loaded config is
// validated before being returned.
func loadConfig(path string) (Config, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("could not find the user's home directory: %w", err)
		}
		path = filepath.Join(home, ".vireo", "vireo.yaml")
	}

	// create it if it doesn't exist
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Printf(" First run detected, creating the config at %s\n", path)
		if err := createDefault(path); err != nil {
			return Config{}, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read the config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse the config file: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
