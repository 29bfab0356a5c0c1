// seqtoid: a toolkit for preparing sequencing runs for analysis pipelines.
// Copyright (c) 2023-2025 the CypherID developers.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License along with this program. If not, see
// <https://github.com/cypherid/seqtoid/blob/master/LICENSE.txt>.

// Package config loads the YAML run configuration of a project.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Keys injected into every loaded configuration.
const (
	ProjectRootKey = "project_root"
	LogPathKey     = "log_path"
)

// DefaultFile is the configuration file used when no name is given.
const DefaultFile = "config.yaml"

// A Config is a keyed configuration document. Workflows downstream
// read it as free-form data, so it stays a plain mapping rather than
// a fixed schema.
type Config map[string]any

// Load reads the configuration for the project. An empty name loads
// <root>/config.yaml; any other name loads <root>/config/<name>,
// with .yaml appended when the name carries no extension. A missing
// file is a warning and yields an empty configuration; a file that
// cannot be parsed is an error.
func Load(projectRoot, name string) (Config, error) {
	path := filepath.Join(projectRoot, DefaultFile)
	if name != "" {
		if filepath.Ext(name) == "" {
			name += ".yaml"
		}
		path = filepath.Join(projectRoot, "config", name)
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: Configuration file %v not found; using an empty configuration.\n", path)
		return Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read configuration file %v: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("cannot parse configuration file %v: %w", path, err)
	}
	if cfg == nil {
		cfg = Config{}
	}
	return cfg, nil
}

// Sub returns a nested configuration section, or an empty one when
// the key is absent or not a mapping.
func (cfg Config) Sub(key string) Config {
	switch value := cfg[key].(type) {
	case Config:
		return value
	case map[string]any:
		return Config(value)
	default:
		return Config{}
	}
}

// String returns a string value, or the given default when the key
// is absent or not a string.
func (cfg Config) String(key, dflt string) string {
	if value, ok := cfg[key].(string); ok {
		return value
	}
	return dflt
}

// LogPath returns the timestamped workflow log file for a pipeline
// run under the project root.
func LogPath(projectRoot, pipeline string) string {
	stamp := time.Now().Format("20060102_150405")
	return filepath.Join(projectRoot, "logs", fmt.Sprintf("%s_%s.log", pipeline, stamp))
}

// Setup loads the configuration and injects the per-run keys: the
// project root and a timestamped workflow log path. It returns the
// configuration together with that log path.
func Setup(projectRoot, pipeline, name string) (Config, string, error) {
	cfg, err := Load(projectRoot, name)
	if err != nil {
		return nil, "", err
	}
	logPath := LogPath(projectRoot, pipeline)
	cfg[ProjectRootKey] = projectRoot
	cfg[LogPathKey] = logPath
	return cfg, logPath, nil
}
