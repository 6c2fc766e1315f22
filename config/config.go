// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2024 The Cacophony Project
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 */

// Package config holds the settings cardtool applies to every image. The
// defaults match the images the Cacophony Project ships; a YAML file can
// override any of them.
package config

import (
	"errors"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

const (
	// DefaultPath is read when CARDTOOL_CONFIG is not set.
	DefaultPath = "/etc/cardtool.yaml"

	pathEnvVar = "CARDTOOL_CONFIG"
)

// User is the account on the image that ssh keys are installed for.
type User struct {
	Name string `yaml:"name"`
	UID  int    `yaml:"uid"`
	GID  int    `yaml:"gid"`
}

// Config is the cardtool configuration.
type Config struct {
	// APIURL is the upload server written to the device config when
	// no --url is given.
	APIURL string `yaml:"api-url"`
	// ProtectedSSID is used for configuration and installation access
	// and can never be changed or removed.
	ProtectedSSID string `yaml:"protected-ssid"`
	// OSID is the os-release ID an image must carry.
	OSID string `yaml:"os-id"`
	User User   `yaml:"user"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		APIURL:        "https://api.cacophony.org.nz",
		ProtectedSSID: "bushnet",
		OSID:          "raspbian",
		User: User{
			Name: "pi",
			UID:  1000,
			GID:  1000,
		},
	}
}

// Path returns the configuration file to use.
func Path() string {
	if p := os.Getenv(pathEnvVar); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads the configuration file at path on top of the defaults. A
// missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read configuration: %v", err)
	}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse configuration %q: %v", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %q: %v", path, err)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (cfg *Config) Validate() error {
	switch {
	case cfg.APIURL == "":
		return errors.New("api-url cannot be empty")
	case cfg.ProtectedSSID == "":
		return errors.New("protected-ssid cannot be empty")
	case cfg.OSID == "":
		return errors.New("os-id cannot be empty")
	case cfg.User.Name == "":
		return errors.New("user name cannot be empty")
	case cfg.User.UID < 0 || cfg.User.GID < 0:
		return fmt.Errorf("invalid user ids %d:%d", cfg.User.UID, cfg.User.GID)
	}
	return nil
}
