// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"io/ioutil"
	"time"

	"github.com/diffeo/go-fedora/connection"
	"github.com/mitchellh/mapstructure"
	"github.com/urfave/cli"
	"gopkg.in/yaml.v2"
)

// fileConfig is the contents of the YAML configuration file.
//
//     url: http://localhost:8080/fedora
//     username: fedoraAdmin
//     password: fedoraAdmin
//     persistent: true
//     max_attempts: 5
//     conflict_delay: 2s
type fileConfig struct {
	URL           string        `mapstructure:"url"`
	Username      string        `mapstructure:"username"`
	Password      string        `mapstructure:"password"`
	Persistent    bool          `mapstructure:"persistent"`
	MaxAttempts   int           `mapstructure:"max_attempts"`
	ConflictDelay time.Duration `mapstructure:"conflict_delay"`
}

func loadConfigYaml(filename string) (map[string]interface{}, error) {
	var result map[string]interface{}
	var err error
	var bytes []byte
	bytes, err = ioutil.ReadFile(filename)
	if err == nil {
		err = yaml.Unmarshal(bytes, &result)
	}
	return result, err
}

// decodeConfig converts a loosely-typed configuration map into a
// fileConfig.  Durations may be written as strings like "5s".
func decodeConfig(raw map[string]interface{}) (fileConfig, error) {
	var config fileConfig
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &config,
	})
	if err == nil {
		err = decoder.Decode(raw)
	}
	return config, err
}

// connectionConfig builds the connection settings from the
// configuration file, if any, and then the command-line flags.
func connectionConfig(c *cli.Context) (connection.Config, error) {
	var file fileConfig
	if filename := c.GlobalString("config"); filename != "" {
		raw, err := loadConfigYaml(filename)
		if err == nil {
			file, err = decodeConfig(raw)
		}
		if err != nil {
			return connection.Config{}, err
		}
	}
	config := connection.Config{
		URL:           file.URL,
		Username:      file.Username,
		Password:      file.Password,
		Persistent:    file.Persistent,
		MaxAttempts:   file.MaxAttempts,
		ConflictDelay: file.ConflictDelay,
	}
	if c.GlobalIsSet("url") || config.URL == "" {
		config.URL = c.GlobalString("url")
	}
	if c.GlobalIsSet("username") {
		config.Username = c.GlobalString("username")
	}
	if c.GlobalIsSet("password") {
		config.Password = c.GlobalString("password")
	}
	if c.GlobalIsSet("persistent") {
		config.Persistent = c.GlobalBool("persistent")
	}
	return config, nil
}
