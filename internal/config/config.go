// Package config loads che-plugins settings. Values are layered, lowest
// precedence first: built-in defaults, che-plugins.yaml, CHE_PLUGINS_*
// environment variables, command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	configName = "che-plugins"
	envPrefix  = "che_plugins"
)

// Setting keys. Flags with the same names override them.
const (
	KeyWorkspace   = "workspace"
	KeyRegistry    = "registry"
	KeyLogLevel    = "log-level"
	KeyTimeout     = "timeout"
	KeyLocalIndex  = "local-index"
	KeyConcurrency = "concurrency"
)

// Config holds the resolved settings.
type Config struct {
	// Workspace is the workspace root; empty means the current directory.
	Workspace string `mapstructure:"workspace"`
	// Registry overrides the workspace plugin registry setting.
	Registry    string        `mapstructure:"registry"`
	LogLevel    string        `mapstructure:"log-level"`
	Timeout     time.Duration `mapstructure:"timeout"`
	LocalIndex  string        `mapstructure:"local-index"`
	Concurrency int           `mapstructure:"concurrency"`
}

// Defaults returns the built-in settings.
func Defaults() map[string]any {
	return map[string]any{
		KeyWorkspace:   "",
		KeyRegistry:    "",
		KeyLogLevel:    "info",
		KeyTimeout:     10 * time.Second,
		KeyLocalIndex:  "",
		KeyConcurrency: 8,
	}
}

// Path returns the user config file location.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not get user config directory: %w", err)
	}
	return filepath.Join(dir, configName, configName+".yaml"), nil
}

// Load resolves settings for cmd. file, if non-empty, names an explicit
// config file which must exist; otherwise che-plugins.yaml is looked up in
// the user config directory and the current directory.
func Load(cmd *cobra.Command, file string) (Config, error) {
	var c Config
	v := viper.New()

	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	if file != "" {
		v.SetConfigFile(file)
	}
	if userPath, err := Path(); err == nil {
		v.AddConfigPath(filepath.Dir(userPath))
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return c, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return c, fmt.Errorf("bind flags: %w", err)
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("parse config: %w", err)
	}
	if c.Timeout <= 0 {
		return c, fmt.Errorf("invalid timeout %s", c.Timeout)
	}
	return c, nil
}
