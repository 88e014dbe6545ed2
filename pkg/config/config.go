// Package config loads runtime configuration from LAUNCHPAD_* environment
// variables and an optional launchpad.toml config file.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all launchpad runtime settings. Values come from the config
// file, LAUNCHPAD_* env vars, and CLI flags, in increasing precedence.
type Config struct {
	RegistryURL    string        `mapstructure:"registry_url"`
	Home           string        `mapstructure:"home"`
	InstallTimeout time.Duration `mapstructure:"install_timeout"`
	InstallWorkers int           `mapstructure:"install_workers"`
	Verbose        bool          `mapstructure:"verbose"`

	ShowEnvMessages          bool   `mapstructure:"show_env_messages"`
	ShellActivationMessage   string `mapstructure:"shell_activation_message"`
	ShellDeactivationMessage string `mapstructure:"shell_deactivation_message"`
}

// Init wires viper to the LAUNCHPAD env prefix and the optional config file.
// Call once at CLI startup, before Load.
func Init(cfgFile string) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("launchpad")
		viper.SetConfigType("toml")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "launchpad"))
		}
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("LAUNCHPAD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// No config file is fine; env vars and defaults cover everything.
	_ = viper.ReadInConfig()
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() Config {
	viper.SetDefault("registry_url", "https://binaries.launchpad.sh")
	viper.SetDefault("home", "")
	viper.SetDefault("install_timeout", 5*time.Minute)
	viper.SetDefault("install_workers", 4)
	viper.SetDefault("verbose", false)
	viper.SetDefault("show_env_messages", true)
	viper.SetDefault("shell_activation_message", "✅ Environment activated for {path}")
	viper.SetDefault("shell_deactivation_message", "Environment deactivated")

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}
