// Package config loads the settings of the ribbon demo and the YAML
// definition of the ribbon it shows.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const AppName = "ribbon"

// Settings are read from config.yaml, RIBBON_* environment variables and
// command line flags, in increasing priority.
type Settings struct {
	Layout        string `mapstructure:"layout"`    // ribbon YAML, empty for the built-in one
	LogFile       string `mapstructure:"log_file"`  // empty disables logging
	LogLevel      string `mapstructure:"log_level"` // debug, info, warn, error
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb"`
	LogMaxBackups int    `mapstructure:"log_max_backups"`
	Theme         string `mapstructure:"theme"` // auto, light, dark
	ScrollStep    int    `mapstructure:"scroll_step"`
	Watch         bool   `mapstructure:"watch"` // reload the layout when it changes

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

func Default() *Settings {
	return &Settings{
		LogLevel:      "info",
		LogMaxSizeMB:  10,
		LogMaxBackups: 3,
		Theme:         "auto",
		ScrollStep:    4,
	}
}

// flagKeys maps command line flags to setting keys.
var flagKeys = map[string]string{
	"layout":    "layout",
	"log-file":  "log_file",
	"log-level": "log_level",
	"theme":     "theme",
	"watch":     "watch",
}

// searchPaths lists config directories, later ones win.
func searchPaths() []string {
	paths := []string{filepath.Join("/etc", AppName)}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", AppName))
	}
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, cwd)
	}
	return paths
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range searchPaths() {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("layout", d.Layout)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_max_size_mb", d.LogMaxSizeMB)
	v.SetDefault("log_max_backups", d.LogMaxBackups)
	v.SetDefault("theme", d.Theme)
	v.SetDefault("scroll_step", d.ScrollStep)
	v.SetDefault("watch", d.Watch)
	return v
}

// Load reads the settings. cfgFile overrides the config search; flags may
// be nil. Only flags set on the command line override the file.
func Load(cfgFile string, flags *pflag.FlagSet) (*Settings, error) {
	v := newViper()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	s.File = v.ConfigFileUsed()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) Validate() error {
	if _, err := log.ParseLevel(s.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	switch strings.ToLower(s.Theme) {
	case "", "auto", "light", "dark":
	default:
		return fmt.Errorf("theme: unknown theme %q", s.Theme)
	}
	if s.ScrollStep < 1 {
		return fmt.Errorf("scroll_step: must be positive, got %d", s.ScrollStep)
	}
	if s.Watch && s.Layout == "" {
		return errors.New("watch: needs a layout file")
	}
	return nil
}
