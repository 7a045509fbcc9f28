// Package config loads the server's JSON configuration file (server name
// plus the list of exported volumes) and applies shfs's defaulting rules.
package config

import (
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/JMARyA/shfs/pkg/errors"
)

// VolumeConfig is the immutable-after-load configuration of one exported
// volume.
type VolumeConfig struct {
	Name         string `mapstructure:"name"`
	Description  string `mapstructure:"description"`
	Root         string `mapstructure:"root"`
	Discoverable bool   `mapstructure:"discoverable"`
	Public       bool   `mapstructure:"public"`
	ReadOnly     bool   `mapstructure:"readonly"`
	TrashEnabled bool   `mapstructure:"trash_enabled"`
}

// ServerConfig is the top-level configuration document of spec.md §6.
type ServerConfig struct {
	Name    string         `mapstructure:"name"`
	Volumes []VolumeConfig `mapstructure:"volumes"`
}

// rawVolumeConfig mirrors VolumeConfig but with every defaultable field
// as a pointer, so viper's Unmarshal can tell "absent" from "false"
// before Load applies the documented defaults.
type rawVolumeConfig struct {
	Name         *string `mapstructure:"name"`
	Description  *string `mapstructure:"description"`
	Root         string  `mapstructure:"root"`
	Discoverable *bool   `mapstructure:"discoverable"`
	Public       *bool   `mapstructure:"public"`
	ReadOnly     *bool   `mapstructure:"readonly"`
	TrashEnabled *bool   `mapstructure:"trash_enabled"`
}

type rawServerConfig struct {
	Name    *string           `mapstructure:"name"`
	Volumes []rawVolumeConfig `mapstructure:"volumes"`
}

// Load reads and parses the JSON configuration file at path, applying
// defaults: a volume's name defaults to its root's basename;
// discoverable, public, readonly and trash_enabled all default to false.
func Load(path string) (ServerConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return ServerConfig{}, errors.Wrapf(err, "reading config file [%s]", path)
	}

	var raw rawServerConfig
	if err := v.Unmarshal(&raw); err != nil {
		return ServerConfig{}, errors.Wrapf(err, "parsing config file [%s]", path)
	}

	cfg := ServerConfig{
		Name:    derefString(raw.Name, ""),
		Volumes: make([]VolumeConfig, 0, len(raw.Volumes)),
	}

	for i, rv := range raw.Volumes {
		if strings.TrimSpace(rv.Root) == "" {
			return ServerConfig{}, errors.Errorf("volume #%d has no root path", i)
		}
		if !filepath.IsAbs(rv.Root) {
			return ServerConfig{}, errors.Errorf("volume #%d root [%s] must be an absolute path", i, rv.Root)
		}

		name := derefString(rv.Name, "")
		if name == "" {
			name = filepath.Base(filepath.Clean(rv.Root))
		}

		cfg.Volumes = append(cfg.Volumes, VolumeConfig{
			Name:         name,
			Description:  derefString(rv.Description, ""),
			Root:         filepath.Clean(rv.Root),
			Discoverable: derefBool(rv.Discoverable, false),
			Public:       derefBool(rv.Public, false),
			ReadOnly:     derefBool(rv.ReadOnly, false),
			TrashEnabled: derefBool(rv.TrashEnabled, false),
		})
	}

	return cfg, nil
}

func derefString(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}

func derefBool(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
