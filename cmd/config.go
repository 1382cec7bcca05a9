package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/cabinetfs/go-cab/internal/types"
)

// Config holds the settings the mutating commands pass on to Save: the
// compression method and where its temporary file is staged. They come
// from the config file or GOCAB_* environment variables only; no
// command-line flag overrides them.
type Config struct {
	Compression string `mapstructure:"compression"`
	TempDir     string `mapstructure:"temp_dir"`
}

// LoadConfig reads cab-config.yaml from the working directory, the
// user's config home, or /etc/go-cab, falling back to defaults when
// none of those exist.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("cab-config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/go-cab")
	viper.AddConfigPath("/etc/go-cab")

	viper.SetDefault("compression", "store")
	viper.SetDefault("temp_dir", "")

	viper.SetEnvPrefix("GOCAB")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// CompressionType resolves Compression to the types.CompressionType Save
// should use, rejecting anything but the Store method this tool supports.
func (c *Config) CompressionType() (types.CompressionType, error) {
	switch strings.ToLower(c.Compression) {
	case "", "store", "none":
		return types.CompressionNone, nil
	default:
		return 0, fmt.Errorf("%w: %q", types.ErrUnsupportedCompression, c.Compression)
	}
}
