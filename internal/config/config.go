// Package config loads the simulator's root configuration via
// github.com/spf13/viper, using mapstructure-tagged fields. Only
// cmd/simulator depends on this package; the core packages (orderbook,
// matching, mempool) take plain Go structs so they stay usable as a
// library without pulling in a config-file format.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/abdoElHodaky/clobsim/internal/mempool"
	"github.com/abdoElHodaky/clobsim/internal/netshim"
	"github.com/abdoElHodaky/clobsim/internal/orderbook"
)

// Config is the simulator's root configuration document.
type Config struct {
	Seed uint64 `mapstructure:"seed"`

	LogLevel string `mapstructure:"log_level"`

	Books []orderbook.Config `mapstructure:"books"`

	Mempool mempool.Config `mapstructure:"mempool"`

	NetShim netshim.Config `mapstructure:"netshim"`

	CommandLogPath string `mapstructure:"command_log_path"`
}

// Default returns a single-symbol configuration with conservative
// defaults, used when no config file is supplied.
func Default() Config {
	return Config{
		Seed:     1,
		LogLevel: "info",
		Books: []orderbook.Config{
			{
				Symbol:            "BTC-USD",
				TickSize:          0.01,
				LotSize:           0.0001,
				MinOrderQuantity:  0.0001,
				TradeRingCapacity: 1024,
				EventRingCapacity: 1024,
			},
		},
		Mempool: mempool.Config{
			BlockIntervalMs:                  1000,
			MaxTransactionsPerBlock:          50,
			DefaultConfirmations:             3,
			ConfirmationProbabilityPerBlock:  0.3,
		},
		CommandLogPath: "commands.jsonl",
	}
}

// Load reads configuration from path (if non-empty) via viper, falling back
// to Default for fields the file does not set. The environment is consulted
// only while a config file is unmarshaled: a CLOBSIM_-prefixed variable
// overrides a key only if the file itself sets that key. With an empty
// path, Default is returned and the environment is not read.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix("CLOBSIM")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := v.Unmarshal(&cfg); err != nil {
			return Config{}, fmt.Errorf("config: unmarshal %s: %w", path, err)
		}
	}

	return cfg, nil
}
