package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type LoggingCfg struct {
	Level string `mapstructure:"level"`
}

// ChainCfg describes one contract deployment. Callers target a different
// deployment by supplying a different config instance, never via globals.
type ChainCfg struct {
	RPCURL          string `mapstructure:"rpc_url"`
	ContractAddress string `mapstructure:"contract_address"`
	ChainID         int64  `mapstructure:"chain_id"`
	PrivateKey      string `mapstructure:"private_key"`
}

type IndexCfg struct {
	Driver string `mapstructure:"driver"` // "postgres" or "mysql"
	DSN    string `mapstructure:"dsn"`    // empty selects the in-memory store
}

type IssuanceCfg struct {
	LocatorPrefix string `mapstructure:"locator_prefix"`
	FrontendURL   string `mapstructure:"frontend_url"`
	MaxBatch      int    `mapstructure:"max_batch"`
}

type ServerCfg struct {
	Listen string `mapstructure:"listen"`
}

type Config struct {
	Version  string      `mapstructure:"version"`
	Chain    ChainCfg    `mapstructure:"chain"`
	Index    IndexCfg    `mapstructure:"index"`
	Issuance IssuanceCfg `mapstructure:"issuance"`
	Server   ServerCfg   `mapstructure:"server"`
	Logging  LoggingCfg  `mapstructure:"logging"`
}

var cfg *Config

// Load populates global config from a viper instance
func Load(v *viper.Viper) error {
	// set defaults
	v.SetDefault("version", "0.1")
	v.SetDefault("chain.chain_id", 80002) // Polygon Amoy
	v.SetDefault("index.driver", "postgres")
	v.SetDefault("issuance.locator_prefix", "ipfs://demo/")
	v.SetDefault("issuance.frontend_url", "http://localhost:3000")
	v.SetDefault("issuance.max_batch", 50)
	v.SetDefault("server.listen", ":8080")
	v.SetDefault("logging.level", "info")

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	cfg = &c
	return nil
}

func Get() *Config {
	if cfg == nil {
		cfg = &Config{}
	}
	return cfg
}
