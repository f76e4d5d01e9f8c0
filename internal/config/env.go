package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ServerEnv holds the server defaults; command-line flags override them.
type ServerEnv struct {
	Addr       string `env:"CRAFTAGE_ADDR" envDefault:":8080"`
	DataDir    string `env:"CRAFTAGE_DATA_DIR" envDefault:"./data"`
	WorldID    string `env:"CRAFTAGE_WORLD_ID" envDefault:"world_1"`
	ConfigDir  string `env:"CRAFTAGE_CONFIG_DIR"` // empty: bundled tables
	TuningPath string `env:"CRAFTAGE_TUNING"`
	Snapshot   string `env:"CRAFTAGE_SNAPSHOT"`
	LoadLatest bool   `env:"CRAFTAGE_LOAD_LATEST_SNAPSHOT" envDefault:"true"`
	DisableDB  bool   `env:"CRAFTAGE_DISABLE_DB" envDefault:"false"`
	AdminHTTP  bool   `env:"CRAFTAGE_ENABLE_ADMIN_HTTP" envDefault:"true"`
}

func LoadServerEnv() (ServerEnv, error) {
	var cfg ServerEnv
	err := ParseEnv(&cfg)
	return cfg, err
}
