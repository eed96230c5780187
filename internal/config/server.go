package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type ServerConfig struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	// ReconnectGrace is how long a disconnected player keeps their presence
	// entry (and therefore their seat in any live match) before being
	// finalized as a logout.
	ReconnectGrace time.Duration `env:"RECONNECT_GRACE" envDefault:"60s"`

	// RetentionWindow is how long a finished or abandoned session stays
	// resolvable so a disconnected participant can still receive the final
	// notification on reconnect.
	RetentionWindow time.Duration `env:"RETENTION_WINDOW" envDefault:"1h"`

	SweepInterval     time.Duration `env:"SWEEP_INTERVAL" envDefault:"5s"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL" envDefault:"30s"`

	// SendBuffer is the per-connection outbound queue depth; sends beyond it
	// are dropped rather than blocking the dispatcher.
	SendBuffer int `env:"SEND_BUFFER" envDefault:"32"`

	// RandSeed seeds first-turn selection. Zero means time-seeded.
	RandSeed int64 `env:"RAND_SEED" envDefault:"0"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
