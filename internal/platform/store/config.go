package store

import (
	"time"

	"stealthbridge/internal/core/version"
	"stealthbridge/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG PGConfig
	CH CHConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	ConnectRetries int           // boot pings before giving up, default 20
	PingTimeout    time.Duration // per ping, default 3s
}

// CHConfig configures clickhouse connectivity; Role and Version tag the client info
type CHConfig struct {
	Enabled bool
	URL     string
	Role    string
	Version string
}

// FromConfig reads SERVICE_PGSQL_* and SERVICE_CLICKHOUSE_*; a backend without DBURL stays disabled
func FromConfig(root config.Conf, app string) Config {
	pg := root.Prefix("SERVICE_PGSQL_")
	ch := root.Prefix("SERVICE_CLICKHOUSE_")
	pgURL := pg.MayString("DBURL", "")
	chURL := ch.MayString("DBURL", "")
	return Config{
		AppName: app,
		PG: PGConfig{
			Enabled:     pgURL != "",
			URL:         pgURL,
			MaxConns:    int32(pg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pg.MayInt("SLOW_MS", 500),
			LogSQL:      pg.MayBool("LOG_SQL", false),

			ConnectRetries: pg.MayInt("CONNECT_RETRIES", defaultConnectRetries),
			PingTimeout:    pg.MayDuration("PING_TIMEOUT", defaultPingTimeout),
		},
		CH: CHConfig{
			Enabled: chURL != "",
			URL:     chURL,
			Role:    app,
			Version: version.Info().Version,
		},
	}
}
