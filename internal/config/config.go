package config

import "time"

// PostgresConfig carries the connection string and pool tuning. Only the
// DSN is required; pool knobs fall back to the driver defaults.
type PostgresConfig struct {
	DSN             string        `env:"PG_DSN"`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS,optional"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS,optional"`
	ConnMaxIdleTime time.Duration `env:"PG_CONN_MAX_IDLE_TIME,optional"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME,optional"`
}

// LoyaltyConfig carries the ledger tuning knobs. Zero values mean "use
// the domain defaults" (48h delay, prefix 000, tolerance 1 currency unit).
type LoyaltyConfig struct {
	SettlementDelay       time.Duration `env:"LOYALTY_SETTLEMENT_DELAY,optional"`
	VirtualCardPrefix     string        `env:"LOYALTY_VIRTUAL_CARD_PREFIX,optional"`
	ReconciliationEpsilon int64         `env:"LOYALTY_RECON_TOLERANCE,optional"`
}
