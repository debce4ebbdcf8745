package config

import (
	"fmt"

	vsql "github.com/syssam/veldt/dialect/sql"

	// Drivers for the supported dialects. The encoder's DriverName maps
	// each pool dialect onto one of these registrations.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// OpenRegistry opens every configured pool and returns the populated
// registry. Connections are established lazily; call CheckAll to probe
// them eagerly.
func (c *Config) OpenRegistry() (*vsql.Registry, error) {
	registry := vsql.NewRegistry()
	if cooldown := c.Cooldown.Std(); cooldown > 0 {
		registry.SetCooldown(cooldown)
	}
	for _, p := range c.Pools {
		drv, err := vsql.Open(p.Dialect, p.DSN)
		if err != nil {
			registry.Close()
			return nil, fmt.Errorf("config: open pool %q: %w", p.Name, err)
		}
		db := drv.DB()
		if p.MaxOpenConns > 0 {
			db.SetMaxOpenConns(p.MaxOpenConns)
		}
		if p.MaxIdleConns > 0 {
			db.SetMaxIdleConns(p.MaxIdleConns)
		}
		if lifetime := p.ConnMaxLifetime.Std(); lifetime > 0 {
			db.SetConnMaxLifetime(lifetime)
		}
		if idle := p.ConnMaxIdleTime.Std(); idle > 0 {
			db.SetConnMaxIdleTime(idle)
		}
		if p.statsEnabled() {
			var opts []vsql.StatsOption
			if threshold := p.SlowQueryThreshold.Std(); threshold > 0 {
				opts = append(opts, vsql.WithSlowThreshold(threshold))
			}
			if p.LogSlowQueries {
				opts = append(opts, vsql.WithSlowQueryLog())
			}
			if p.LogStatements {
				opts = append(opts, vsql.WithStatementLog())
			}
			drv.EnableStats(opts...)
		}
		registry.Add(vsql.NewPool(p.Name, drv))
	}
	return registry, nil
}
