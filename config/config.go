package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/syssam/veldt/dialect"
)

// Duration wraps time.Duration so YAML values can use the "90s" form.
type Duration time.Duration

// UnmarshalYAML parses either a duration string or a number of seconds.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var seconds int64
	if err := node.Decode(&seconds); err == nil {
		*d = Duration(time.Duration(seconds) * time.Second)
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Pool describes one named connection pool.
type Pool struct {
	Name            string   `yaml:"name"`
	Dialect         string   `yaml:"dialect"`
	DSN             string   `yaml:"dsn"`
	MaxOpenConns    int      `yaml:"max-open-conns"`
	MaxIdleConns    int      `yaml:"max-idle-conns"`
	ConnMaxLifetime Duration `yaml:"conn-max-lifetime"`
	ConnMaxIdleTime Duration `yaml:"conn-max-idle-time"`

	// Stats enables statement counters on the pool's driver.
	Stats bool `yaml:"stats"`
	// LogSlowQueries warns about statements that exceed the slow
	// query threshold. Implies Stats.
	LogSlowQueries bool `yaml:"log-slow-queries"`
	// SlowQueryThreshold overrides the default slow query threshold.
	SlowQueryThreshold Duration `yaml:"slow-query-threshold"`
	// LogStatements logs every statement at debug level. Implies Stats.
	LogStatements bool `yaml:"log-statements"`
}

// statsEnabled reports whether the pool's driver needs statement
// instrumentation.
func (p Pool) statsEnabled() bool {
	return p.Stats || p.LogSlowQueries || p.LogStatements || p.SlowQueryThreshold > 0
}

// Config is the engine configuration: the pool set plus the knobs the
// schema layer consumes.
type Config struct {
	Pools              []Pool   `yaml:"pools"`
	Cooldown           Duration `yaml:"cooldown"`
	MaxRows            int      `yaml:"max-rows"`
	TimestampTolerance Duration `yaml:"timestamp-tolerance"`
}

// Parse decodes and validates a YAML configuration document.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if len(c.Pools) == 0 {
		return nil, fmt.Errorf("config: no pools defined")
	}
	names := make(map[string]bool, len(c.Pools))
	for i, p := range c.Pools {
		if p.Name == "" {
			return nil, fmt.Errorf("config: pool %d: missing name", i)
		}
		if names[p.Name] {
			return nil, fmt.Errorf("config: pool %q: duplicate name", p.Name)
		}
		names[p.Name] = true
		if p.DSN == "" {
			return nil, fmt.Errorf("config: pool %q: missing dsn", p.Name)
		}
		if _, err := dialect.New(p.Dialect); err != nil {
			return nil, fmt.Errorf("config: pool %q: %w", p.Name, err)
		}
	}
	return &c, nil
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}
