package schema

import (
	"context"
	"fmt"
	"time"

	"github.com/syssam/veldt"
	"github.com/syssam/veldt/dialect"
	vsql "github.com/syssam/veldt/dialect/sql"
	"github.com/syssam/veldt/query"
	"github.com/syssam/veldt/value"
)

// Model is the contract a generated model type fulfills: its entity
// metadata plus access to the current record data.
type Model interface {
	query.Entity

	// PrimaryKeyValue returns the value of the primary key field.
	PrimaryKeyValue() value.Value

	// IntoMap renders the record as an ordered map keyed by column name.
	IntoMap() *value.Map
}

// DefaultPool is the pool name used when none is configured.
const DefaultPool = "main"

// Schema executes the operations of one entity against a pool registry.
// The reader and writer pools may differ so reads can go to a replica.
type Schema struct {
	entity    query.Entity
	registry  *vsql.Registry
	reader    string
	writer    string
	maxRows   int
	tolerance time.Duration
}

// Option configures a Schema.
type Option func(*Schema)

// WithReader names the pool used for reads.
func WithReader(name string) Option {
	return func(s *Schema) { s.reader = name }
}

// WithWriter names the pool used for writes.
func WithWriter(name string) Option {
	return func(s *Schema) { s.writer = name }
}

// WithMaxRows caps unbounded reads. The cap applies only to queries
// that carry no explicit limit.
func WithMaxRows(n int) Option {
	return func(s *Schema) { s.maxRows = n }
}

// WithTimestampTolerance rejects queries whose `timestamp` extra lies
// further than d from the current time.
func WithTimestampTolerance(d time.Duration) Option {
	return func(s *Schema) { s.tolerance = d }
}

// New returns a Schema for the entity backed by the registry.
func New(entity query.Entity, registry *vsql.Registry, opts ...Option) *Schema {
	s := &Schema{
		entity:   entity,
		registry: registry,
		reader:   DefaultPool,
		writer:   DefaultPool,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Entity returns the entity the schema operates on.
func (s *Schema) Entity() query.Entity { return s.entity }

func (s *Schema) readerDriver(ctx context.Context) (*vsql.Driver, error) {
	pool, err := s.registry.Get(ctx, s.reader)
	if err != nil {
		return nil, fmt.Errorf("schema: acquire reader %q: %w", s.reader, err)
	}
	return pool.Driver(), nil
}

func (s *Schema) writerDriver(ctx context.Context) (*vsql.Driver, error) {
	pool, err := s.registry.Get(ctx, s.writer)
	if err != nil {
		return nil, fmt.Errorf("schema: acquire writer %q: %w", s.writer, err)
	}
	return pool.Driver(), nil
}

// beforeQuery validates the query before it reaches a driver.
func (s *Schema) beforeQuery(q *query.Query) error {
	if s.tolerance <= 0 {
		return nil
	}
	ts, ok := q.Extra().ParseI64("timestamp")
	if !ok {
		return nil
	}
	drift := time.Since(time.Unix(ts, 0))
	if drift < 0 {
		drift = -drift
	}
	if drift > s.tolerance {
		return veldt.NewValidationError("timestamp", "expired or from the future")
	}
	return nil
}

// effectiveLimit resolves the query's pagination against the row cap.
// An explicit limit always wins; the cap binds only unbounded reads.
func (s *Schema) effectiveLimit(q *query.Query) int {
	if limit := q.Limit(); limit > 0 {
		return limit
	}
	return s.maxRows
}

// primaryKeyField returns the quoted, model-qualified primary key.
func (s *Schema) primaryKeyField(enc dialect.Encoder) string {
	return enc.FormatField(s.entity.ModelName() + "." + s.entity.PrimaryKey())
}

// fromClause renders the table aliased to the model name, so filter
// fields qualified by the model resolve in every statement.
func (s *Schema) fromClause(enc dialect.Encoder) string {
	return enc.FormatField(s.entity.TableName()) + " AS " + enc.QuoteIdentifier(s.entity.ModelName())
}
