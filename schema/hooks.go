package schema

import (
	"context"

	"github.com/syssam/veldt/query"
	"github.com/syssam/veldt/value"
)

// Lifecycle hooks. A model or entity opts in by implementing the
// matching interface; operations probe with type assertions and skip
// hooks that are absent. Before-hooks abort the operation when they
// return an error.

// BeforeInsertHook runs before a record is inserted.
type BeforeInsertHook interface {
	BeforeInsert(ctx context.Context) error
}

// AfterInsertHook runs after a record was inserted.
type AfterInsertHook interface {
	AfterInsert(ctx context.Context, qc *QueryContext) error
}

// BeforeUpdateHook runs before a record is updated.
type BeforeUpdateHook interface {
	BeforeUpdate(ctx context.Context) error
}

// AfterUpdateHook runs after a record was updated.
type AfterUpdateHook interface {
	AfterUpdate(ctx context.Context, qc *QueryContext) error
}

// BeforeUpsertHook runs before a record is upserted.
type BeforeUpsertHook interface {
	BeforeUpsert(ctx context.Context) error
}

// AfterUpsertHook runs after a record was upserted.
type AfterUpsertHook interface {
	AfterUpsert(ctx context.Context, qc *QueryContext) error
}

// BeforeDeleteHook runs before a record is deleted.
type BeforeDeleteHook interface {
	BeforeDelete(ctx context.Context) error
}

// AfterDeleteHook runs after a record was deleted.
type AfterDeleteHook interface {
	AfterDelete(ctx context.Context, qc *QueryContext) error
}

// AfterScanHook runs on each decoded row before it is returned.
type AfterScanHook interface {
	AfterScan(ctx context.Context, row *value.Map) error
}

// TranslateHook localizes a decoded row in place. Find operations with
// the `translate` extra flag call it with the requested locale.
type TranslateHook interface {
	Translate(row *value.Map, locale string) error
}

func beforeInsert(ctx context.Context, m any) error {
	if hook, ok := m.(BeforeInsertHook); ok {
		return hook.BeforeInsert(ctx)
	}
	return nil
}

func afterInsert(ctx context.Context, m any, qc *QueryContext) error {
	if hook, ok := m.(AfterInsertHook); ok {
		return hook.AfterInsert(ctx, qc)
	}
	return nil
}

func beforeUpdate(ctx context.Context, m any) error {
	if hook, ok := m.(BeforeUpdateHook); ok {
		return hook.BeforeUpdate(ctx)
	}
	return nil
}

func afterUpdate(ctx context.Context, m any, qc *QueryContext) error {
	if hook, ok := m.(AfterUpdateHook); ok {
		return hook.AfterUpdate(ctx, qc)
	}
	return nil
}

func beforeUpsert(ctx context.Context, m any) error {
	if hook, ok := m.(BeforeUpsertHook); ok {
		return hook.BeforeUpsert(ctx)
	}
	return nil
}

func afterUpsert(ctx context.Context, m any, qc *QueryContext) error {
	if hook, ok := m.(AfterUpsertHook); ok {
		return hook.AfterUpsert(ctx, qc)
	}
	return nil
}

func beforeDelete(ctx context.Context, m any) error {
	if hook, ok := m.(BeforeDeleteHook); ok {
		return hook.BeforeDelete(ctx)
	}
	return nil
}

func afterDelete(ctx context.Context, m any, qc *QueryContext) error {
	if hook, ok := m.(AfterDeleteHook); ok {
		return hook.AfterDelete(ctx, qc)
	}
	return nil
}

// afterScan applies the entity's row hooks to each decoded row.
func (s *Schema) afterScan(ctx context.Context, rows []*value.Map) error {
	hook, ok := s.entity.(AfterScanHook)
	if !ok {
		return nil
	}
	for _, row := range rows {
		if err := hook.AfterScan(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

// translate localizes rows when the query carries the translate flag.
func (s *Schema) translate(q *query.Query, rows []*value.Map) error {
	hook, ok := s.entity.(TranslateHook)
	if !ok {
		return nil
	}
	if translate, _ := q.Extra().ParseBool("translate"); !translate {
		return nil
	}
	locale, _ := q.Extra().GetStr("locale")
	for _, row := range rows {
		if err := hook.Translate(row, locale); err != nil {
			return err
		}
	}
	return nil
}
