package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/veldt/dialect"
	"github.com/syssam/veldt/value"
)

func TestFormatQuery(t *testing.T) {
	params := value.NewMap()
	params.Upsert("fields", "id, name, age")
	params.Upsert("limit", int64(10))

	sql := FormatQuery("SELECT ${ fields } FROM users LIMIT ${limit}", params)
	assert.Equal(t, "SELECT id, name, age FROM users LIMIT 10", sql)

	// Unmatched templates stay verbatim.
	assert.Equal(t, "SELECT ${missing} FROM users",
		FormatQuery("SELECT ${missing} FROM users", params))
	assert.Equal(t, "SELECT 1", FormatQuery("SELECT 1", nil))
}

func TestPrepareQuery(t *testing.T) {
	params := value.NewMap()
	params.Upsert("fields", "id, name, age")
	params.Upsert("age", int64(18))

	template := "SELECT ${fields} FROM users WHERE name = 'alice' AND age >= #{age}"

	postgres := newEncoder(t, dialect.Postgres)
	sql, args := PrepareQuery(postgres, template, params)
	assert.Equal(t, "SELECT id, name, age FROM users WHERE name = 'alice' AND age >= $1", sql)
	assert.Equal(t, []value.Value{int64(18)}, args)

	mysql := newEncoder(t, dialect.MySQL)
	sql, args = PrepareQuery(mysql, template, params)
	assert.Equal(t, "SELECT id, name, age FROM users WHERE name = 'alice' AND age >= ?", sql)
	assert.Equal(t, []value.Value{int64(18)}, args)
}

func TestPrepareQueryMissingBinding(t *testing.T) {
	postgres := newEncoder(t, dialect.Postgres)
	sql, args := PrepareQuery(postgres, "SELECT * FROM users WHERE id = #{id} AND age > #{age}", value.NewMap())
	assert.Equal(t, "SELECT * FROM users WHERE id = $1 AND age > $2", sql)
	assert.Equal(t, []value.Value{nil, nil}, args)
}
