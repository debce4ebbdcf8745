package dialect

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/veldt/column"
	"github.com/syssam/veldt/value"
)

func TestNew(t *testing.T) {
	for _, name := range []string{MySQL, MariaDB, TiDB, Postgres, SQLite} {
		e, err := New(name)
		require.NoError(t, err)
		assert.Equal(t, name, e.Name())
	}
	_, err := New("oracle")
	assert.Error(t, err)
}

func TestEscapeString(t *testing.T) {
	assert.Equal(t, "'Public'", EscapeString("Public"))
	assert.Equal(t, "'O''Brien'", EscapeString("O'Brien"))
	assert.Equal(t, "'''; DROP TABLE users; --'", EscapeString("'; DROP TABLE users; --"))
}

func TestColumnType(t *testing.T) {
	tests := []struct {
		typeName string
		mysql    string
		postgres string
		sqlite   string
	}{
		{"bool", "BOOLEAN", "BOOLEAN", "BOOLEAN"},
		{"u64", "BIGINT UNSIGNED", "BIGINT", "INTEGER"},
		{"i32", "INT", "INT", "INTEGER"},
		{"u16", "SMALLINT UNSIGNED", "SMALLINT", "INTEGER"},
		{"f64", "DOUBLE", "DOUBLE PRECISION", "REAL"},
		{"f32", "FLOAT", "REAL", "REAL"},
		{"Decimal", "NUMERIC", "NUMERIC", "TEXT"},
		{"String", "TEXT", "TEXT", "TEXT"},
		{"Option<String>", "TEXT", "TEXT", "TEXT"},
		{"DateTime", "TIMESTAMP(6)", "TIMESTAMPTZ", "DATETIME"},
		{"Date", "DATE", "DATE", "DATE"},
		{"Time", "TIME", "TIME", "TIME"},
		{"Uuid", "CHAR(36)", "UUID", "TEXT"},
		{"Vec<u8>", "BLOB", "BYTEA", "BLOB"},
		{"Vec<String>", "JSON", "TEXT[]", "TEXT"},
		{"Vec<i64>", "JSON", "BIGINT[]", "TEXT"},
		{"Map", "JSON", "JSONB", "TEXT"},
	}
	mysql, _ := New(MySQL)
	postgres, _ := New(Postgres)
	sqlite, _ := New(SQLite)
	for _, tt := range tests {
		c := column.New("c", tt.typeName)
		assert.Equal(t, tt.mysql, mysql.ColumnType(c), "mysql %s", tt.typeName)
		assert.Equal(t, tt.postgres, postgres.ColumnType(c), "postgres %s", tt.typeName)
		assert.Equal(t, tt.sqlite, sqlite.ColumnType(c), "sqlite %s", tt.typeName)
	}
}

func TestColumnTypeOverrides(t *testing.T) {
	mysql, _ := New(MySQL)
	mariadb, _ := New(MariaDB)
	postgres, _ := New(Postgres)

	c := column.New("geo", "Map")
	c.Extra.Upsert("column_type", "GEOMETRY")
	assert.Equal(t, "GEOMETRY", mysql.ColumnType(c))

	c = column.New("id", "Uuid")
	assert.Equal(t, "UUID", mariadb.ColumnType(c))
	assert.Equal(t, "CHAR(36)", mysql.ColumnType(c))

	c = column.New("tags", "Map")
	assert.Equal(t, "LONGTEXT", mariadb.ColumnType(c))

	c = column.New("name", "String")
	c.IndexType = "unique"
	assert.Equal(t, "VARCHAR(255)", mysql.ColumnType(c))

	c = column.New("id", "i64")
	c.Default = "auto_increment"
	assert.Equal(t, "BIGSERIAL", postgres.ColumnType(c))
	c = column.New("id", "i32")
	c.Default = "auto_increment"
	assert.Equal(t, "SERIAL", postgres.ColumnType(c))
}

func TestColumnDefinition(t *testing.T) {
	mysql, _ := New(MySQL)
	tidb, _ := New(TiDB)
	postgres, _ := New(Postgres)
	sqlite, _ := New(SQLite)

	id := column.New("id", "i64")
	id.Default = "auto_increment"
	id.Extra.Upsert("primary_key", true)
	assert.Equal(t, "`id` BIGINT PRIMARY KEY AUTO_INCREMENT", mysql.ColumnDefinition(id))
	assert.Equal(t, `"id" BIGSERIAL PRIMARY KEY`, postgres.ColumnDefinition(id))
	assert.Equal(t, `"id" INTEGER PRIMARY KEY`, sqlite.ColumnDefinition(id))

	random := column.New("id", "u64")
	random.Default = "auto_random"
	random.Extra.Upsert("primary_key", true)
	assert.Equal(t, "`id` BIGINT UNSIGNED PRIMARY KEY AUTO_RANDOM", tidb.ColumnDefinition(random))
	assert.Equal(t, "`id` BIGINT UNSIGNED PRIMARY KEY", mysql.ColumnDefinition(random))

	status := column.New("status", "String")
	status.Default = "Active"
	status.NotNull = true
	assert.Equal(t, "`status` VARCHAR(255) DEFAULT 'Active'", mysql.ColumnDefinition(status))

	name := column.New("name", "String")
	name.NotNull = true
	assert.Equal(t, "`name` TEXT NOT NULL", mysql.ColumnDefinition(name))

	created := column.New("created_at", "DateTime")
	created.Default = "now"
	assert.Equal(t, `"created_at" DATETIME DEFAULT (datetime('now', 'localtime'))`,
		sqlite.ColumnDefinition(created))
	assert.Equal(t, `"created_at" TIMESTAMPTZ DEFAULT now()`, postgres.ColumnDefinition(created))
}

func TestCreateIndexes(t *testing.T) {
	name := column.New("name", "String")
	name.IndexType = "unique"
	tag := column.New("tag", "String")
	tag.IndexType = "btree"
	title := column.New("title", "String")
	title.IndexType = "text"
	body := column.New("body", "String")
	body.IndexType = "text"
	plain := column.New("plain", "String")

	cols := []*column.Column{name, tag, title, body, plain}

	mysql, _ := New(MySQL)
	stmts := mysql.CreateIndexes("user", cols)
	require.Len(t, stmts, 3)
	assert.Equal(t, "CREATE UNIQUE INDEX user_name_index ON `user` (name);", stmts[0])
	assert.Equal(t, "CREATE INDEX user_tag_index ON `user` (tag) USING BTREE;", stmts[1])
	assert.Equal(t, "CREATE FULLTEXT INDEX user_text_search_index ON `user` (title, body);", stmts[2])

	postgres, _ := New(Postgres)
	stmts = postgres.CreateIndexes("user", cols)
	require.Len(t, stmts, 3)
	assert.Equal(t, `CREATE UNIQUE INDEX IF NOT EXISTS user_name_index ON "user" (name);`, stmts[0])
	assert.Equal(t, `CREATE INDEX IF NOT EXISTS user_tag_index ON "user" USING btree(tag DESC);`, stmts[1])
	assert.Contains(t, stmts[2], "to_tsvector('english', coalesce(title, '') || ' ' || coalesce(body, ''))")
	assert.Contains(t, stmts[2], "USING gin(")

	sqlite, _ := New(SQLite)
	stmts = sqlite.CreateIndexes("user", cols)
	require.Len(t, stmts, 4)
	assert.Equal(t, `CREATE UNIQUE INDEX IF NOT EXISTS user_name_index ON "user" (name);`, stmts[0])
}

func TestCreateIndexesLanguages(t *testing.T) {
	title := column.New("title", "String")
	title.IndexType = "text:german"
	body := column.New("body", "String")
	body.IndexType = "text:german"
	postgres, _ := New(Postgres)
	stmts := postgres.CreateIndexes("post", []*column.Column{title, body})
	require.Len(t, stmts, 1)
	assert.Contains(t, stmts[0], "post_text_search_german_index")
	assert.Contains(t, stmts[0], "to_tsvector('german', coalesce(title, '') || ' ' || coalesce(body, ''))")
}

func TestEncodeValue(t *testing.T) {
	mysql, _ := New(MySQL)
	postgres, _ := New(Postgres)
	sqlite, _ := New(SQLite)

	t.Run("Null", func(t *testing.T) {
		c := column.New("status", "String")
		assert.Equal(t, "NULL", mysql.EncodeValue(c, nil))
		c.Default = "Active"
		assert.Equal(t, "DEFAULT", mysql.EncodeValue(c, nil))
	})
	t.Run("Bool", func(t *testing.T) {
		c := column.New("enabled", "bool")
		assert.Equal(t, "TRUE", postgres.EncodeValue(c, true))
		assert.Equal(t, "FALSE", postgres.EncodeValue(c, false))
	})
	t.Run("Number", func(t *testing.T) {
		c := column.New("age", "i32")
		assert.Equal(t, "18", mysql.EncodeValue(c, int64(18)))
		assert.Equal(t, "3.5", mysql.EncodeValue(c, 3.5))
	})
	t.Run("StringSentinels", func(t *testing.T) {
		c := column.New("status", "String")
		assert.Equal(t, "''", mysql.EncodeValue(c, ""))
		assert.Equal(t, "NULL", mysql.EncodeValue(c, "null"))
		assert.Equal(t, "NOT NULL", mysql.EncodeValue(c, "not_null"))
		assert.Equal(t, "'Public'", mysql.EncodeValue(c, "Public"))
		c.Default = "Active"
		assert.Equal(t, "'Active'", mysql.EncodeValue(c, ""))
	})
	t.Run("Array", func(t *testing.T) {
		c := column.New("tags", "Vec<String>")
		v := []value.Value{"rust", "db"}
		assert.Equal(t, "json_array('rust','db')", mysql.EncodeValue(c, v))
		assert.Equal(t, "ARRAY['rust','db']::TEXT[]", postgres.EncodeValue(c, v))
		assert.Equal(t, "json_array('rust','db')", sqlite.EncodeValue(c, v))
	})
	t.Run("Object", func(t *testing.T) {
		c := column.New("extra", "Map")
		v := value.FromEntry("k", "v")
		assert.Equal(t, `'{"k":"v"}'`, mysql.EncodeValue(c, v))
		assert.Equal(t, `'{"k":"v"}'::JSONB`, postgres.EncodeValue(c, v))
	})
	t.Run("InjectionSafety", func(t *testing.T) {
		c := column.New("name", "String")
		for _, e := range []Encoder{mysql, postgres, sqlite} {
			literal := e.EncodeValue(c, "a'b''c")
			trimmed := strings.TrimSuffix(strings.TrimPrefix(literal, "'"), "'")
			assert.NotContains(t, strings.ReplaceAll(trimmed, "''", ""), "'")
		}
	})
}

func TestFormatValueTemporal(t *testing.T) {
	mysql, _ := New(MySQL)
	postgres, _ := New(Postgres)
	sqlite, _ := New(SQLite)
	dt := column.New("created_at", "DateTime")
	date := column.New("birthday", "Date")
	tm := column.New("start", "Time")

	assert.Equal(t, "current_timestamp(6)", mysql.FormatValue(dt, "now"))
	assert.Equal(t, "from_unixtime(0)", mysql.FormatValue(dt, "epoch"))
	assert.Equal(t, "curdate() + INTERVAL 1 DAY", mysql.FormatValue(dt, "tomorrow"))
	assert.Equal(t, "curtime()", mysql.FormatValue(tm, "now"))

	assert.Equal(t, "now()", postgres.FormatValue(dt, "now"))
	assert.Equal(t, "'epoch'", postgres.FormatValue(dt, "epoch"))
	assert.Equal(t, "date_trunc('day', now()) - '1 day'::INTERVAL", postgres.FormatValue(dt, "yesterday"))
	assert.Equal(t, "current_date", postgres.FormatValue(date, "today"))
	assert.Equal(t, "'allballs'", postgres.FormatValue(tm, "midnight"))

	assert.Equal(t, "datetime('now', 'localtime')", sqlite.FormatValue(dt, "now"))
	assert.Equal(t, "datetime(0, 'unixepoch')", sqlite.FormatValue(dt, "epoch"))
	assert.Equal(t, "datetime('now', 'start of day', '+1 day')", sqlite.FormatValue(dt, "tomorrow"))
	assert.Equal(t, "'1970-01-01'", sqlite.FormatValue(date, "epoch"))
	assert.Equal(t, "'00:00:00'", sqlite.FormatValue(tm, "midnight"))
}

func TestFormatValueNumbers(t *testing.T) {
	mysql, _ := New(MySQL)
	c := column.New("age", "u32")
	assert.Equal(t, "42", mysql.FormatValue(c, "42"))
	assert.Equal(t, "NULL", mysql.FormatValue(c, "-1"))
	assert.Equal(t, "NULL", mysql.FormatValue(c, "42; DROP TABLE"))

	f := column.New("score", "f64")
	assert.Equal(t, "3.14", mysql.FormatValue(f, "3.14"))
	assert.Equal(t, "NULL", mysql.FormatValue(f, "pi"))
}

func TestFormatFilterOperators(t *testing.T) {
	mysql, _ := New(MySQL)
	postgres, _ := New(Postgres)
	sqlite, _ := New(SQLite)
	status := column.New("status", "String")

	t.Run("NotIn", func(t *testing.T) {
		filter := value.FromEntry("$nin", []value.Value{"Deleted", "Locked"})
		got := postgres.FormatFilter(status, `"t"."status"`, filter)
		assert.Equal(t, `"t"."status" NOT IN ('Deleted', 'Locked')`, got)
	})
	t.Run("EmptyListFolds", func(t *testing.T) {
		assert.Equal(t, "FALSE", sqlite.FormatFilter(status, `"status"`, value.FromEntry("$in", []value.Value{})))
		assert.Equal(t, "TRUE", sqlite.FormatFilter(status, `"status"`, value.FromEntry("$nin", []value.Value{})))
	})
	t.Run("Between", func(t *testing.T) {
		age := column.New("age", "i32")
		filter := value.FromEntry("$betw", []value.Value{int64(18), int64(60)})
		assert.Equal(t, "(`age` BETWEEN 18 AND 60)", mysql.FormatFilter(age, "`age`", filter))
	})
	t.Run("CaseInsensitiveLike", func(t *testing.T) {
		got := postgres.FormatFilter(status, `"status"`, value.FromEntry("$ilike", "%admin%"))
		assert.Equal(t, `"status" ILIKE '%admin%'`, got)
		got = mysql.FormatFilter(status, "`status`", value.FromEntry("$ilike", "%admin%"))
		assert.Equal(t, "LOWER(`status`) LIKE LOWER('%admin%')", got)
		got = sqlite.FormatFilter(status, `"status"`, value.FromEntry("$ilike", "%admin%"))
		assert.Equal(t, `LOWER("status") LIKE LOWER('%admin%')`, got)
	})
	t.Run("Regex", func(t *testing.T) {
		assert.Equal(t, "`status` RLIKE '^a'",
			mysql.FormatFilter(status, "`status`", value.FromEntry("$rlike", "^a")))
		assert.Equal(t, `"status" ~* '^a'`,
			postgres.FormatFilter(status, `"status"`, value.FromEntry("$rlike", "^a")))
		assert.Equal(t, `"status" REGEXP '^a'`,
			sqlite.FormatFilter(status, `"status"`, value.FromEntry("$rlike", "^a")))
	})
	t.Run("Size", func(t *testing.T) {
		tags := column.New("tags", "Vec<String>")
		assert.Equal(t, "json_length(`tags`) = 3",
			mysql.FormatFilter(tags, "`tags`", value.FromEntry("$size", int64(3))))
		assert.Equal(t, `array_length("tags", 1) = 3`,
			postgres.FormatFilter(tags, `"tags"`, value.FromEntry("$size", int64(3))))
		assert.Equal(t, `json_array_length("tags") = 3`,
			sqlite.FormatFilter(tags, `"tags"`, value.FromEntry("$size", int64(3))))
	})
	t.Run("Subquery", func(t *testing.T) {
		id := column.New("id", "i64")
		sub := value.FromEntry("$subquery", "(SELECT id FROM banned)")
		filter := value.FromEntry("$nin", sub)
		assert.Equal(t, "`id` NOT IN (SELECT id FROM banned)",
			mysql.FormatFilter(id, "`id`", filter))
	})
	t.Run("UnknownOperatorSkipped", func(t *testing.T) {
		filter := value.FromEntry("$frobnicate", "x")
		assert.Empty(t, mysql.FormatFilter(status, "`status`", filter))
	})
	t.Run("MultipleConditions", func(t *testing.T) {
		age := column.New("age", "i32")
		filter := value.FromEntries(
			value.Entry{Key: "$ge", Value: int64(18)},
			value.Entry{Key: "$lt", Value: int64(60)},
		)
		assert.Equal(t, "`age` >= 18 AND `age` < 60", mysql.FormatFilter(age, "`age`", filter))
	})
}

func TestFormatFilterScalars(t *testing.T) {
	mysql, _ := New(MySQL)
	postgres, _ := New(Postgres)
	sqlite, _ := New(SQLite)

	t.Run("Equality", func(t *testing.T) {
		visibility := column.New("visibility", "String")
		got := postgres.FormatFilter(visibility, `"t"."visibility"`, "Public")
		assert.Equal(t, `"t"."visibility" = 'Public'`, got)
	})
	t.Run("NullSentinels", func(t *testing.T) {
		name := column.New("name", "String")
		assert.Equal(t, "`name` IS NULL", mysql.FormatFilter(name, "`name`", "null"))
		assert.Equal(t, "`name` IS NOT NULL", mysql.FormatFilter(name, "`name`", "not_null"))
		assert.Equal(t, "`name` IS NULL", mysql.FormatFilter(name, "`name`", nil))
	})
	t.Run("EmptySentinels", func(t *testing.T) {
		name := column.New("name", "String")
		assert.Equal(t, "(`name` = '') IS NOT FALSE", mysql.FormatFilter(name, "`name`", "empty"))
		assert.Equal(t, "(`name` = '') IS FALSE", mysql.FormatFilter(name, "`name`", "nonempty"))
	})
	t.Run("Bool", func(t *testing.T) {
		enabled := column.New("enabled", "bool")
		assert.Equal(t, "`enabled` IS TRUE", mysql.FormatFilter(enabled, "`enabled`", true))
		assert.Equal(t, "`enabled` IS NOT TRUE", mysql.FormatFilter(enabled, "`enabled`", false))
	})
	t.Run("Integers", func(t *testing.T) {
		age := column.New("age", "i32")
		assert.Equal(t, "`age` <> 0", mysql.FormatFilter(age, "`age`", "nonzero"))
		assert.Equal(t, "`age` IN (1,2,3)", mysql.FormatFilter(age, "`age`", "1,2,3"))
		assert.Equal(t, "`age` = 18", mysql.FormatFilter(age, "`age`", int64(18)))
	})
	t.Run("ComparisonPrefix", func(t *testing.T) {
		name := column.New("name", "String")
		assert.Equal(t, "`name` >= 'm'", mysql.FormatFilter(name, "`name`", ">= m"))
		assert.Equal(t, "`name` <> 'x'", mysql.FormatFilter(name, "`name`", "<>x"))
	})
	t.Run("RegexPrefix", func(t *testing.T) {
		name := column.New("name", "String")
		assert.Equal(t, `"name" ~* 'smith'`, postgres.FormatFilter(name, `"name"`, "~* smith"))
	})
	t.Run("FuzzySearch", func(t *testing.T) {
		name := column.New("name", "String")
		name.Extra.Upsert("fuzzy_search", true)
		assert.Equal(t, "`name` LIKE '%ann%'", mysql.FormatFilter(name, "`name`", "ann"))
		assert.Equal(t, "(`name` LIKE '%ann%' OR `name` LIKE '%bob%')",
			mysql.FormatFilter(name, "`name`", "ann,bob"))
		assert.Equal(t, `"name" ~* 'ann'`, postgres.FormatFilter(name, `"name"`, "ann"))
		assert.Equal(t, `"name" LIKE '%ann%'`, sqlite.FormatFilter(name, `"name"`, "ann"))
	})
	t.Run("ExactFilter", func(t *testing.T) {
		name := column.New("name", "String")
		name.Extra.Upsert("fuzzy_search", true)
		name.Extra.Upsert("exact_filter", true)
		assert.Equal(t, "`name` = 'ann'", mysql.FormatFilter(name, "`name`", "ann"))
	})
	t.Run("CommaMembership", func(t *testing.T) {
		status := column.New("status", "String")
		assert.Equal(t, "`status` IN ('Active', 'Inactive')",
			mysql.FormatFilter(status, "`status`", "Active,Inactive"))
	})
	t.Run("BareArray", func(t *testing.T) {
		age := column.New("age", "i32")
		assert.Equal(t, "(`age` BETWEEN 18 AND 60)",
			mysql.FormatFilter(age, "`age`", []value.Value{int64(18), int64(60)}))
		assert.Equal(t, "`age` IN (1, 2, 3)",
			mysql.FormatFilter(age, "`age`", []value.Value{int64(1), int64(2), int64(3)}))
	})
}

func TestFormatFilterTemporal(t *testing.T) {
	mysql, _ := New(MySQL)
	postgres, _ := New(Postgres)
	sqlite, _ := New(SQLite)
	updated := column.New("updated_at", "DateTime")

	t.Run("PrefixMatch", func(t *testing.T) {
		got := sqlite.FormatFilter(updated, `"t"."updated_at"`, "2023-11")
		assert.Equal(t, `strftime('%Y-%m', "t"."updated_at") = '2023-11'`, got)

		got = postgres.FormatFilter(updated, `"updated_at"`, "2023")
		assert.Equal(t, `to_char("updated_at", 'YYYY') = '2023'`, got)

		got = mysql.FormatFilter(updated, "`updated_at`", "2023-11-02")
		assert.Equal(t, "date_format(`updated_at`, '%Y-%m-%d') = '2023-11-02'", got)
	})
	t.Run("HalfOpenRange", func(t *testing.T) {
		got := sqlite.FormatFilter(updated, `"updated_at"`, "2023-01-01,2024-01-01")
		assert.Equal(t, `"updated_at" >= '2023-01-01' AND "updated_at" < '2024-01-01'`, got)
	})
	t.Run("Keywords", func(t *testing.T) {
		got := postgres.FormatFilter(updated, `"updated_at"`, "yesterday,today")
		assert.Equal(t,
			`"updated_at" >= date_trunc('day', now()) - '1 day'::INTERVAL AND "updated_at" < date_trunc('day', now())`,
			got)
	})
	t.Run("Time", func(t *testing.T) {
		start := column.New("start", "Time")
		got := sqlite.FormatFilter(start, `"start"`, "09:30")
		assert.Equal(t, `strftime('%H:%M', "start") = '09:30'`, got)
	})
}

func TestFormatFilterArrays(t *testing.T) {
	mysql, _ := New(MySQL)
	postgres, _ := New(Postgres)
	sqlite, _ := New(SQLite)
	tags := column.New("tags", "Vec<String>")

	t.Run("Nonempty", func(t *testing.T) {
		assert.Equal(t, "json_length(`tags`) > 0", mysql.FormatFilter(tags, "`tags`", "nonempty"))
		assert.Equal(t, `array_length("tags", 1) > 0`, postgres.FormatFilter(tags, `"tags"`, "nonempty"))
		assert.Equal(t, `json_array_length("tags") > 0`, sqlite.FormatFilter(tags, `"tags"`, "nonempty"))
	})
	t.Run("Overlap", func(t *testing.T) {
		assert.Equal(t, "json_overlaps(`tags`, json_array('rust','db'))",
			mysql.FormatFilter(tags, "`tags`", "rust,db"))
		assert.Equal(t, `"tags" && ARRAY['rust','db']::TEXT[]`,
			postgres.FormatFilter(tags, `"tags"`, "rust,db"))
		assert.Equal(t, "(json_each.value = 'rust' OR json_each.value = 'db')",
			sqlite.FormatFilter(tags, `"tags"`, "rust,db"))
	})
	t.Run("ContainsGroups", func(t *testing.T) {
		assert.Equal(t,
			"(json_contains(`tags`, json_array('a','b')) OR json_contains(`tags`, json_array('c')))",
			mysql.FormatFilter(tags, "`tags`", "a;b,c"))
		assert.Equal(t,
			`("tags" @> ARRAY['a','b']::TEXT[] OR "tags" @> ARRAY['c']::TEXT[])`,
			postgres.FormatFilter(tags, `"tags"`, "a;b,c"))
	})
}

func TestFormatFilterMaps(t *testing.T) {
	mysql, _ := New(MySQL)
	postgres, _ := New(Postgres)
	sqlite, _ := New(SQLite)
	extra := column.New("extra", "Map")
	filter := value.FromEntry("k", "v")

	assert.Equal(t, `json_contains(`+"`extra`"+`, '{"k":"v"}')`,
		mysql.FormatFilter(extra, "`extra`", filter))
	assert.Equal(t, `"extra" @> '{"k":"v"}'::JSONB`,
		postgres.FormatFilter(extra, `"extra"`, filter))
	assert.Equal(t, "json_tree.key = 'k' AND json_tree.value = 'v'",
		sqlite.FormatFilter(extra, `"extra"`, filter))
	assert.Equal(t, `"extra" @? '$.roles[*] ? (@ == "admin")'`,
		postgres.FormatFilter(extra, `"extra"`, `$.roles[*] ? (@ == "admin")`))
}

func TestRandomFilter(t *testing.T) {
	mysql, _ := New(MySQL)
	postgres, _ := New(Postgres)
	sqlite, _ := New(SQLite)
	assert.Equal(t, "rand() < 0.05", mysql.RandomFilter(0.05))
	assert.Equal(t, "random() < 0.05", postgres.RandomFilter(0.05))
	assert.True(t, strings.HasPrefix(sqlite.RandomFilter(0.05), "abs(random()) < "))
}

func TestParseTextSearch(t *testing.T) {
	filter := value.FromEntries(
		value.Entry{Key: "$fields", Value: []value.Value{"title", "body"}},
		value.Entry{Key: "$search", Value: "quick brown fox"},
	)
	mysql, _ := New(MySQL)
	postgres, _ := New(Postgres)
	sqlite, _ := New(SQLite)

	got, ok := mysql.ParseTextSearch(filter)
	require.True(t, ok)
	assert.Equal(t, "match(title,body) against('quick brown fox')", got)

	got, ok = postgres.ParseTextSearch(filter)
	require.True(t, ok)
	assert.Equal(t,
		"to_tsvector('english', title || ' ' || body) @@ websearch_to_tsquery('english', 'quick brown fox')",
		got)

	got, ok = sqlite.ParseTextSearch(filter)
	require.True(t, ok)
	assert.Equal(t, "title, body MATCH 'quick brown fox'", got)

	filter.Upsert("$language", "german")
	got, ok = postgres.ParseTextSearch(filter)
	require.True(t, ok)
	assert.Contains(t, got, "to_tsvector('german',")

	// A language that is not a plain regconfig name cannot reach the
	// rendered expression; the default takes over.
	filter.Upsert("$language", "x', title) @@ plainto_tsquery('x")
	got, ok = postgres.ParseTextSearch(filter)
	require.True(t, ok)
	assert.Contains(t, got, "to_tsvector('english',")

	_, ok = mysql.ParseTextSearch(value.FromEntry("$search", "x"))
	assert.False(t, ok)
}

func TestVirtualTables(t *testing.T) {
	tags := column.New("tags", "Vec<String>")
	extra := column.New("extra", "Map")
	name := column.New("name", "String")
	cols := []*column.Column{tags, extra, name}
	filters := value.FromEntries(
		value.Entry{Key: "tags", Value: "rust"},
		value.Entry{Key: "extra", Value: value.FromEntry("k", "v")},
		value.Entry{Key: "name", Value: "ann"},
	)

	sqlite, _ := New(SQLite)
	tables := sqlite.VirtualTables("t", cols, filters)
	require.Len(t, tables, 2)
	assert.Equal(t, `json_each("t"."tags")`, tables[0])
	assert.Equal(t, `json_tree("t"."extra")`, tables[1])
	assert.Empty(t, sqlite.VirtualTables("t", cols, value.NewMap()))

	mysql, _ := New(MySQL)
	assert.Empty(t, mysql.VirtualTables("t", cols, filters))
}

func TestOnConflictUpdate(t *testing.T) {
	mysql, _ := New(MySQL)
	postgres, _ := New(Postgres)
	assert.Equal(t, "ON DUPLICATE KEY UPDATE name = 'a'", mysql.OnConflictUpdate("id", "name = 'a'"))
	assert.Equal(t, "ON CONFLICT (id) DO UPDATE SET name = 'a'", postgres.OnConflictUpdate("id", "name = 'a'"))
}

func TestSubqueryPredicate(t *testing.T) {
	mysql, _ := New(MySQL)
	sqlite, _ := New(SQLite)
	sub := "SELECT id FROM user WHERE status = 'Inactive' LIMIT 1"
	assert.Equal(t, "(SELECT * FROM ("+sub+") AS t)", mysql.SubqueryPredicate(sub))
	assert.Equal(t, "("+sub+")", sqlite.SubqueryPredicate(sub))
}

func TestFormatField(t *testing.T) {
	mysql, _ := New(MySQL)
	postgres, _ := New(Postgres)
	assert.Equal(t, "`user`.`name`", mysql.FormatField("user.name"))
	assert.Equal(t, `"user"."name"`, postgres.FormatField("user.name"))
	assert.Equal(t, "$1", postgres.Placeholder(1))
	assert.Equal(t, "$7", postgres.Placeholder(7))
	assert.Equal(t, "?", mysql.Placeholder(3))
}
