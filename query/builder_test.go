package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/veldt/dialect"
	"github.com/syssam/veldt/value"
)

func TestBuilderLowering(t *testing.T) {
	entity := newTestEntity()
	postgres := newEncoder(t, dialect.Postgres)
	q := NewBuilder[string](entity, postgres).
		AndNotIn("status", []value.Value{"Deleted", "Locked"}).
		AndEq("visibility", "Public").
		OrderDesc("updated_at").
		Limit(20).
		Build()
	assert.Equal(t,
		`WHERE ("t"."status" NOT IN ('Deleted', 'Locked') AND "t"."visibility" = 'Public')`,
		q.FormatFilters(entity, postgres))
	assert.Equal(t, `ORDER BY "updated_at" DESC`, q.FormatSort(postgres))
	assert.Equal(t, "LIMIT 20 OFFSET 0", q.FormatPagination())
}

func TestBuilderOrGroup(t *testing.T) {
	entity := newTestEntity()
	mysql := newEncoder(t, dialect.MySQL)
	q := NewBuilder[string](entity, mysql).
		OrEq("roles", "worker").
		OrIn("roles", []value.Value{"admin", "auditor"}).
		Build()
	assert.Equal(t,
		"WHERE (`t`.`roles` = 'worker' OR `t`.`roles` IN ('admin', 'auditor'))",
		q.FormatFilters(entity, mysql))
}

func TestBuilderMerge(t *testing.T) {
	entity := newTestEntity()
	postgres := newEncoder(t, dialect.Postgres)
	visible := NewBuilder[string](entity, postgres).
		OrEq("visibility", "Public").
		OrEq("visibility", "Internal")
	q := NewBuilder[string](entity, postgres).
		AndNe("status", "Deleted").
		And(visible).
		Build()
	assert.Equal(t,
		`WHERE ("t"."status" <> 'Deleted'`+
			` AND ("t"."visibility" = 'Public' OR "t"."visibility" = 'Internal'))`,
		q.FormatFilters(entity, postgres))
}

func TestBuilderRangesAndPatterns(t *testing.T) {
	entity := newTestEntity()
	postgres := newEncoder(t, dialect.Postgres)
	q := NewBuilder[string](entity, postgres).
		AndInRange("age", int64(18), int64(65)).
		AndBetween("amount", int64(10), int64(20)).
		AndContains("name", "li").
		AndNotNull("status").
		Build()
	assert.Equal(t,
		`WHERE ("t"."age" >= 18 AND "t"."age" < 65`+
			` AND ("t"."amount" BETWEEN 10 AND 20)`+
			` AND "t"."name" LIKE '%li%'`+
			` AND "t"."status" IS NOT NULL)`,
		q.FormatFilters(entity, postgres))
}

func TestBuilderSkipsNullValues(t *testing.T) {
	entity := newTestEntity()
	postgres := newEncoder(t, dialect.Postgres)
	q := NewBuilder[string](entity, postgres).
		AndEqIfNotNull("status", nil).
		AndNeIfNotNull("visibility", "Public").
		Build()
	assert.Equal(t,
		`WHERE "t"."visibility" <> 'Public'`,
		q.FormatFilters(entity, postgres))
}

func TestBuilderOverlaps(t *testing.T) {
	entity := newTestEntity()
	postgres := newEncoder(t, dialect.Postgres)
	q := NewBuilder[string](entity, postgres).
		AndOverlaps("age", "amount", int64(1), int64(9)).
		Build()
	assert.Equal(t,
		`WHERE ("t"."age" <= 9 AND "t"."amount" >= 1)`,
		q.FormatFilters(entity, postgres))
}

func TestBuilderGroupHaving(t *testing.T) {
	entity := newTestEntity()
	postgres := newEncoder(t, dialect.Postgres)
	q := NewBuilder[string](entity, postgres).
		Field("status").
		Aggregate(Sum[string]("amount"), "").
		GroupBy("status").
		HavingGt(Sum[string]("amount"), int64(100)).
		Build()
	assert.Equal(t, []string{"status", `amount_sum:sum("amount")`}, q.Fields())
	assert.Equal(t,
		`GROUP BY "status" HAVING sum("amount") > 100`,
		q.FormatFilters(entity, postgres))
}

func TestBuilderSubquery(t *testing.T) {
	entity := newTestEntity()
	postgres := newEncoder(t, dialect.Postgres)
	sub := NewBuilder[string](entity, postgres).
		Field("id").
		AndEq("status", "Active").
		Limit(0)
	assert.Equal(t,
		`(SELECT "id" FROM "users" AS "t" WHERE "t"."status" = 'Active')`,
		sub.BuildSubquery())

	q := NewBuilder[string](entity, postgres).
		AndInSubquery([]string{"id"}, sub).
		Build()
	assert.Equal(t,
		`WHERE ("t"."id") IN (SELECT "id" FROM "users" AS "t" WHERE "t"."status" = 'Active')`,
		q.FormatFilters(entity, postgres))
}

func TestBuilderExtras(t *testing.T) {
	entity := newTestEntity()
	postgres := newEncoder(t, dialect.Postgres)
	q := NewBuilder[string](entity, postgres).
		TableName("users_archive").
		PrimaryKey("u1").
		Build()
	assert.Equal(t, `"users_archive" AS "t"`, q.FormatTableName(entity, postgres))
	assert.Equal(t, `WHERE "t"."id" = 'u1'::uuid`, q.FormatFilters(entity, postgres))
}

func TestAggregationExpr(t *testing.T) {
	mysql := newEncoder(t, dialect.MySQL)
	postgres := newEncoder(t, dialect.Postgres)
	sqlite := newEncoder(t, dialect.SQLite)

	count := Count[string]("name", true)
	assert.Equal(t, "count(DISTINCT `name`)", count.Expr(mysql))
	assert.Equal(t, "name_distinct", count.DefaultAlias())
	assert.Equal(t, "name_count", Count[string]("name", false).DefaultAlias())

	arrayAgg := JSONArrayAgg[string]("tags")
	assert.Equal(t, "json_arrayagg(`tags`)", arrayAgg.Expr(mysql))
	assert.Equal(t, `jsonb_agg("tags")`, arrayAgg.Expr(postgres))
	assert.Equal(t, `json_group_array("tags")`, arrayAgg.Expr(sqlite))
	assert.Equal(t, "tags_arrayagg", arrayAgg.DefaultAlias())

	objectAgg := JSONObjectAgg[string]("name", "amount")
	assert.Equal(t, `jsonb_object_agg("name", "amount")`, objectAgg.Expr(postgres))
	assert.Equal(t, "name_amount_objectagg", objectAgg.DefaultAlias())
}

func TestWindowExpr(t *testing.T) {
	postgres := newEncoder(t, dialect.Postgres)

	rowNumber := RowNumber[string]("status").OrderBy("updated_at", true)
	assert.Equal(t,
		`row_number() OVER (PARTITION BY "status" ORDER BY "updated_at" DESC)`,
		rowNumber.Expr(postgres))
	assert.Equal(t, "row_number", rowNumber.DefaultAlias())

	lag := Lag[string]("amount", 1, "status")
	assert.Equal(t,
		`lag("amount", 1) OVER (PARTITION BY "status")`,
		lag.Expr(postgres))
	assert.Equal(t, "amount_prev", lag.DefaultAlias())

	sum := WindowSum[string]("amount", "status")
	assert.Equal(t,
		`sum("amount") OVER (PARTITION BY "status")`,
		sum.Expr(postgres))
	assert.Equal(t, "amount_sum", sum.DefaultAlias())
}

func TestJoinOnFormat(t *testing.T) {
	mysql := newEncoder(t, dialect.MySQL)
	entity := newTestEntity()
	join := NewJoinOn(mysql, entity).
		WithType(LeftJoin).
		Eq("p.user_id", "t.id")
	assert.Equal(t,
		"LEFT JOIN `users` AS `t` ON `p`.`user_id` = `t`.`id`",
		join.Format())
}

func TestMutationBuilder(t *testing.T) {
	entity := newTestEntity()
	mysql := newEncoder(t, dialect.MySQL)
	m := NewMutationBuilder[string]().
		Set("status", "Archived").
		SetNow("updated_at").
		IncOne("age").
		Max("amount", int64(100)).
		Build()
	require.NotNil(t, m)
	assert.Equal(t,
		"`status` = 'Archived', `updated_at` = current_timestamp(6),"+
			" `age` = 1 + `age`, `amount` = greatest(100, `amount`)",
		m.FormatUpdates(entity, mysql))
}
