package query

import (
	"strings"

	"github.com/syssam/veldt/dialect"
)

// Join types.
const (
	Join      = "JOIN"
	InnerJoin = "INNER JOIN"
	LeftJoin  = "LEFT JOIN"
	RightJoin = "RIGHT JOIN"
	FullJoin  = "FULL JOIN"
	CrossJoin = "CROSS JOIN"
)

// JoinOn describes a join against another entity's table. Condition
// operands are dotted `model.column` references.
type JoinOn struct {
	encoder    dialect.Encoder
	joinType   string
	table      string
	model      string
	conditions []string
}

// NewJoinOn returns an inner join against the entity's table.
func NewJoinOn(enc dialect.Encoder, m Entity) *JoinOn {
	return &JoinOn{
		encoder:  enc,
		joinType: InnerJoin,
		table:    m.TableName(),
		model:    m.ModelName(),
	}
}

// WithType overrides the join type.
func (j *JoinOn) WithType(joinType string) *JoinOn {
	j.joinType = joinType
	return j
}

func (j *JoinOn) push(left, operator, right string) *JoinOn {
	j.conditions = append(j.conditions,
		j.encoder.FormatField(left)+" "+operator+" "+j.encoder.FormatField(right))
	return j
}

// Eq joins on equality of two fields.
func (j *JoinOn) Eq(left, right string) *JoinOn { return j.push(left, "=", right) }

// Ne joins on inequality of two fields.
func (j *JoinOn) Ne(left, right string) *JoinOn { return j.push(left, "<>", right) }

// Lt joins on a less-than comparison.
func (j *JoinOn) Lt(left, right string) *JoinOn { return j.push(left, "<", right) }

// Le joins on a less-than-or-equal comparison.
func (j *JoinOn) Le(left, right string) *JoinOn { return j.push(left, "<=", right) }

// Gt joins on a greater-than comparison.
func (j *JoinOn) Gt(left, right string) *JoinOn { return j.push(left, ">", right) }

// Ge joins on a greater-than-or-equal comparison.
func (j *JoinOn) Ge(left, right string) *JoinOn { return j.push(left, ">=", right) }

// Format renders the join clause.
func (j *JoinOn) Format() string {
	clause := j.joinType + " " + j.encoder.FormatField(j.table) +
		" AS " + j.encoder.QuoteIdentifier(j.model)
	if len(j.conditions) > 0 {
		clause += " ON " + strings.Join(j.conditions, " AND ")
	}
	return clause
}
