package gen

import (
	"context"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userModel() *Model {
	return &Model{
		Name: "User",
		Columns: []Column{
			{Name: "id", TypeName: "Uuid"},
			{Name: "name", TypeName: "String"},
			{Name: "created_at", TypeName: "DateTime"},
		},
	}
}

func TestSource(t *testing.T) {
	src, err := New("model", ".").Source(userModel())
	require.NoError(t, err)
	out := string(src)

	_, err = parser.ParseFile(token.NewFileSet(), "user_columns.go", src, parser.ParseComments)
	require.NoError(t, err, "generated source must parse")

	assert.Contains(t, out, "Code generated by veldt gen. DO NOT EDIT.")
	assert.Contains(t, out, "package model")
	assert.Contains(t, out, "type UserColumn string")
	assert.Contains(t, out, `const UserTable = "users"`)
	assert.Contains(t, out, `UserID UserColumn = "id"`)
	assert.Contains(t, out, `UserName UserColumn = "name"`)
	assert.Contains(t, out, `UserCreatedAt UserColumn = "created_at"`)
	assert.Contains(t, out, "func UserColumns() []string")
	assert.Contains(t, out, `"id", "name", "created_at"`)
}

func TestTableNameOverride(t *testing.T) {
	m := &Model{Name: "Person", Table: "people", Columns: []Column{{Name: "id", TypeName: "Uuid"}}}
	src, err := New("model", ".").Source(m)
	require.NoError(t, err)
	assert.Contains(t, string(src), `const PersonTable = "people"`)

	m.Table = ""
	assert.Equal(t, "people", m.TableName(), "pluralization handles irregular nouns")
}

func TestGenerateWritesFiles(t *testing.T) {
	dir := t.TempDir()
	g := New("model", dir)
	models := []*Model{
		userModel(),
		{Name: "OrderItem", Columns: []Column{{Name: "id", TypeName: "Uuid"}, {Name: "order_id", TypeName: "Uuid"}}},
	}
	require.NoError(t, g.Generate(context.Background(), models))

	data, err := os.ReadFile(filepath.Join(dir, "user_columns.go"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "type UserColumn string")

	data, err = os.ReadFile(filepath.Join(dir, "order_item_columns.go"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `OrderItemOrderID OrderItemColumn = "order_id"`)
}

func TestSourceRejectsEmpty(t *testing.T) {
	_, err := New("model", ".").Source(&Model{Name: "User"})
	assert.Error(t, err)
	_, err = New("model", ".").Source(&Model{Columns: []Column{{Name: "id"}}})
	assert.Error(t, err)
}
