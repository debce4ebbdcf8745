package query

import (
	"regexp"
	"strings"

	"github.com/syssam/veldt/dialect"
	"github.com/syssam/veldt/value"
)

var (
	spliceRe = regexp.MustCompile(`\$\{\s*([a-zA-Z]+[\w.]*)\s*\}`)
	bindRe   = regexp.MustCompile(`#\{\s*([a-zA-Z]+[\w.]*)\s*\}`)
)

// FormatQuery splices `${name}` templates into the statement. String
// parameters splice raw, so they may carry SQL fragments; other values
// splice in their unquoted string form. A template without a matching
// parameter stays verbatim.
func FormatQuery(sql string, params *value.Map) string {
	if params == nil || !strings.Contains(sql, "${") {
		return sql
	}
	return spliceRe.ReplaceAllStringFunc(sql, func(match string) string {
		name := templateName(match)
		v, ok := params.Get(name)
		if !ok {
			return match
		}
		if s, ok := value.AsStr(v); ok {
			return s
		}
		return value.ToStringUnquoted(v)
	})
}

// PrepareQuery splices `${name}` templates, then replaces each
// `#{name}` binding with the dialect's placeholder and collects the
// bound values in order. A binding without a matching parameter binds
// NULL.
func PrepareQuery(enc dialect.Encoder, sql string, params *value.Map) (string, []value.Value) {
	sql = FormatQuery(sql, params)
	if !strings.Contains(sql, "#{") {
		return sql, nil
	}
	var args []value.Value
	prepared := bindRe.ReplaceAllStringFunc(sql, func(match string) string {
		var v value.Value
		if params != nil {
			if bound, ok := params.Get(templateName(match)); ok {
				v = bound
			}
		}
		args = append(args, v)
		return enc.Placeholder(len(args))
	})
	return prepared, args
}

// templateName strips the `${...}` or `#{...}` delimiters.
func templateName(match string) string {
	return strings.TrimSpace(match[2 : len(match)-1])
}
