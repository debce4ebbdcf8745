// Package veldt is a dialect-aware relational query and mutation engine.
//
// Veldt translates a JSON-shaped, language-neutral query description into
// SQL text for MySQL/MariaDB/TiDB, PostgreSQL, and SQLite. The packages
// compose bottom-up:
//
//   - value:       dynamic JSON value model with an insertion-ordered map
//   - column:      per-field metadata driving DDL, encoding, and export
//   - dialect:     per-dialect encoders for types, literals, and filters
//   - query:       query/mutation models, typed builders, SQL assembly
//   - dialect/sql: thin driver and pool layer over database/sql
//   - schema:      model contract, lifecycle hooks, and CRUD operations
//   - config:      YAML pool configuration with live reload
//   - gen:         per-model column constant generation
package veldt
