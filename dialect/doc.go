// Package dialect renders SQL fragments for the supported database
// dialects: MySQL (with MariaDB and TiDB flavors), PostgreSQL, and
// SQLite.
//
// The Encoder interface is the per-dialect surface the query assembler
// and the schema layer build on: column DDL types and definitions,
// literal encoding of dynamic values, per-column filter rendering,
// identifier quoting, bind placeholders, and the dialect-specific
// clauses (upsert conflict handling, subquery predicates, random
// sampling, text search).
//
//	enc, err := dialect.New(dialect.Postgres)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	field := enc.FormatField("user.status")  // "user"."status"
//
// The Driver, Tx, and ExecQuerier interfaces describe the execution
// side; dialect/sql implements them over database/sql and adds the
// named pool registry the schema layer acquires connections from.
package dialect
