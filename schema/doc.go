// Package schema executes queries and mutations for an entity against
// named connection pools.
//
// A Schema pairs entity metadata with a pool registry and renders every
// operation through the pool's dialect encoder. Reads go to the reader
// pool, writes to the writer pool, so replicas slot in without touching
// call sites:
//
//	s := schema.New(userEntity, registry,
//		schema.WithReader("replica"),
//		schema.WithMaxRows(10000),
//	)
//	rows, err := s.Find(ctx, q)
//
// Beyond the CRUD family the package carries reference population
// (one IN query joins related records back under "<col>_populated"),
// LEFT JOIN lookups, random sampling, raw statements with ${name}
// interpolation and #{name} binding, and transactions. Models opt into
// lifecycle hooks by implementing the Before*/After* interfaces.
package schema
