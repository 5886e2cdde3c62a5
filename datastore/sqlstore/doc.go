// Package sqlstore stores documents in a SQL database through bun.
//
// All collections share one table, docstore_documents, keyed by
// (index_name, collection, id) with the payload kept as JSON text. SQLite,
// PostgreSQL and MySQL are supported; Open picks the bun dialect from
// Config.Driver and can install a bundebug query hook. Conditions are
// evaluated on decoded payloads, so Search reads rows in id order and
// filters them before filling a page.
package sqlstore
