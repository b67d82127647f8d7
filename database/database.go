package database

import (
	"net/url"

	sq "github.com/Masterminds/squirrel"
)

// GORM rewrites '?' into the dialect's bind variables, so every builder uses
// question placeholders regardless of driver.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// SQLiteDSN builds a go-sqlite3 DSN for a database file. Transactions begin
// IMMEDIATE so concurrent writers wait on the busy timeout instead of failing
// on lock upgrade.
func SQLiteDSN(path string) string {
	params := url.Values{}
	params.Set("_busy_timeout", "5000")
	params.Set("_txlock", "immediate")
	params.Set("_journal_mode", "WAL")
	params.Set("_foreign_keys", "1")
	return "file:" + path + "?" + params.Encode()
}

// SQLiteMemoryDSN builds a DSN for a named shared in-memory database.
func SQLiteMemoryDSN(name string) string {
	params := url.Values{}
	params.Set("mode", "memory")
	params.Set("cache", "shared")
	params.Set("_foreign_keys", "1")
	params.Set("_busy_timeout", "5000")
	return "file:" + name + "?" + params.Encode()
}
