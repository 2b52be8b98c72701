// Package migrations embeds the goose SQL migrations for the relational
// schema. Uniqueness (username, phone+country pair, session token) lives in
// the schema itself so concurrent writers cannot race past an application
// level check. The migration SQL targets MySQL; a sqlite3 deployment is
// expected to carry a pre-created schema.
package migrations

import (
	"database/sql"
	"embed"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var embedMigrations embed.FS

func Up(db *sql.DB, dialect string) error {
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	return goose.Up(db, ".")
}
