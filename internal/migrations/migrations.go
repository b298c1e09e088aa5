package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed *.sql
var schemaFS embed.FS

// Apply brings the schema up to the newest version. The SQL files travel
// inside the binary, so startup does not depend on the working directory.
func Apply(db *sql.DB, logger *zap.SugaredLogger) error {
	goose.SetBaseFS(schemaFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("apply schema migrations: %w", err)
	}
	logger.Info("schema is up to date")
	return nil
}
