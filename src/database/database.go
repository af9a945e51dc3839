package database

import (
	"database/sql"
	stdlog "log"

	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

// InitDB opens the sqlite database and ensures the payments schema exists.
// The UNIQUE constraint on payments.id is the authority for replay
// protection when the sqlite ledger backend is selected.
func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if logger.L != nil {
		logger.L.Info("Ensuring database schema", "databasePath", databasePath)
	} else {
		stdlog.Println("Ensuring database schema for:", databasePath)
	}

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		recorded_at TIMESTAMP NOT NULL,
		amount TEXT NOT NULL,
		resource TEXT NOT NULL,
		payer TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payments_recorded_at ON payments(recorded_at);
	`

	_, err = DB.Exec(createTableStatement)
	if err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.")
	} else {
		stdlog.Println("Database tables ensured/created.")
	}
}
