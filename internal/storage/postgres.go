package storage

import "database/sql"

// PostgresRepository implements the menu, customer and order repositories
// against a single Postgres database.
type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}
