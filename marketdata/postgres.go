package marketdata

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresStore reads quotes from a Postgres table with columns
// (asof date, quote_id text, value double precision).
type PostgresStore struct {
	db    *sql.DB
	table string
}

// OpenPostgres connects to Postgres with the given connection string and
// serves quotes from the named table.
func OpenPostgres(connStr, table string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("marketdata: open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("marketdata: ping postgres: %w", err)
	}
	return &PostgresStore{db: db, table: table}, nil
}

func (s *PostgresStore) Quote(asOf time.Time, id string) (float64, error) {
	query := fmt.Sprintf("SELECT value FROM %s WHERE asof = $1 AND quote_id = $2", s.table)
	var value float64
	err := s.db.QueryRow(query, asOf.Format("2006-01-02"), id).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, &MissingQuoteError{AsOf: asOf, ID: id}
	}
	if err != nil {
		return 0, fmt.Errorf("marketdata: query quote %s: %w", id, err)
	}
	return value, nil
}

// Close releases the database connection pool.
func (s *PostgresStore) Close() error { return s.db.Close() }
