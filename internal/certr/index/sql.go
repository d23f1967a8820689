package index

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// Supported index backends. The original deployment sits on Postgres;
	// MySQL is kept for parity with local tooling.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"github.com/google/uuid"
)

// SQL implements Store on database/sql with a postgres or mysql backend.
type SQL struct {
	db      *sql.DB
	dialect string
}

// OpenSQL opens an index store for the given driver ("postgres" or "mysql")
// and DSN. The connection is validated lazily on first use.
func OpenSQL(driver, dsn string) (*SQL, error) {
	switch driver {
	case "postgres", "mysql":
	default:
		return nil, fmt.Errorf("unsupported index driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open index db: %w", err)
	}
	return &SQL{db: db, dialect: driver}, nil
}

func (s *SQL) Close() error { return s.db.Close() }

// Migrate creates the certificates table if it does not exist.
func (s *SQL) Migrate(ctx context.Context) error {
	var ddl string
	if s.dialect == "postgres" {
		ddl = `CREATE TABLE IF NOT EXISTS certificates (
			id TEXT PRIMARY KEY,
			token_id BIGINT NOT NULL UNIQUE,
			recipient_address TEXT NOT NULL,
			recipient_name TEXT NOT NULL,
			program TEXT NOT NULL,
			issue_date TEXT NOT NULL,
			certificate_id TEXT NOT NULL UNIQUE,
			metadata_uri TEXT NOT NULL,
			metadata_hash TEXT NOT NULL,
			revoked BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`
	} else {
		ddl = `CREATE TABLE IF NOT EXISTS certificates (
			id VARCHAR(36) PRIMARY KEY,
			token_id BIGINT NOT NULL UNIQUE,
			recipient_address VARCHAR(42) NOT NULL,
			recipient_name TEXT NOT NULL,
			program TEXT NOT NULL,
			issue_date VARCHAR(10) NOT NULL,
			certificate_id VARCHAR(64) NOT NULL UNIQUE,
			metadata_uri TEXT NOT NULL,
			metadata_hash VARCHAR(66) NOT NULL,
			revoked BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP(6) NOT NULL,
			updated_at TIMESTAMP(6) NOT NULL
		)`
	}
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return &WriteError{Op: "migrate", Err: err}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for the postgres dialect.
func (s *SQL) rebind(query string) string {
	if s.dialect != "postgres" {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&sb, "$%d", n)
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

const recordColumns = `id, token_id, recipient_address, recipient_name, program,
	issue_date, certificate_id, metadata_uri, metadata_hash, revoked, created_at, updated_at`

func (s *SQL) Insert(ctx context.Context, rec Record) error {
	now := time.Now().UTC()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = now
	}
	q := s.rebind(`INSERT INTO certificates (` + recordColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, q,
		rec.ID, rec.TokenID, strings.ToLower(rec.RecipientAddress), rec.RecipientName,
		rec.Program, rec.IssueDate, rec.CertificateID, rec.MetadataURI,
		rec.MetadataHash, rec.Revoked, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return &WriteError{Op: "insert", Err: err}
	}
	return nil
}

func (s *SQL) GetByTokenID(ctx context.Context, tokenID int64) (*Record, error) {
	q := s.rebind(`SELECT ` + recordColumns + ` FROM certificates WHERE token_id = ?`)
	return s.queryOne(ctx, q, tokenID)
}

func (s *SQL) GetByCertificateID(ctx context.Context, certID string) (*Record, error) {
	q := s.rebind(`SELECT ` + recordColumns + ` FROM certificates WHERE certificate_id = ?`)
	return s.queryOne(ctx, q, certID)
}

func (s *SQL) LatestByAddress(ctx context.Context, address string) (*Record, error) {
	q := s.rebind(`SELECT ` + recordColumns + ` FROM certificates
		WHERE recipient_address = ? ORDER BY created_at DESC LIMIT 1`)
	return s.queryOne(ctx, q, strings.ToLower(address))
}

func (s *SQL) ListByAddress(ctx context.Context, address string) ([]Record, error) {
	q := s.rebind(`SELECT ` + recordColumns + ` FROM certificates
		WHERE recipient_address = ? ORDER BY created_at DESC`)
	return s.queryMany(ctx, q, strings.ToLower(address))
}

func (s *SQL) List(ctx context.Context) ([]Record, error) {
	return s.queryMany(ctx, `SELECT `+recordColumns+` FROM certificates ORDER BY created_at DESC`)
}

func (s *SQL) SetRevoked(ctx context.Context, tokenID int64, revoked bool) error {
	q := s.rebind(`UPDATE certificates SET revoked = ?, updated_at = ? WHERE token_id = ?`)
	res, err := s.db.ExecContext(ctx, q, revoked, time.Now().UTC(), tokenID)
	if err != nil {
		return &WriteError{Op: "set_revoked", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &WriteError{Op: "set_revoked", Err: err}
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQL) queryOne(ctx context.Context, query string, args ...any) (*Record, error) {
	row := s.db.QueryRowContext(ctx, query, args...)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	return rec, nil
}

func (s *SQL) queryMany(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan index row: %w", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate index rows: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.TokenID, &rec.RecipientAddress, &rec.RecipientName,
		&rec.Program, &rec.IssueDate, &rec.CertificateID, &rec.MetadataURI,
		&rec.MetadataHash, &rec.Revoked, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
