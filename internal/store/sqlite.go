package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/rentfolio/billscan/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS patterns (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	bill_type      TEXT NOT NULL DEFAULT 'other',
	supplier       TEXT NOT NULL DEFAULT '',
	field_patterns TEXT NOT NULL,
	created_at     DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_patterns_bill_type ON patterns(bill_type);
CREATE INDEX IF NOT EXISTS idx_patterns_supplier ON patterns(supplier);
CREATE INDEX IF NOT EXISTS idx_patterns_created_at ON patterns(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SavePattern(ctx context.Context, in model.PatternInput) (*model.ExtractionPattern, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	now := time.Now().UTC()

	fieldsJSON, err := json.Marshal(in.FieldPatterns)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal field patterns")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO patterns (id, name, bill_type, supplier, field_patterns, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, in.Name, string(billTypeOrDefault(in.BillType)), in.Supplier, string(fieldsJSON), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert pattern")
	}

	return &model.ExtractionPattern{
		ID:            id,
		Name:          in.Name,
		BillType:      billTypeOrDefault(in.BillType),
		Supplier:      in.Supplier,
		FieldPatterns: in.FieldPatterns,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (s *SQLiteStore) GetPattern(ctx context.Context, id string) (*model.ExtractionPattern, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, bill_type, supplier, field_patterns, created_at, updated_at FROM patterns WHERE id = ?`,
		id,
	)
	return scanPattern(row, id)
}

func (s *SQLiteStore) UpdatePattern(ctx context.Context, id string, in model.PatternInput) (*model.ExtractionPattern, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	fieldsJSON, err := json.Marshal(in.FieldPatterns)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal field patterns")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE patterns SET name = ?, bill_type = ?, supplier = ?, field_patterns = ?, updated_at = ? WHERE id = ?`,
		in.Name, string(billTypeOrDefault(in.BillType)), in.Supplier, string(fieldsJSON), now, id,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: update pattern %s", id)
	}
	if err := checkRowsAffected(res, id); err != nil {
		return nil, err
	}

	return s.GetPattern(ctx, id)
}

func (s *SQLiteStore) ListPatterns(ctx context.Context, filter PatternFilter) ([]model.ExtractionPattern, error) {
	query := `SELECT id, name, bill_type, supplier, field_patterns, created_at, updated_at FROM patterns WHERE 1=1`
	var args []any

	if filter.BillType != "" {
		query += ` AND bill_type = ?`
		args = append(args, string(filter.BillType))
	}
	if filter.Supplier != "" {
		query += ` AND supplier = ?`
		args = append(args, filter.Supplier)
	}
	query += ` ORDER BY created_at ASC`

	// SQLite treats LIMIT -1 as unlimited, and OFFSET needs a LIMIT clause.
	limit := filter.Limit
	if limit == 0 {
		limit = 100
	} else if limit < 0 {
		limit = -1
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list patterns")
	}
	defer rows.Close()

	var patterns []model.ExtractionPattern
	for rows.Next() {
		p, err := scanPattern(rows, "")
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, *p)
	}
	return patterns, eris.Wrap(rows.Err(), "sqlite: list patterns iterate")
}

func (s *SQLiteStore) DeletePattern(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM patterns WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete pattern %s", id)
	}
	return checkRowsAffected(res, id)
}

// helpers

func billTypeOrDefault(b model.BillType) model.BillType {
	if b == "" {
		return model.BillOther
	}
	return b
}

func checkRowsAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrPatternNotFound, "id %s", id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanPattern(row scannable, id string) (*model.ExtractionPattern, error) {
	var p model.ExtractionPattern
	var billType, fieldsJSON string

	err := row.Scan(&p.ID, &p.Name, &billType, &p.Supplier, &fieldsJSON, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(ErrPatternNotFound, "id %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan pattern")
	}

	p.BillType = model.BillType(billType)
	if err := json.Unmarshal([]byte(fieldsJSON), &p.FieldPatterns); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal field patterns")
	}
	return &p, nil
}
