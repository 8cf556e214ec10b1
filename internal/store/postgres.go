package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/rentfolio/billscan/internal/db"
	"github.com/rentfolio/billscan/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// the hot path: matching reads every pattern on each uploaded bill.
var preparedStatements = map[string]string{
	"insert_pattern": `INSERT INTO patterns (id, name, bill_type, supplier, field_patterns, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
	"update_pattern": `UPDATE patterns SET name = $1, bill_type = $2, supplier = $3, field_patterns = $4, updated_at = $5 WHERE id = $6`,
	"get_pattern":    `SELECT id, name, bill_type, supplier, field_patterns, created_at, updated_at FROM patterns WHERE id = $1`,
	"delete_pattern": `DELETE FROM patterns WHERE id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS patterns (
	id             TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name           TEXT NOT NULL,
	bill_type      TEXT NOT NULL DEFAULT 'other',
	supplier       TEXT NOT NULL DEFAULT '',
	field_patterns JSONB NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_patterns_bill_type ON patterns(bill_type);
CREATE INDEX IF NOT EXISTS idx_patterns_supplier ON patterns(supplier);
CREATE INDEX IF NOT EXISTS idx_patterns_created_at ON patterns(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SavePattern(ctx context.Context, in model.PatternInput) (*model.ExtractionPattern, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	now := time.Now().UTC()

	fieldsJSON, err := json.Marshal(in.FieldPatterns)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal field patterns")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO patterns (id, name, bill_type, supplier, field_patterns, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, in.Name, string(billTypeOrDefault(in.BillType)), in.Supplier, string(fieldsJSON), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert pattern")
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

func (s *PostgresStore) GetPattern(ctx context.Context, id string) (*model.ExtractionPattern, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, bill_type, supplier, field_patterns, created_at, updated_at FROM patterns WHERE id = $1`,
		id,
	)
	return scanPatternPG(row, id)
}

func (s *PostgresStore) UpdatePattern(ctx context.Context, id string, in model.PatternInput) (*model.ExtractionPattern, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	fieldsJSON, err := json.Marshal(in.FieldPatterns)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal field patterns")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE patterns SET name = $1, bill_type = $2, supplier = $3, field_patterns = $4, updated_at = $5 WHERE id = $6`,
		in.Name, string(billTypeOrDefault(in.BillType)), in.Supplier, string(fieldsJSON), now, id,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: update pattern %s", id)
	}
	if tag.RowsAffected() == 0 {
		return nil, eris.Wrapf(ErrPatternNotFound, "id %s", id)
	}

	return s.GetPattern(ctx, id)
}

func (s *PostgresStore) ListPatterns(ctx context.Context, filter PatternFilter) ([]model.ExtractionPattern, error) {
	query := `SELECT id, name, bill_type, supplier, field_patterns, created_at, updated_at FROM patterns WHERE 1=1`
	var args []any

	if filter.BillType != "" {
		args = append(args, string(filter.BillType))
		query += ` AND bill_type = $1`
	}
	if filter.Supplier != "" {
		args = append(args, filter.Supplier)
		query += ` AND supplier = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at ASC`

	// Postgres allows OFFSET without LIMIT, so ListAll just omits the clause.
	if filter.Limit >= 0 {
		limit := filter.Limit
		if limit == 0 {
			limit = 100
		}
		args = append(args, limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list patterns")
	}
	defer rows.Close()

	var patterns []model.ExtractionPattern
	for rows.Next() {
		p, err := scanPatternPG(rows, "")
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, *p)
	}
	return patterns, eris.Wrap(rows.Err(), "postgres: list patterns iterate")
}

func (s *PostgresStore) DeletePattern(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM patterns WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete pattern %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrPatternNotFound, "id %s", id)
	}
	return nil
}

func scanPatternPG(row scannable, id string) (*model.ExtractionPattern, error) {
	var p model.ExtractionPattern
	var billType, fieldsJSON string

	err := row.Scan(&p.ID, &p.Name, &billType, &p.Supplier, &fieldsJSON, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrPatternNotFound, "id %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan pattern")
	}

	p.BillType = model.BillType(billType)
	if err := json.Unmarshal([]byte(fieldsJSON), &p.FieldPatterns); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal field patterns")
	}
	return &p, nil
}
