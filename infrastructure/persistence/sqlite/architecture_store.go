// Package sqlite stores architecture records in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"cloudmap-backend/domain/architecture"
)

//go:embed schema.sql
var schemaSQL string

// ArchitectureStore is a file-backed store. It uses one connection, so
// transactions serialize writers.
type ArchitectureStore struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// Open creates or opens the database at path and applies the schema.
// The database runs in WAL mode with a 5-second busy timeout.
func Open(path string, logger *zap.Logger) (*ArchitectureStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &ArchitectureStore{db: db, logger: logger, now: time.Now}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Close closes the database connection
func (s *ArchitectureStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks the connection
func (s *ArchitectureStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type encodedRecord struct {
	nodes, edges, metadata string
}

func encode(r architecture.Record) (encodedRecord, error) {
	nodes := r.Nodes
	if nodes == nil {
		nodes = []architecture.Node{}
	}
	edges := r.Edges
	if edges == nil {
		edges = []architecture.Edge{}
	}
	metadata := r.Metadata
	if metadata == nil {
		metadata = architecture.Metadata{}
	}

	n, err := json.Marshal(nodes)
	if err != nil {
		return encodedRecord{}, fmt.Errorf("encode nodes: %w", err)
	}
	e, err := json.Marshal(edges)
	if err != nil {
		return encodedRecord{}, fmt.Errorf("encode edges: %w", err)
	}
	m, err := json.Marshal(metadata)
	if err != nil {
		return encodedRecord{}, fmt.Errorf("encode metadata: %w", err)
	}
	return encodedRecord{nodes: string(n), edges: string(e), metadata: string(m)}, nil
}

func isPrimaryKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// Create inserts a new record
func (s *ArchitectureStore) Create(ctx context.Context, id string, record *architecture.Record) error {
	if record == nil || id == "" {
		return fmt.Errorf("invalid architecture record")
	}

	stored := record.Clone()
	stored.ID = id
	if stored.Version == 0 {
		stored.Version = 1
	}

	enc, err := encode(stored)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO architectures (id, nodes, edges, metadata, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, enc.nodes, enc.edges, enc.metadata, stored.Version,
		stored.CreatedAt.UTC().Format(time.RFC3339Nano),
		stored.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if isPrimaryKeyViolation(err) {
			return fmt.Errorf("%w: %s", architecture.ErrAlreadyExists, id)
		}
		return fmt.Errorf("insert architecture: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner, id string) (*architecture.Record, error) {
	var (
		nodes, edges, metadata string
		createdAt, updatedAt   string
		r                      = &architecture.Record{ID: id}
	)

	err := row.Scan(&nodes, &edges, &metadata, &r.Version, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", architecture.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query architecture: %w", err)
	}

	if err := json.Unmarshal([]byte(nodes), &r.Nodes); err != nil {
		return nil, fmt.Errorf("decode nodes: %w", err)
	}
	if err := json.Unmarshal([]byte(edges), &r.Edges); err != nil {
		return nil, fmt.Errorf("decode edges: %w", err)
	}
	if err := json.Unmarshal([]byte(metadata), &r.Metadata); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	if r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if r.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return r, nil
}

const selectRecord = `
	SELECT nodes, edges, metadata, version, created_at, updated_at
	FROM architectures WHERE id = ?`

// Get retrieves a record by id
func (s *ArchitectureStore) Get(ctx context.Context, id string) (*architecture.Record, error) {
	return scanRecord(s.db.QueryRowContext(ctx, selectRecord, id), id)
}

// Update applies mutate inside a transaction
func (s *ArchitectureStore) Update(ctx context.Context, id string, mutate architecture.Mutator) (*architecture.Record, error) {
	return s.update(ctx, id, -1, mutate)
}

// UpdateIfVersion applies mutate only if the stored version equals expected
func (s *ArchitectureStore) UpdateIfVersion(ctx context.Context, id string, expected int, mutate architecture.Mutator) (*architecture.Record, error) {
	return s.update(ctx, id, expected, mutate)
}

func (s *ArchitectureStore) update(ctx context.Context, id string, expected int, mutate architecture.Mutator) (*architecture.Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := scanRecord(tx.QueryRowContext(ctx, selectRecord, id), id)
	if err != nil {
		return nil, err
	}
	if expected >= 0 && current.Version != expected {
		return nil, fmt.Errorf("%w: %s at version %d, expected %d",
			architecture.ErrVersionConflict, id, current.Version, expected)
	}

	next := mutate(current.Clone())
	next.ID = current.ID
	next.CreatedAt = current.CreatedAt
	next.Version = current.Version + 1
	next.UpdatedAt = s.now().UTC()

	enc, err := encode(next)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE architectures
		SET nodes = ?, edges = ?, metadata = ?, version = ?, updated_at = ?
		WHERE id = ? AND version = ?`,
		enc.nodes, enc.edges, enc.metadata, next.Version,
		next.UpdatedAt.Format(time.RFC3339Nano),
		id, current.Version,
	)
	if err != nil {
		return nil, fmt.Errorf("update architecture: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Debug("Architecture updated",
		zap.String("architectureID", id),
		zap.Int("version", next.Version),
	)
	return &next, nil
}
