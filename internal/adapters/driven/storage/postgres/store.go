// Package postgres provides a Postgres/pgvector-backed implementation of
// the vector index. Similarity search runs server-side through the
// pgvector cosine distance operator, so this backend scales past what the
// brute-force SQLite scan is comfortable with.
package postgres

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/torque-labs/wrench-cli/internal/core/domain"
	"github.com/torque-labs/wrench-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorIndex = (*Store)(nil)

// Default configuration values.
const (
	defaultCollection = "manuals"
	defaultDimensions = 384
)

// maxCosineDistance is the distance assigned when either vector has zero
// norm. pgvector reports NaN for those; pinning them to the ceiling keeps
// embedding-fallback chunks sorting behind every real match, the same as
// the other backends.
const maxCosineDistance = 2.0

// Store is a pgvector-backed vector index.
type Store struct {
	pool       *pgxpool.Pool
	collection string
	dimensions int
}

// NewStore connects to Postgres and ensures the chunk schema exists.
// The pgvector extension must be installable by the connecting role.
func NewStore(ctx context.Context, dsn, collection string, dimensions int) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres: connection string is required")
	}
	if collection == "" {
		collection = defaultCollection
	}
	if dimensions == 0 {
		dimensions = defaultDimensions
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	s := &Store{
		pool:       pool,
		collection: collection,
		dimensions: dimensions,
	}

	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}

	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Collection returns the collection this store reads and writes.
func (s *Store) Collection() string {
	return s.collection
}

// ensureSchema creates the extension, table, and indexes if missing.
// The vector column is sized at connect time; changing embedding models
// with a different dimension needs a reset and re-ingest.
func (s *Store) ensureSchema(ctx context.Context) error {
	stmts := []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS wrench_chunks (
			id TEXT NOT NULL,
			collection TEXT NOT NULL,
			source TEXT NOT NULL,
			page INT NOT NULL DEFAULT 1,
			char_start INT NOT NULL DEFAULT 0,
			content TEXT NOT NULL,
			embedding VECTOR(%d) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (collection, id)
		)`, s.dimensions),
		"CREATE INDEX IF NOT EXISTS idx_wrench_chunks_source ON wrench_chunks(collection, source)",
		"CREATE INDEX IF NOT EXISTS idx_wrench_chunks_embedding ON wrench_chunks USING ivfflat (embedding vector_cosine_ops)",
	}

	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("execute schema statement: %w", err)
		}
	}

	return nil
}

// Upsert atomically writes one batch of chunks, overwriting existing ids.
func (s *Store) Upsert(ctx context.Context, batch driven.Batch) error {
	if !batch.Aligned() {
		return fmt.Errorf("%w: batch slices are not aligned", domain.ErrInvalidInput)
	}
	if batch.Len() == 0 {
		return nil
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for i, id := range batch.IDs {
		md := batch.Metadatas[i]
		if _, err := tx.Exec(ctx, `
			INSERT INTO wrench_chunks (id, collection, source, page, char_start, content, embedding)
			VALUES ($1, $2, $3, $4, $5, $6, $7::vector)
			ON CONFLICT (collection, id) DO UPDATE SET
				source = EXCLUDED.source,
				page = EXCLUDED.page,
				char_start = EXCLUDED.char_start,
				content = EXCLUDED.content,
				embedding = EXCLUDED.embedding
		`, id, s.collection, md["source"], metadataInt(md, "page"), metadataInt(md, "char_start"),
			batch.Documents[i], pgvector.NewVector(batch.Vectors[i])); err != nil {
			return fmt.Errorf("insert chunk %s: %w", id, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Query returns the k nearest chunks by ascending cosine distance.
func (s *Store) Query(ctx context.Context, vector []float32, k int) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, source, page, content, (embedding <=> $1::vector) AS distance
		FROM wrench_chunks
		WHERE collection = $2
		ORDER BY embedding <=> $1::vector, id
		LIMIT $3
	`, pgvector.NewVector(vector), s.collection, k)
	if err != nil {
		return nil, fmt.Errorf("query similar chunks: %w", err)
	}
	defer rows.Close()

	results := make([]domain.RetrievedChunk, 0, k)
	for rows.Next() {
		var chunk domain.RetrievedChunk
		if err := rows.Scan(&chunk.ID, &chunk.Source, &chunk.Page, &chunk.Text, &chunk.Distance); err != nil {
			return nil, fmt.Errorf("scan similar chunk: %w", err)
		}
		if math.IsNaN(chunk.Distance) {
			chunk.Distance = maxCosineDistance
		}
		results = append(results, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return results, nil
}

// Count returns the number of stored chunks.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM wrench_chunks WHERE collection = $1", s.collection).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

// Sources returns the distinct source files with their chunk counts,
// sorted by name.
func (s *Store) Sources(ctx context.Context) ([]domain.SourceInfo, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT source, COUNT(*) FROM wrench_chunks
		WHERE collection = $1
		GROUP BY source
		ORDER BY source
	`, s.collection)
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	var sources []domain.SourceInfo //nolint:prealloc // size unknown from query
	for rows.Next() {
		var info domain.SourceInfo
		if err := rows.Scan(&info.Name, &info.Chunks); err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		sources = append(sources, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sources: %w", err)
	}
	return sources, nil
}

// Pages returns every stored chunk for non-vector scanning.
func (s *Store) Pages(ctx context.Context) ([]domain.Chunk, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, source, page, char_start, content
		FROM wrench_chunks WHERE collection = $1
	`, s.collection)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunk domain.Chunk
		if err := rows.Scan(&chunk.ID, &chunk.Source, &chunk.Page, &chunk.CharStart, &chunk.Text); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

// DeleteSource removes all chunks belonging to a source file.
func (s *Store) DeleteSource(ctx context.Context, source string) error {
	_, err := s.pool.Exec(ctx,
		"DELETE FROM wrench_chunks WHERE collection = $1 AND source = $2", s.collection, source)
	if err != nil {
		return fmt.Errorf("deleting source: %w", err)
	}
	return nil
}

// Reset drops every stored chunk in this collection.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.pool.Exec(ctx,
		"DELETE FROM wrench_chunks WHERE collection = $1", s.collection)
	if err != nil {
		return fmt.Errorf("resetting collection: %w", err)
	}
	return nil
}

// metadataInt reads an integer metadata value, zero when absent.
func metadataInt(metadata map[string]string, key string) int {
	n, err := strconv.Atoi(metadata[key])
	if err != nil {
		return 0
	}
	return n
}
