// Package pgx implements store.ChunkStore on PostgreSQL with pgvector.
package pgx

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/prolong-bio/prolong/pkg/common"
	"github.com/prolong-bio/prolong/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	Begin(ctx context.Context) (pgxv5.Tx, error)
}

// ChunkStorage implements store.ChunkStore against the paper_chunks table.
// Similarity search runs on the pgvector cosine operator; entity filters are
// pushed into the query against the jsonb tag columns so filtering happens
// before the LIMIT, never after.
type ChunkStorage struct {
	conn pgxIConn
}

// NewChunkStorage creates a ChunkStorage using an existing database
// connection or pool.
func NewChunkStorage(conn pgxIConn) *ChunkStorage {
	return &ChunkStorage{conn: conn}
}

// Search returns the most similar chunks for the embedding, strictly limited
// to chunks matching the filters. Score is the cosine similarity in [0,1].
func (s *ChunkStorage) Search(
	ctx context.Context,
	embedding []float32,
	limit int,
	filters store.Filters,
) ([]common.Passage, error) {
	limit = store.ClampLimit(limit)

	var (
		conds []string
		args  []any
	)
	args = append(args, pgvector.NewVector(embedding))
	if filters.Protein != "" {
		args = append(args, strings.ToUpper(strings.TrimSpace(filters.Protein)))
		conds = append(conds, fmt.Sprintf("proteins_mentioned @> jsonb_build_array($%d::text)", len(args)))
	}
	if len(filters.Theories) > 0 {
		args = append(args, filters.Theories)
		conds = append(conds, fmt.Sprintf("aging_theories ?| $%d::text[]", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT id, pmcid, pmid, title, year, chunk_text,
		       proteins_mentioned, aging_theories,
		       1 - (embedding <=> $1) AS score
		FROM paper_chunks
		%s
		ORDER BY embedding <=> $1
		LIMIT $%d`, where, len(args))

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("chunk search: %w", err)
	}
	defer rows.Close()

	passages := make([]common.Passage, 0, limit)
	for rows.Next() {
		p, err := scanPassage(rows)
		if err != nil {
			return nil, err
		}
		passages = append(passages, p)
	}
	return passages, rows.Err()
}

func scanPassage(rows pgxv5.Rows) (common.Passage, error) {
	var (
		p            common.Passage
		pmid         *string
		year         *int
		proteinsJSON []byte
		theoriesJSON []byte
	)
	err := rows.Scan(
		&p.ID, &p.PMCID, &pmid, &p.Title, &year, &p.Text,
		&proteinsJSON, &theoriesJSON, &p.Score,
	)
	if err != nil {
		return common.Passage{}, fmt.Errorf("scan chunk row: %w", err)
	}
	if pmid != nil {
		p.PMID = *pmid
	}
	if year != nil {
		p.Year = *year
	}
	if len(proteinsJSON) > 0 {
		if err := json.Unmarshal(proteinsJSON, &p.Proteins); err != nil {
			return common.Passage{}, fmt.Errorf("parse proteins_mentioned: %w", err)
		}
	}
	if len(theoriesJSON) > 0 {
		if err := json.Unmarshal(theoriesJSON, &p.Theories); err != nil {
			return common.Passage{}, fmt.Errorf("parse aging_theories: %w", err)
		}
	}
	return p, nil
}

// Insert writes chunks in a single transaction so a failed batch leaves the
// index unchanged.
func (s *ChunkStorage) Insert(ctx context.Context, chunks []store.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, c := range chunks {
		proteinsJSON, err := json.Marshal(c.Proteins)
		if err != nil {
			return err
		}
		theoriesJSON, err := json.Marshal(c.Theories)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO paper_chunks
				(id, pmcid, pmid, title, year, chunk_text,
				 proteins_mentioned, aging_theories, embedding)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO NOTHING`,
			c.ID, c.PMCID, nullIfEmpty(c.PMID), c.Title, nullIfZero(c.Year), c.Text,
			proteinsJSON, theoriesJSON, pgvector.NewVector(c.Embedding),
		)
		if err != nil {
			return fmt.Errorf("insert chunk %s: %w", c.ID, err)
		}
	}
	return tx.Commit(ctx)
}

// Count returns the number of indexed chunks.
func (s *ChunkStorage) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.conn.QueryRow(ctx, "SELECT count(*) FROM paper_chunks").Scan(&count)
	return count, err
}

// CountForProtein returns the number of chunks tagged with the given protein.
func (s *ChunkStorage) CountForProtein(ctx context.Context, symbol string) (int64, error) {
	var count int64
	err := s.conn.QueryRow(ctx, `
		SELECT count(*) FROM paper_chunks
		WHERE proteins_mentioned @> jsonb_build_array($1::text)`,
		strings.ToUpper(strings.TrimSpace(symbol)),
	).Scan(&count)
	return count, err
}

// CountForTheory returns the number of chunks tagged with the given theory.
func (s *ChunkStorage) CountForTheory(ctx context.Context, theoryID string) (int64, error) {
	var count int64
	err := s.conn.QueryRow(ctx, `
		SELECT count(*) FROM paper_chunks
		WHERE aging_theories @> jsonb_build_array($1::text)`,
		theoryID,
	).Scan(&count)
	return count, err
}

// Stats summarizes the indexed corpus.
func (s *ChunkStorage) Stats(ctx context.Context) (store.Stats, error) {
	var (
		stats   store.Stats
		yearMin *int
		yearMax *int
	)
	err := s.conn.QueryRow(ctx, `
		SELECT count(*), count(DISTINCT pmcid), min(year), max(year)
		FROM paper_chunks`,
	).Scan(&stats.TotalChunks, &stats.TotalPapers, &yearMin, &yearMax)
	if err != nil {
		return store.Stats{}, err
	}
	if yearMin != nil {
		stats.YearMin = *yearMin
	}
	if yearMax != nil {
		stats.YearMax = *yearMax
	}
	return stats, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullIfZero(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}
