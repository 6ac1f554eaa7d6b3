package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sandevgo/membot/internal/core"
	"github.com/sandevgo/membot/pkg/log"
)

// MemoriesRepo implements core.MemoryStore on sqlite + sqlite-vec.
// Every query is scoped by author id; the store never returns another
// author's records.
type MemoriesRepo struct {
	db *sql.DB
}

func NewMemoriesRepo(db *sql.DB) *MemoriesRepo {
	return &MemoriesRepo{db: db}
}

func (r *MemoriesRepo) QuerySemantic(ctx context.Context, authorID string, embedding []float32, limit int) ([]core.MemoryRecord, error) {
	vecBlob, err := serializeVector(embedding)
	if err != nil {
		return nil, err
	}

	// KNN over the vector table, then filter to the author. The k bound
	// is widened so author filtering still leaves enough neighbors.
	query := `
		SELECT m.id, m.author_id, m.content, m.created_at
		FROM memories_vec v
		JOIN memories m ON m.id = v.rowid
		WHERE v.embedding MATCH ? AND k = ? AND m.author_id = ?
		ORDER BY v.distance
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, vecBlob, limit*8, authorID, limit)
	if err != nil {
		return nil, fmt.Errorf("semantic search failed: %w", err)
	}
	defer rows.Close()

	return scanMemories(rows)
}

func (r *MemoriesRepo) QueryTemporal(ctx context.Context, authorID string, from, to time.Time, limit int) ([]core.MemoryRecord, error) {
	query := `
		SELECT id, author_id, content, created_at
		FROM memories
		WHERE author_id = ? AND created_at >= ? AND created_at <= ?
		ORDER BY created_at DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, authorID, from.UTC(), to.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("temporal search failed: %w", err)
	}
	defer rows.Close()

	return scanMemories(rows)
}

func (r *MemoriesRepo) QueryRecent(ctx context.Context, authorID string, limit int) ([]core.MemoryRecord, error) {
	query := `
		SELECT id, author_id, content, created_at
		FROM memories
		WHERE author_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, authorID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent lookup failed: %w", err)
	}
	defer rows.Close()

	return scanMemories(rows)
}

func (r *MemoriesRepo) Insert(ctx context.Context, authorID, content string, embedding []float32, createdAt time.Time) (core.MemoryRecord, error) {
	vecBlob, err := serializeVector(embedding)
	if err != nil {
		return core.MemoryRecord{}, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.MemoryRecord{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO memories (author_id, content, created_at) VALUES (?, ?, ?)`,
		authorID, content, createdAt.UTC(),
	)
	if err != nil {
		return core.MemoryRecord{}, fmt.Errorf("failed to insert memory: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.MemoryRecord{}, err
	}

	// Tie the vector to the memory row via rowid.
	_, err = tx.ExecContext(ctx,
		`INSERT INTO memories_vec (rowid, embedding) VALUES (?, ?)`,
		id, vecBlob,
	)
	if err != nil {
		return core.MemoryRecord{}, fmt.Errorf("failed to insert memory vector: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.MemoryRecord{}, err
	}

	log.FromCtx(ctx).Debug().Int64("id", id).Str("author", authorID).Msg("memory stored")

	return core.MemoryRecord{
		ID:        id,
		AuthorID:  authorID,
		Content:   content,
		Embedding: embedding,
		CreatedAt: createdAt,
	}, nil
}

func scanMemories(rows *sql.Rows) ([]core.MemoryRecord, error) {
	var records []core.MemoryRecord
	for rows.Next() {
		var rec core.MemoryRecord
		if err := rows.Scan(&rec.ID, &rec.AuthorID, &rec.Content, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan memory: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
