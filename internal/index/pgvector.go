package index

import (
	"context"
	"fmt"

	"github.com/clearhaven/lore/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// Embedder turns text into vectors. The OpenAI-compatible embedding client
// satisfies this.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// PgVector is a Postgres+pgvector backed semantic index over one chunks
// table. Embedding happens inside Upsert/Query and is opaque to callers.
type PgVector struct {
	pool     *pgxpool.Pool
	embedder Embedder
}

func NewPgVector(pool *pgxpool.Pool, embedder Embedder) *PgVector {
	return &PgVector{pool: pool, embedder: embedder}
}

const recordColumns = `id, content, title, tags, source, item_id, chunk_index, total_chunks, raw_content_path`

// Upsert embeds and writes a batch of records. Callers are expected to keep
// batches small enough for the embedding API; batches are not transactional
// with each other.
func (x *PgVector) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	texts := make([]string, len(records))
	for i, r := range records {
		if err := r.Metadata.Validate(); err != nil {
			return err
		}
		texts[i] = r.Content
	}

	vectors, err := x.embedder.Embed(ctx, texts)
	if err != nil {
		return domain.WrapUpstream("embedding", err)
	}

	for i, r := range records {
		_, err := x.pool.Exec(ctx, `
			INSERT INTO chunks (id, content, title, tags, source, item_id, chunk_index, total_chunks, raw_content_path, embedding)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (id) DO UPDATE SET
				content = EXCLUDED.content,
				title = EXCLUDED.title,
				tags = EXCLUDED.tags,
				source = EXCLUDED.source,
				chunk_index = EXCLUDED.chunk_index,
				total_chunks = EXCLUDED.total_chunks,
				raw_content_path = EXCLUDED.raw_content_path,
				embedding = EXCLUDED.embedding`,
			r.ID,
			r.Content,
			r.Metadata.Title,
			domain.JoinTags(r.Metadata.Tags),
			r.Metadata.Source,
			r.Metadata.ItemID,
			r.Metadata.ChunkIndex,
			r.Metadata.TotalChunks,
			r.Metadata.RawContentPath,
			pgvector.NewVector(vectors[i]),
		)
		if err != nil {
			return domain.WrapUpstream("index", err)
		}
	}
	return nil
}

// Query embeds the query text and returns up to n records ordered by cosine
// distance. An empty index yields an empty slice, not an error.
func (x *PgVector) Query(ctx context.Context, query string, n int, filter Filter) ([]Record, error) {
	count, err := x.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 || n <= 0 {
		return []Record{}, nil
	}
	if n > count {
		n = count
	}

	vectors, err := x.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, domain.WrapUpstream("embedding", err)
	}

	sql := `SELECT ` + recordColumns + `, embedding <=> $1 AS distance FROM chunks`
	args := []any{pgvector.NewVector(vectors[0])}
	if filter.Tag != "" {
		sql += ` WHERE ',' || tags || ',' LIKE '%,' || $2 || ',%'`
		args = append(args, filter.Tag)
	}
	sql += fmt.Sprintf(` ORDER BY distance LIMIT %d`, n)

	rows, err := x.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, domain.WrapUpstream("index", err)
	}
	defer rows.Close()

	return scanRecords(rows, true)
}

// Get returns records matching the filter in chunk order, capped at limit
// (0 means no cap).
func (x *PgVector) Get(ctx context.Context, filter Filter, limit int) ([]Record, error) {
	sql := `SELECT ` + recordColumns + ` FROM chunks`
	var args []any
	switch {
	case filter.ItemID != "":
		sql += ` WHERE item_id = $1`
		args = append(args, filter.ItemID)
	case filter.Tag != "":
		sql += ` WHERE ',' || tags || ',' LIKE '%,' || $1 || ',%'`
		args = append(args, filter.Tag)
	}
	sql += ` ORDER BY item_id, chunk_index`
	if limit > 0 {
		sql += fmt.Sprintf(` LIMIT %d`, limit)
	}

	rows, err := x.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, domain.WrapUpstream("index", err)
	}
	defer rows.Close()

	return scanRecords(rows, false)
}

// DeleteByItem removes every chunk carrying the item id and reports how many
// were removed.
func (x *PgVector) DeleteByItem(ctx context.Context, itemID string) (int, error) {
	tag, err := x.pool.Exec(ctx, `DELETE FROM chunks WHERE item_id = $1`, itemID)
	if err != nil {
		return 0, domain.WrapUpstream("index", err)
	}
	return int(tag.RowsAffected()), nil
}

// UpdateMetadata patches the metadata snapshot on every chunk of an item
// without touching its vectors.
func (x *PgVector) UpdateMetadata(ctx context.Context, itemID, title, tags, source string) (int, error) {
	tag, err := x.pool.Exec(ctx, `
		UPDATE chunks SET title = $2, tags = $3, source = $4 WHERE item_id = $1`,
		itemID, title, tags, source)
	if err != nil {
		return 0, domain.WrapUpstream("index", err)
	}
	return int(tag.RowsAffected()), nil
}

// Count returns the total number of indexed chunks.
func (x *PgVector) Count(ctx context.Context) (int, error) {
	var count int
	if err := x.pool.QueryRow(ctx, `SELECT count(*) FROM chunks`).Scan(&count); err != nil {
		return 0, domain.WrapUpstream("index", err)
	}
	return count, nil
}

func scanRecords(rows pgx.Rows, withDistance bool) ([]Record, error) {
	records := []Record{}
	for rows.Next() {
		var r Record
		var tags string
		dest := []any{
			&r.ID, &r.Content,
			&r.Metadata.Title, &tags, &r.Metadata.Source,
			&r.Metadata.ItemID, &r.Metadata.ChunkIndex, &r.Metadata.TotalChunks,
			&r.Metadata.RawContentPath,
		}
		if withDistance {
			dest = append(dest, &r.Distance)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, domain.WrapUpstream("index", err)
		}
		r.Metadata.Tags = domain.SplitTags(tags)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapUpstream("index", err)
	}
	return records, nil
}
