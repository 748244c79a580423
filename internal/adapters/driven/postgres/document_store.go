package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Verify interface compliance
var (
	_ driven.DocumentStore = (*DocumentStore)(nil)
	_ driven.IngestTx      = (*ingestTx)(nil)
)

// DocumentStore implements driven.DocumentStore using PostgreSQL and pgvector
type DocumentStore struct {
	db *DB
}

// NewDocumentStore creates a new DocumentStore
func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// WithinTx runs fn in a single transaction. Any error rolls back every write.
func (s *DocumentStore) WithinTx(ctx context.Context, fn func(tx driven.IngestTx) error) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		return fn(&ingestTx{tx: tx})
	})
}

// ingestTx is the write surface of an ingestion transaction
type ingestTx struct {
	tx *sql.Tx
}

// LockDocument takes a transaction-scoped advisory lock on the document
func (t *ingestTx) LockDocument(ctx context.Context, documentID string) error {
	if _, err := t.tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", hashLockName("document:"+documentID)); err != nil {
		return fmt.Errorf("lock document: %v: %w", err, domain.ErrTransaction)
	}
	return nil
}

// UpsertDocument creates or replaces the document row
func (t *ingestTx) UpsertDocument(ctx context.Context, doc *domain.Document) error {
	query := `
		INSERT INTO documents (id, fund_id, strategy_id, file_id, title, doc_type, as_of_date, uploaded_at, source_system, page_count, is_redacted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			fund_id = EXCLUDED.fund_id,
			strategy_id = EXCLUDED.strategy_id,
			file_id = EXCLUDED.file_id,
			title = EXCLUDED.title,
			doc_type = EXCLUDED.doc_type,
			as_of_date = EXCLUDED.as_of_date,
			uploaded_at = EXCLUDED.uploaded_at,
			source_system = EXCLUDED.source_system,
			page_count = EXCLUDED.page_count,
			is_redacted = EXCLUDED.is_redacted
	`

	_, err := t.tx.ExecContext(ctx, query,
		doc.ID,
		NullString(doc.FundID),
		NullString(doc.StrategyID),
		NullString(doc.FileID),
		doc.Title,
		doc.DocType,
		NullTime(doc.AsOfDate),
		doc.UploadedAt,
		doc.SourceSystem,
		NullInt(doc.PageCount),
		doc.IsRedacted,
	)
	if err != nil {
		return fmt.Errorf("upsert document %s: %v: %w", doc.ID, err, domain.ErrTransaction)
	}
	return nil
}

// UpsertChunk creates or replaces a chunk. A re-ingested chunk keeps its ID,
// so the conflict target is the ID and every field is overwritten.
func (t *ingestTx) UpsertChunk(ctx context.Context, chunk *domain.Chunk) error {
	query := `
		INSERT INTO document_chunks (id, document_id, fund_id, strategy_id, chunk_index, slide_number, start_offset, end_offset, content, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			document_id = EXCLUDED.document_id,
			fund_id = EXCLUDED.fund_id,
			strategy_id = EXCLUDED.strategy_id,
			chunk_index = EXCLUDED.chunk_index,
			slide_number = EXCLUDED.slide_number,
			start_offset = EXCLUDED.start_offset,
			end_offset = EXCLUDED.end_offset,
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding
	`

	_, err := t.tx.ExecContext(ctx, query,
		chunk.ID,
		chunk.DocumentID,
		NullString(chunk.FundID),
		NullString(chunk.StrategyID),
		chunk.ChunkIndex,
		NullInt(chunk.SlideNumber),
		chunk.StartOffset,
		chunk.EndOffset,
		chunk.Content,
		pgvector.NewVector(chunk.Embedding),
	)
	if err != nil {
		return fmt.Errorf("upsert chunk %d: %v: %w", chunk.ChunkIndex, err, domain.ErrTransaction)
	}
	return nil
}

// PruneChunks deletes chunks left over from a longer previous version
func (t *ingestTx) PruneChunks(ctx context.Context, documentID string, keep int) (int64, error) {
	result, err := t.tx.ExecContext(ctx,
		"DELETE FROM document_chunks WHERE document_id = $1 AND chunk_index >= $2",
		documentID, keep)
	if err != nil {
		return 0, fmt.Errorf("prune chunks: %v: %w", err, domain.ErrTransaction)
	}
	return result.RowsAffected()
}

// Get retrieves a document by ID
func (s *DocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	query := `
		SELECT id, fund_id, strategy_id, file_id, title, doc_type, as_of_date, uploaded_at, source_system, page_count, is_redacted
		FROM documents
		WHERE id = $1
	`

	var doc domain.Document
	var fundID, strategyID, fileID sql.NullString
	var asOf sql.NullTime
	var pageCount sql.NullInt64

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&doc.ID,
		&fundID,
		&strategyID,
		&fileID,
		&doc.Title,
		&doc.DocType,
		&asOf,
		&doc.UploadedAt,
		&doc.SourceSystem,
		&pageCount,
		&doc.IsRedacted,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}

	doc.FundID = StringPtr(fundID)
	doc.StrategyID = StringPtr(strategyID)
	doc.FileID = StringPtr(fileID)
	doc.AsOfDate = TimePtr(asOf)
	doc.PageCount = IntPtr(pageCount)
	return &doc, nil
}

// GetChunks retrieves all chunks of a document ordered by index
func (s *DocumentStore) GetChunks(ctx context.Context, documentID string) ([]*domain.Chunk, error) {
	query := `
		SELECT id, document_id, fund_id, strategy_id, chunk_index, slide_number, start_offset, end_offset, content, embedding
		FROM document_chunks
		WHERE document_id = $1
		ORDER BY chunk_index
	`

	rows, err := s.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("get chunks: %w", err)
	}
	defer rows.Close()

	var chunks []*domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		var fundID, strategyID sql.NullString
		var slide sql.NullInt64
		var vec pgvector.Vector

		if err := rows.Scan(
			&c.ID,
			&c.DocumentID,
			&fundID,
			&strategyID,
			&c.ChunkIndex,
			&slide,
			&c.StartOffset,
			&c.EndOffset,
			&c.Content,
			&vec,
		); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}

		c.FundID = StringPtr(fundID)
		c.StrategyID = StringPtr(strategyID)
		c.SlideNumber = IntPtr(slide)
		c.Embedding = vec.Slice()
		chunks = append(chunks, &c)
	}
	return chunks, rows.Err()
}

// Delete removes a document; its chunks go with it through ON DELETE CASCADE.
// The document lock keeps a concurrent ingestion from resurrecting it half-way.
func (s *DocumentStore) Delete(ctx context.Context, id string) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", hashLockName("document:"+id)); err != nil {
			return fmt.Errorf("lock document: %w", err)
		}

		result, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE id = $1", id)
		if err != nil {
			return fmt.Errorf("delete document: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

// SearchChunks ranks chunks by cosine distance to the query embedding.
// Equal distances are ordered by chunk index, then chunk ID, so results are deterministic.
func (s *DocumentStore) SearchChunks(ctx context.Context, q *domain.SearchQuery) ([]*domain.SearchHit, error) {
	query := `
		SELECT c.id, c.document_id, c.fund_id, c.strategy_id, c.chunk_index, c.slide_number,
		       c.start_offset, c.end_offset, c.content,
		       d.title, d.doc_type, d.as_of_date, d.uploaded_at,
		       c.embedding <=> $1 AS distance
		FROM document_chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE ($2::text IS NULL OR c.fund_id = $2::text)
		  AND ($3::text IS NULL OR c.strategy_id = $3::text)
		  AND ($4::text[] IS NULL OR cardinality($4::text[]) = 0 OR d.doc_type = ANY($4::text[]))
		  AND ($5::timestamptz IS NULL OR d.uploaded_at >= $5::timestamptz)
		ORDER BY distance ASC, c.chunk_index ASC, c.id ASC
		LIMIT $6
	`

	rows, err := s.db.QueryContext(ctx, query,
		pgvector.NewVector(q.Embedding),
		NullString(q.FundID),
		NullString(q.StrategyID),
		pq.Array(q.DocTypes),
		NullTime(q.MinUploadedAt),
		q.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}
	defer rows.Close()

	hits := make([]*domain.SearchHit, 0, q.Limit)
	for rows.Next() {
		var h domain.SearchHit
		var fundID, strategyID sql.NullString
		var slide sql.NullInt64
		var asOf sql.NullTime

		if err := rows.Scan(
			&h.ChunkID,
			&h.DocumentID,
			&fundID,
			&strategyID,
			&h.ChunkIndex,
			&slide,
			&h.StartOffset,
			&h.EndOffset,
			&h.Content,
			&h.Title,
			&h.DocType,
			&asOf,
			&h.UploadedAt,
			&h.Distance,
		); err != nil {
			return nil, fmt.Errorf("scan search hit: %w", err)
		}

		// zero-norm stored vectors compare as NaN and cannot be ranked
		if math.IsNaN(h.Distance) {
			continue
		}
		h.FundID = StringPtr(fundID)
		h.StrategyID = StringPtr(strategyID)
		h.SlideNumber = IntPtr(slide)
		h.AsOfDate = TimePtr(asOf)
		h.Similarity = 1 - h.Distance
		hits = append(hits, &h)
	}
	return hits, rows.Err()
}

// Ping checks if the database is reachable
func (s *DocumentStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
