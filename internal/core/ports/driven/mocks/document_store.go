package mocks

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

var _ driven.DocumentStore = (*MockDocumentStore)(nil)

// MockDocumentStore is an in-memory DocumentStore with transactional writes.
// WithinTx stages every write on a copy and publishes it only on success.
type MockDocumentStore struct {
	mu        sync.RWMutex
	txMu      sync.Mutex
	documents map[string]*domain.Document
	chunks    map[string][]*domain.Chunk // documentID -> chunks ordered by index

	upsertChunkErr error
	failChunkIndex int
	commits        int
	rollbacks      int
}

// NewMockDocumentStore creates a new MockDocumentStore
func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{
		documents:      make(map[string]*domain.Document),
		chunks:         make(map[string][]*domain.Chunk),
		failChunkIndex: -1,
	}
}

func (m *MockDocumentStore) WithinTx(ctx context.Context, fn func(tx driven.IngestTx) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.RLock()
	tx := &mockIngestTx{
		store:     m,
		documents: make(map[string]*domain.Document, len(m.documents)),
		chunks:    make(map[string][]*domain.Chunk, len(m.chunks)),
	}
	for id, doc := range m.documents {
		tx.documents[id] = doc
	}
	for id, cs := range m.chunks {
		tx.chunks[id] = slices.Clone(cs)
	}
	m.mu.RUnlock()

	if err := fn(tx); err != nil {
		m.mu.Lock()
		m.rollbacks++
		m.mu.Unlock()
		return err
	}
	if err := ctx.Err(); err != nil {
		m.mu.Lock()
		m.rollbacks++
		m.mu.Unlock()
		return fmt.Errorf("%w: %v", domain.ErrTransaction, err)
	}

	m.mu.Lock()
	m.documents = tx.documents
	m.chunks = tx.chunks
	m.commits++
	m.mu.Unlock()
	return nil
}

func (m *MockDocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

func (m *MockDocumentStore) GetChunks(ctx context.Context, documentID string) ([]*domain.Chunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.chunks[documentID]), nil
}

func (m *MockDocumentStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.documents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.documents, id)
	delete(m.chunks, id)
	return nil
}

func (m *MockDocumentStore) SearchChunks(ctx context.Context, q *domain.SearchQuery) ([]*domain.SearchHit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var hits []*domain.SearchHit
	for docID, chunks := range m.chunks {
		doc := m.documents[docID]
		if doc == nil || !matches(doc, q) {
			continue
		}
		for _, c := range chunks {
			d := CosineDistance(q.Embedding, c.Embedding)
			if math.IsNaN(d) {
				continue
			}
			hits = append(hits, &domain.SearchHit{
				ChunkID:     c.ID,
				DocumentID:  c.DocumentID,
				FundID:      c.FundID,
				StrategyID:  c.StrategyID,
				ChunkIndex:  c.ChunkIndex,
				SlideNumber: c.SlideNumber,
				StartOffset: c.StartOffset,
				EndOffset:   c.EndOffset,
				Content:     c.Content,
				Title:       doc.Title,
				DocType:     doc.DocType,
				AsOfDate:    doc.AsOfDate,
				UploadedAt:  doc.UploadedAt,
				Distance:    d,
				Similarity:  1 - d,
			})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		if hits[i].ChunkIndex != hits[j].ChunkIndex {
			return hits[i].ChunkIndex < hits[j].ChunkIndex
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})
	if q.Limit > 0 && len(hits) > q.Limit {
		hits = hits[:q.Limit]
	}
	return hits, nil
}

func (m *MockDocumentStore) Ping(ctx context.Context) error {
	return nil
}

func matches(doc *domain.Document, q *domain.SearchQuery) bool {
	if q.FundID != nil && (doc.FundID == nil || *doc.FundID != *q.FundID) {
		return false
	}
	if q.StrategyID != nil && (doc.StrategyID == nil || *doc.StrategyID != *q.StrategyID) {
		return false
	}
	if len(q.DocTypes) > 0 && !slices.Contains(q.DocTypes, doc.DocType) {
		return false
	}
	if q.MinUploadedAt != nil && doc.UploadedAt.Before(*q.MinUploadedAt) {
		return false
	}
	return true
}

// CosineDistance mirrors the pgvector <=> operator
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 2
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return math.NaN()
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

// Helper methods for testing

// SetUpsertChunkError makes UpsertChunk fail with err for the chunk at index
func (m *MockDocumentStore) SetUpsertChunkError(index int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failChunkIndex = index
	m.upsertChunkErr = err
}

// ChunkCount returns the number of committed chunks across all documents
func (m *MockDocumentStore) ChunkCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, cs := range m.chunks {
		n += len(cs)
	}
	return n
}

// DocumentCount returns the number of committed documents
func (m *MockDocumentStore) DocumentCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.documents)
}

// Commits returns the number of committed transactions
func (m *MockDocumentStore) Commits() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.commits
}

// Rollbacks returns the number of rolled back transactions
func (m *MockDocumentStore) Rollbacks() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rollbacks
}

type mockIngestTx struct {
	store     *MockDocumentStore
	documents map[string]*domain.Document
	chunks    map[string][]*domain.Chunk
	locked    []string
}

func (t *mockIngestTx) LockDocument(ctx context.Context, documentID string) error {
	t.locked = append(t.locked, documentID)
	return nil
}

func (t *mockIngestTx) UpsertDocument(ctx context.Context, doc *domain.Document) error {
	d := *doc
	t.documents[doc.ID] = &d
	return nil
}

func (t *mockIngestTx) UpsertChunk(ctx context.Context, chunk *domain.Chunk) error {
	t.store.mu.RLock()
	failAt, failErr := t.store.failChunkIndex, t.store.upsertChunkErr
	t.store.mu.RUnlock()
	if failErr != nil && chunk.ChunkIndex == failAt {
		return failErr
	}
	if _, ok := t.documents[chunk.DocumentID]; !ok {
		return fmt.Errorf("%w: chunk references unknown document %s", domain.ErrTransaction, chunk.DocumentID)
	}

	c := *chunk
	cs := t.chunks[chunk.DocumentID]
	for i, existing := range cs {
		if existing.ChunkIndex == chunk.ChunkIndex {
			cs[i] = &c
			return nil
		}
	}
	cs = append(cs, &c)
	sort.Slice(cs, func(i, j int) bool { return cs[i].ChunkIndex < cs[j].ChunkIndex })
	t.chunks[chunk.DocumentID] = cs
	return nil
}

func (t *mockIngestTx) PruneChunks(ctx context.Context, documentID string, keep int) (int64, error) {
	cs := t.chunks[documentID]
	kept := cs[:0:0]
	var pruned int64
	for _, c := range cs {
		if c.ChunkIndex >= keep {
			pruned++
			continue
		}
		kept = append(kept, c)
	}
	t.chunks[documentID] = kept
	return pruned, nil
}
