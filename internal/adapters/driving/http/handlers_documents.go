package http

import (
	"net/http"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Ingestion endpoints

// handleIngest godoc
// @Summary      Ingest a document
// @Description  Chunks, embeds and stores a document atomically. Supply either raw text or pre-split chunks. Re-ingesting an existing document ID replaces its chunks.
// @Tags         Documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      domain.IngestRequest  true  "Document and content"
// @Success      201      {object}  domain.IngestResult
// @Failure      400      {object}  ErrorResponse  "Invalid request"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      500      {object}  ErrorResponse  "Embedding provider or storage failed; nothing was stored"
// @Router       /ingest [post]
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req domain.IngestRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	result, err := s.ingestService.Ingest(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusCreated, result)
}

// handleGetDocument godoc
// @Summary      Get document
// @Description  Get a document by ID with all its chunks. Embeddings are omitted unless include=embeddings is given.
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string  true   "Document ID"
// @Param        include  query     string  false  "Set to embeddings to include chunk vectors"
// @Success      200      {object}  domain.DocumentWithChunks
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      404      {object}  ErrorResponse  "Document not found"
// @Failure      500      {object}  ErrorResponse  "Internal server error"
// @Router       /documents/{id} [get]
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	doc, err := s.ingestService.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	if !strings.EqualFold(r.URL.Query().Get("include"), "embeddings") {
		chunks := make([]*domain.Chunk, len(doc.Chunks))
		for i, c := range doc.Chunks {
			stripped := *c
			stripped.Embedding = nil
			chunks[i] = &stripped
		}
		doc = &domain.DocumentWithChunks{Document: doc.Document, Chunks: chunks}
	}

	s.writeJSON(w, r, http.StatusOK, doc)
}

// handleDeleteDocument godoc
// @Summary      Delete document
// @Description  Delete a document and all of its chunks
// @Tags         Documents
// @Security     BearerAuth
// @Param        id   path  string  true  "Document ID"
// @Success      204  "Document deleted"
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      404  {object}  ErrorResponse  "Document not found"
// @Failure      500  {object}  ErrorResponse  "Internal server error"
// @Router       /documents/{id} [delete]
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.ingestService.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search endpoints

// handleSearch godoc
// @Summary      Similarity search
// @Description  Ranks chunks by cosine distance to the query text or a supplied embedding. Filters on fund, strategy, document type and upload date are combined with AND. The limit is clamped to 1..50.
// @Tags         Search
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      domain.SearchRequest  true  "Search query"
// @Success      200      {object}  domain.SearchResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request, missing query or wrong embedding width"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      500      {object}  ErrorResponse  "Embedding provider or search failed"
// @Router       /search [post]
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req domain.SearchRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	result, err := s.searchService.Search(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, result)
}
