package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/custodia-labs/sercha-rag/docs"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// maxBodyBytes bounds request bodies; ingestion carries whole documents
const maxBodyBytes = 16 << 20

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid input: question is required"`
	Code  string `json:"code,omitempty" example:"validation_error"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// ReadyResponse reports dependency health
// @Description Readiness response with per-dependency status
type ReadyResponse struct {
	Status   string            `json:"status" example:"ready"`
	Services map[string]string `json:"services"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, StatusResponse{Status: "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Checks the database and, when configured, the embedding cache
// @Tags         Health
// @Produce      json
// @Success      200  {object}  ReadyResponse
// @Failure      503  {object}  ReadyResponse
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	resp := ReadyResponse{Status: "ready", Services: map[string]string{}}

	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			resp.Status = "not ready"
			resp.Services["postgres"] = "unhealthy"
		} else {
			resp.Services["postgres"] = "healthy"
		}
	}
	if s.cache != nil {
		// The cache is an optimisation; an outage degrades but does not block
		if err := s.cache.Ping(r.Context()); err != nil {
			resp.Services["redis"] = "unhealthy"
		} else {
			resp.Services["redis"] = "healthy"
		}
	}

	status := http.StatusOK
	if resp.Status != "ready" {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, r, status, resp)
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, VersionResponse{Version: s.version})
}

// handleOpenAPI serves the generated API description
func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(docs.SwaggerInfo.ReadDoc()))
}

// Helper functions

// internalErrorBody is sent when a response value cannot be encoded
const internalErrorBody = `{"error":"internal server error","code":"internal_error"}` + "\n"

// writeJSON encodes data before writing the status, so a value that cannot be
// encoded turns into a 500 instead of an empty body. The encode error is returned.
func writeJSON(w http.ResponseWriter, status int, data interface{}) error {
	body, err := json.Marshal(data)
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(internalErrorBody))
		return err
	}
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
	return nil
}

// writeJSON writes a response and logs values that fail to encode
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	if err := writeJSON(w, status, data); err != nil {
		s.logger.Error("failed to encode response", "path", r.URL.Path, "status", status, "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	// ErrorResponse holds only strings and always encodes
	_ = writeJSON(w, status, ErrorResponse{Error: message})
}

// writeServiceError maps a service error to its status code and API error code.
// Unclassified errors are logged and reported without detail.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.ErrorCode(err)
	status := statusForCode(code)

	message := err.Error()
	if code == domain.CodeInternal {
		message = "internal server error"
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "code", code, "error", err)
	}
	s.writeJSON(w, r, status, ErrorResponse{Error: message, Code: code})
}

func statusForCode(code string) int {
	switch code {
	case domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a bounded JSON body. An empty body is allowed when optional is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, optional bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
	case optional && errors.Is(err, io.EOF):
		return true
	default:
		writeError(w, http.StatusBadRequest, "invalid request body")
	}
	return false
}
