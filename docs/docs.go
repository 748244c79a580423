// Package docs holds the OpenAPI description of the Sercha RAG API.
// Regenerate with: swag init -g cmd/sercha-rag/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "Sercha OSS",
            "url": "https://github.com/custodia-labs/sercha-rag/issues"
        },
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/ingest": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Chunks, embeds and stores a document atomically. Supply either raw text or pre-split chunks. Re-ingesting an existing document ID replaces its chunks.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Documents"],
                "summary": "Ingest a document",
                "parameters": [
                    {"description": "Document and content", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.IngestRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.IngestResult"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Embedding provider or storage failed; nothing was stored", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/documents/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Get a document by ID with all its chunks. Embeddings are omitted unless include=embeddings is given.",
                "produces": ["application/json"],
                "tags": ["Documents"],
                "summary": "Get document",
                "parameters": [
                    {"type": "string", "description": "Document ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Set to embeddings to include chunk vectors", "name": "include", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.DocumentWithChunks"}},
                    "404": {"description": "Document not found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "Delete a document and all of its chunks",
                "tags": ["Documents"],
                "summary": "Delete document",
                "parameters": [
                    {"type": "string", "description": "Document ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "Document deleted"},
                    "404": {"description": "Document not found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/search": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Ranks chunks by cosine distance to the query text or a supplied embedding. The limit is clamped to 1..50.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Search"],
                "summary": "Similarity search",
                "parameters": [
                    {"description": "Search query", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.SearchRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.SearchResponse"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Embedding provider or search failed", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/funds/{fundId}/ask": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Query-string variant of the question-answering endpoint",
                "produces": ["application/json"],
                "tags": ["Questions"],
                "summary": "Ask a question about a fund",
                "parameters": [
                    {"type": "string", "description": "Fund ID", "name": "fundId", "in": "path", "required": true},
                    {"type": "string", "description": "Question", "name": "question", "in": "query", "required": true},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "description": "Benchmark codes", "name": "benchmark", "in": "query"},
                    {"type": "integer", "description": "Maximum chunks", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.AskResponse"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Provider failed or the answer did not cite its sources", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Retrieves the fund record, recent metrics, benchmarks and relevant document chunks, then returns an answer that cites them.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Questions"],
                "summary": "Ask a question about a fund",
                "parameters": [
                    {"type": "string", "description": "Fund ID", "name": "fundId", "in": "path", "required": true},
                    {"description": "Question", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.askRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.AskResponse"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Provider failed or the answer did not cite its sources", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/funds/{fundId}/panel": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Generates performance, risk, liquidity and notable-changes cards citing the fund's context.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Questions"],
                "summary": "Fund summary panel",
                "parameters": [
                    {"type": "string", "description": "Fund ID", "name": "fundId", "in": "path", "required": true},
                    {"description": "Optional focus question and benchmarks", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/http.askRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.PanelResponse"}},
                    "500": {"description": "Provider failed or the cards did not cite their sources", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/funds/{fundId}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Context"],
                "summary": "Get fund",
                "parameters": [
                    {"type": "string", "description": "Fund ID", "name": "fundId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Fund"}},
                    "404": {"description": "Fund not found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/funds/{fundId}/metrics": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Context"],
                "summary": "Fund metrics",
                "parameters": [
                    {"type": "string", "description": "Fund ID", "name": "fundId", "in": "path", "required": true},
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"},
                    {"type": "string", "name": "order", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Availability-domain_FundMetric"}}}
            }
        },
        "/funds/{fundId}/cash-flows": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Context"],
                "summary": "Fund cash flows",
                "parameters": [
                    {"type": "string", "description": "Fund ID", "name": "fundId", "in": "path", "required": true},
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"},
                    {"type": "string", "name": "order", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Availability-domain_CashFlow"}}}
            }
        },
        "/funds/{fundId}/documents": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Context"],
                "summary": "Fund document catalog",
                "parameters": [
                    {"type": "string", "description": "Fund ID", "name": "fundId", "in": "path", "required": true},
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"},
                    {"type": "string", "name": "order", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Availability-domain_CatalogEntry"}}}
            }
        },
        "/benchmarks/{code}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Context"],
                "summary": "Benchmark series",
                "parameters": [
                    {"type": "string", "description": "Benchmark code", "name": "code", "in": "path", "required": true},
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"},
                    {"type": "string", "name": "order", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Availability-domain_BenchmarkSeries"}},
                    "404": {"description": "Benchmark not found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "http.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "invalid input: question is required"},
                "code": {"type": "string", "example": "validation_error"}
            }
        },
        "http.askRequest": {
            "type": "object",
            "properties": {
                "question": {"type": "string"},
                "benchmarkCodes": {"type": "array", "items": {"type": "string"}},
                "embedding": {"type": "array", "items": {"type": "number"}},
                "limit": {"type": "integer"}
            }
        },
        "domain.Document": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "fundId": {"type": "string"},
                "strategyId": {"type": "string"},
                "fileId": {"type": "string"},
                "title": {"type": "string"},
                "docType": {"type": "string"},
                "asOfDate": {"type": "string"},
                "uploadedAt": {"type": "string"},
                "sourceSystem": {"type": "string"},
                "pageCount": {"type": "integer"},
                "isRedacted": {"type": "boolean"}
            }
        },
        "domain.ChunkInput": {
            "type": "object",
            "properties": {
                "text": {"type": "string"},
                "slideNumber": {"type": "integer"},
                "startOffset": {"type": "integer"},
                "endOffset": {"type": "integer"}
            }
        },
        "domain.IngestRequest": {
            "type": "object",
            "properties": {
                "document": {"$ref": "#/definitions/domain.Document"},
                "text": {"type": "string"},
                "chunks": {"type": "array", "items": {"$ref": "#/definitions/domain.ChunkInput"}},
                "chunkSize": {"type": "integer"},
                "overlap": {"type": "integer"}
            }
        },
        "domain.IngestResult": {
            "type": "object",
            "properties": {
                "documentId": {"type": "string"},
                "chunksInserted": {"type": "integer"}
            }
        },
        "domain.Chunk": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "documentId": {"type": "string"},
                "chunkIndex": {"type": "integer"},
                "slideNumber": {"type": "integer"},
                "startOffset": {"type": "integer"},
                "endOffset": {"type": "integer"},
                "content": {"type": "string"},
                "embedding": {"type": "array", "items": {"type": "number"}}
            }
        },
        "domain.DocumentWithChunks": {
            "type": "object",
            "properties": {
                "document": {"$ref": "#/definitions/domain.Document"},
                "chunks": {"type": "array", "items": {"$ref": "#/definitions/domain.Chunk"}}
            }
        },
        "domain.SearchRequest": {
            "type": "object",
            "properties": {
                "query": {"type": "string"},
                "embedding": {"type": "array", "items": {"type": "number"}},
                "fundId": {"type": "string"},
                "strategyId": {"type": "string"},
                "docTypes": {"type": "array", "items": {"type": "string"}},
                "minUploadedAt": {"type": "string"},
                "limit": {"type": "integer"}
            }
        },
        "domain.SearchHit": {
            "type": "object",
            "properties": {
                "chunkId": {"type": "string"},
                "documentId": {"type": "string"},
                "chunkIndex": {"type": "integer"},
                "slideNumber": {"type": "integer"},
                "content": {"type": "string"},
                "title": {"type": "string"},
                "docType": {"type": "string"},
                "uploadedAt": {"type": "string"},
                "distance": {"type": "number"},
                "similarity": {"type": "number"}
            }
        },
        "domain.SearchResponse": {
            "type": "object",
            "properties": {
                "results": {"type": "array", "items": {"$ref": "#/definitions/domain.SearchHit"}},
                "limit": {"type": "integer"},
                "took": {"type": "integer", "example": 1500000}
            }
        },
        "domain.Source": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "example": "S1"},
                "kind": {"type": "string", "enum": ["chunk", "metric", "benchmark", "fund"]},
                "label": {"type": "string"},
                "documentId": {"type": "string"},
                "chunkId": {"type": "string"},
                "similarity": {"type": "number"}
            }
        },
        "domain.ContextStatus": {
            "type": "object",
            "properties": {
                "fundFound": {"type": "boolean"},
                "unavailable": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "domain.AskResponse": {
            "type": "object",
            "properties": {
                "answer": {"type": "string"},
                "sources": {"type": "array", "items": {"$ref": "#/definitions/domain.Source"}},
                "context": {"$ref": "#/definitions/domain.ContextStatus"}
            }
        },
        "domain.Card": {
            "type": "object",
            "properties": {
                "kind": {"type": "string", "enum": ["performance", "risk", "liquidity", "notable_changes", "summary"]},
                "title": {"type": "string"},
                "body": {"type": "string"},
                "citations": {"type": "array", "items": {"type": "string"}}
            }
        },
        "domain.Panel": {
            "type": "object",
            "properties": {
                "cards": {"type": "array", "items": {"$ref": "#/definitions/domain.Card"}},
                "sources": {"type": "array", "items": {"$ref": "#/definitions/domain.Source"}},
                "degraded": {"type": "boolean"},
                "noContext": {"type": "boolean"}
            }
        },
        "domain.PanelResponse": {
            "type": "object",
            "properties": {
                "panel": {"$ref": "#/definitions/domain.Panel"},
                "context": {"$ref": "#/definitions/domain.ContextStatus"}
            }
        },
        "domain.Fund": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "strategyId": {"type": "string"},
                "vintageYear": {"type": "integer"},
                "currency": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "domain.Availability-domain_FundMetric": {
            "type": "object",
            "properties": {
                "rows": {"type": "array", "items": {"type": "object"}},
                "available": {"type": "boolean"},
                "reason": {"type": "string"}
            }
        },
        "domain.Availability-domain_CashFlow": {
            "type": "object",
            "properties": {
                "rows": {"type": "array", "items": {"type": "object"}},
                "available": {"type": "boolean"},
                "reason": {"type": "string"}
            }
        },
        "domain.Availability-domain_CatalogEntry": {
            "type": "object",
            "properties": {
                "rows": {"type": "array", "items": {"type": "object"}},
                "available": {"type": "boolean"},
                "reason": {"type": "string"}
            }
        },
        "domain.Availability-domain_BenchmarkSeries": {
            "type": "object",
            "properties": {
                "rows": {"type": "array", "items": {"type": "object"}},
                "available": {"type": "boolean"},
                "reason": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "JWT Bearer token. Format: \"Bearer {token}\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Sercha RAG API",
	Description:      "Retrieval-augmented context pipeline for fund documents: ingestion, similarity search and grounded answers.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
