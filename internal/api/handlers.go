package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/docindexer/internal/chunk"
	"github.com/dgallion1/docindexer/internal/structure"
)

var errMissingInput = errors.New("markdown or structure is required")

type structureRequest struct {
	Markdown       string   `json:"markdown"`
	OmitProperties []string `json:"omit_properties,omitempty"`
}

type chunksRequest struct {
	Markdown  string          `json:"markdown,omitempty"`
	Structure json.RawMessage `json:"structure,omitempty"`

	MinChunkSize  *int     `json:"min_chunk_size,omitempty"`
	MaxChunkSize  *int     `json:"max_chunk_size,omitempty"`
	ChunkOverlap  *int     `json:"chunk_overlap,omitempty"`
	SizeTolerance *float64 `json:"size_tolerance,omitempty"`
}

func (s *Server) handleStructure(w http.ResponseWriter, r *http.Request) {
	var req structureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Markdown == "" {
		jsonError(w, "markdown is required", http.StatusBadRequest)
		return
	}

	doc, err := structure.NewOrganizer().Organize(req.Markdown)
	if err != nil {
		jsonError(w, "organize failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	tree, err := doc.Generic()
	if err != nil {
		jsonError(w, "encode tree: "+err.Error(), http.StatusInternalServerError)
		return
	}
	filtered := structure.FilterEmptyElements(tree)
	if len(req.OmitProperties) > 0 {
		filtered = structure.FilterProperties(filtered, req.OmitProperties)
	}

	writeJSON(w, http.StatusOK, map[string]any{"structure": filtered})
}

func (s *Server) handleChunks(w http.ResponseWriter, r *http.Request) {
	var req chunksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	doc, err := s.resolveDocument(req)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	cfg := chunk.Config{
		MinChunkSize:  s.cfg.MinChunkSize,
		MaxChunkSize:  s.cfg.MaxChunkSize,
		ChunkOverlap:  s.cfg.ChunkOverlap,
		SizeTolerance: s.cfg.SizeTolerance,
	}
	if req.MinChunkSize != nil {
		cfg.MinChunkSize = *req.MinChunkSize
	}
	if req.MaxChunkSize != nil {
		cfg.MaxChunkSize = *req.MaxChunkSize
	}
	if req.ChunkOverlap != nil {
		cfg.ChunkOverlap = *req.ChunkOverlap
	}
	if req.SizeTolerance != nil {
		cfg.SizeTolerance = *req.SizeTolerance
	}
	if cfg.MinChunkSize <= 0 || cfg.MaxChunkSize <= 0 || cfg.MinChunkSize > cfg.MaxChunkSize {
		jsonError(w, "invalid chunk size bounds", http.StatusBadRequest)
		return
	}

	plan, chunks := chunk.NewPlanner(cfg, s.log).ProcessDocument(doc)
	if chunks == nil {
		chunks = []chunk.Chunk{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"plan":   plan,
		"chunks": chunks,
	})
}

// resolveDocument takes either an already-organized tree or raw
// markdown, in that priority.
func (s *Server) resolveDocument(req chunksRequest) (*structure.Node, error) {
	if len(req.Structure) > 0 {
		doc, err := structure.Load(bytes.NewReader(req.Structure))
		if err != nil {
			return nil, err
		}
		return doc, nil
	}
	if req.Markdown == "" {
		return nil, errMissingInput
	}
	return structure.NewOrganizer().Organize(req.Markdown)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
