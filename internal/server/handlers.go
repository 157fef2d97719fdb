package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aleister1102/docdiff/internal/common/errorwrapper"
	"github.com/aleister1102/docdiff/internal/extractor"
	"github.com/aleister1102/docdiff/internal/session"
)

const maxUploadBytes = 32 << 20

type compareRequest struct {
	DocumentA string `json:"document_a"`
	DocumentB string `json:"document_b"`
	LabelA    string `json:"label_a,omitempty"`
	LabelB    string `json:"label_b,omitempty"`
}

type parseResponse struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

type errorResponse struct {
	Error    string            `json:"error"`
	Snapshot *session.Snapshot `json:"snapshot,omitempty"`
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}

	snap, err := s.manager.RunComparison(r.Context(), req.DocumentA, req.DocumentB, req.LabelA, req.LabelB)
	if err != nil {
		// A summarization failure still carries the diff and statistics,
		// so the snapshot rides along with the error payload.
		resp := errorResponse{Error: err.Error()}
		if snap.Result != nil {
			resp.Snapshot = &snap
		}
		writeJSON(w, statusForError(err), resp)
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing file field: " + err.Error()})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read upload: " + err.Error()})
		return
	}

	mediaType := extractor.MediaTypeForFilename(header.Filename)
	if mediaType == "" {
		mediaType = header.Header.Get("Content-Type")
	}

	text, err := s.extractor.Extract(data, mediaType)
	if err != nil {
		s.logger.Warn().Err(err).Str("filename", header.Filename).Msg("Document extraction failed")
		writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, parseResponse{Text: text, Label: header.Filename})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.manager.Snapshot())
}

func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.manager.NewSession())
}

func (s *Server) handleLoadExample(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.manager.LoadExample())
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.manager.History())
}

func (s *Server) handleLoadHistory(w http.ResponseWriter, r *http.Request) {
	snap, err := s.manager.LoadHistoryEntry(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.DeleteHistoryEntry(chi.URLParam(r, "id")); err != nil {
		writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.ClearHistory(); err != nil {
		writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// statusForError maps the error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, errorwrapper.ErrInputMissing):
		return http.StatusBadRequest
	case errors.Is(err, errorwrapper.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errorwrapper.ErrExtractionFailure):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errorwrapper.ErrSummarizationFailure):
		return http.StatusBadGateway
	case errors.Is(err, session.ErrSessionSuperseded):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
