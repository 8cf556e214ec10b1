package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/rentfolio/billscan/internal/extract"
	"github.com/rentfolio/billscan/internal/model"
	"github.com/rentfolio/billscan/internal/store"
)

const maxUploadBytes = 32 << 20 // 32 MiB

// errUploadTooLarge distinguishes an oversized PDF from a corrupt one so the
// handler can answer 413 instead of a misleading parse failure.
var errUploadTooLarge = errors.New("upload exceeds size limit")

// detailResponse is the body of every non-2xx response.
type detailResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, detailResponse{Detail: detail})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreatePattern(w http.ResponseWriter, r *http.Request) {
	var in model.PatternInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := in.Validate(); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := s.store.SavePattern(r.Context(), in)
	if err != nil {
		zap.L().Error("save pattern", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "failed to save pattern")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleListPatterns(w http.ResponseWriter, r *http.Request) {
	filter := store.PatternFilter{
		BillType: model.BillType(r.URL.Query().Get("bill_type")),
		Supplier: r.URL.Query().Get("supplier"),
	}
	if filter.BillType != "" && !filter.BillType.Valid() {
		writeDetail(w, http.StatusBadRequest, "unknown bill type: "+string(filter.BillType))
		return
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeDetail(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		filter.Limit = n
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeDetail(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}
		filter.Offset = n
	}

	patterns, err := s.store.ListPatterns(r.Context(), filter)
	if err != nil {
		zap.L().Error("list patterns", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "failed to list patterns")
		return
	}
	if patterns == nil {
		patterns = []model.ExtractionPattern{}
	}
	writeJSON(w, http.StatusOK, patterns)
}

func (s *Server) handleGetPattern(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := s.store.GetPattern(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrPatternNotFound) {
			writeDetail(w, http.StatusNotFound, "pattern not found: "+id)
			return
		}
		zap.L().Error("get pattern", zap.String("id", id), zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "failed to get pattern")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdatePattern(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in model.PatternInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := in.Validate(); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := s.store.UpdatePattern(r.Context(), id, in)
	if err != nil {
		if errors.Is(err, store.ErrPatternNotFound) {
			writeDetail(w, http.StatusNotFound, "pattern not found: "+id)
			return
		}
		zap.L().Error("update pattern", zap.String("id", id), zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "failed to update pattern")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeletePattern(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeletePattern(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrPatternNotFound) {
			writeDetail(w, http.StatusNotFound, "pattern not found: "+id)
			return
		}
		zap.L().Error("delete pattern", zap.String("id", id), zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "failed to delete pattern")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExtractText(w http.ResponseWriter, r *http.Request) {
	text, ok := s.documentText(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	text, ok := s.documentText(w, r)
	if !ok {
		return
	}

	// Ranking is only meaningful against every stored pattern.
	patterns, err := s.store.ListPatterns(r.Context(), store.PatternFilter{Limit: store.ListAll})
	if err != nil {
		zap.L().Error("list patterns for match", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "failed to list patterns")
		return
	}

	matches, err := extract.MatchAll(r.Context(), text, patterns)
	if err != nil {
		zap.L().Error("match patterns", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "failed to match patterns")
		return
	}

	filtered := make([]model.MatchResult, 0, len(matches))
	for _, m := range matches {
		if m.Confidence >= s.minConfidence {
			filtered = append(filtered, m)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": filtered})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := s.store.GetPattern(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrPatternNotFound) {
			writeDetail(w, http.StatusNotFound, "pattern not found: "+id)
			return
		}
		zap.L().Error("get pattern for extract", zap.String("id", id), zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "failed to get pattern")
		return
	}

	text, ok := s.documentText(w, r)
	if !ok {
		return
	}

	data := extract.Extract(text, *p)
	if data == nil {
		data = map[model.FieldName]string{}
	}
	writeJSON(w, http.StatusOK, model.ExtractionResult{
		PatternID:     p.ID,
		ExtractedData: data,
	})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text          string               `json:"text"`
		FieldPatterns []model.FieldPattern `json:"field_patterns"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeDetail(w, http.StatusBadRequest, "text is required")
		return
	}

	// Fields that extract nothing preview as empty strings, not errors.
	preview := make(map[model.FieldName]string, len(req.FieldPatterns))
	for _, fp := range req.FieldPatterns {
		value, _ := extract.ExtractField(req.Text, fp)
		preview[fp.FieldName] = value
	}
	writeJSON(w, http.StatusOK, map[string]any{"preview": preview})
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	if s.suggester == nil {
		writeDetail(w, http.StatusServiceUnavailable, "pattern suggestion is not configured")
		return
	}

	var req struct {
		Text     string         `json:"text"`
		Name     string         `json:"name"`
		BillType model.BillType `json:"bill_type"`
		Supplier string         `json:"supplier"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeDetail(w, http.StatusBadRequest, "text is required")
		return
	}
	if req.Name == "" {
		req.Name = "suggested pattern"
	}

	in, err := s.suggester.SuggestPattern(r.Context(), req.Text, req.Name, req.BillType, req.Supplier)
	if err != nil {
		zap.L().Error("suggest pattern", zap.Error(err))
		writeDetail(w, http.StatusBadGateway, "pattern suggestion failed")
		return
	}
	writeJSON(w, http.StatusOK, in)
}

// documentText resolves the document text of an upload request: a multipart
// PDF under "file", or a raw "text" form value. Writes the error response
// itself and returns ok=false on failure.
func (s *Server) documentText(w http.ResponseWriter, r *http.Request) (string, bool) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err == nil && mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeDetail(w, http.StatusBadRequest, "invalid multipart body")
			return "", false
		}
		if file, _, err := r.FormFile("file"); err == nil {
			defer file.Close() //nolint:errcheck
			text, err := s.extractUpload(r, file)
			if errors.Is(err, errUploadTooLarge) {
				writeDetail(w, http.StatusRequestEntityTooLarge, "PDF exceeds the 32 MiB upload limit")
				return "", false
			}
			if err != nil {
				zap.L().Error("extract uploaded PDF", zap.Error(err))
				writeDetail(w, http.StatusUnprocessableEntity, "could not extract text from PDF")
				return "", false
			}
			return text, true
		}
	}

	if text := r.FormValue("text"); text != "" {
		return text, true
	}
	writeDetail(w, http.StatusBadRequest, "provide a PDF under \"file\" or raw text under \"text\"")
	return "", false
}

// extractUpload spools the upload to a temp file and runs the configured
// OCR provider on it.
func (s *Server) extractUpload(r *http.Request, file io.Reader) (string, error) {
	tmp, err := os.CreateTemp("", "billscan-*.pdf")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	// Read one byte past the limit so truncation is detectable.
	n, err := io.Copy(tmp, io.LimitReader(file, maxUploadBytes+1))
	closeErr := tmp.Close()
	if err != nil {
		return "", err
	}
	if closeErr != nil {
		return "", closeErr
	}
	if n > maxUploadBytes {
		return "", errUploadTooLarge
	}

	return s.extractor.ExtractText(r.Context(), tmp.Name())
}
