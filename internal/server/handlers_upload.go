package server

import (
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/totalreturn/internal/models"
	"github.com/bobmcallan/totalreturn/internal/services/ingest"
)

// maxUploadBytes bounds a single CSV upload.
const maxUploadBytes = 20 << 20 // 20MB

// routeUpload dispatches /api/upload/{kind} where kind is "activity" or
// "holdings". POST stores a new batch; DELETE clears every batch of the
// kind.
func (s *Server) routeUpload(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseBatchKind(PathParam(r, "/api/upload/", ""))
	if !ok {
		WriteError(w, http.StatusNotFound, "Unknown upload kind; use activity or holdings")
		return
	}

	switch r.Method {
	case http.MethodPost:
		s.handleUpload(w, r, kind)
	case http.MethodDelete:
		s.handleUploadDelete(w, r, kind)
	default:
		RequireMethod(w, r, http.MethodPost, http.MethodDelete)
	}
}

func parseBatchKind(raw string) (models.BatchKind, bool) {
	switch raw {
	case "activity":
		return models.BatchKindActivity, true
	case "holdings", "positions":
		return models.BatchKindHoldings, true
	default:
		return "", false
	}
}

// handleUpload accepts a CSV as a multipart "file" field or as the raw
// request body, parses it and stores the batch.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request, kind models.BatchKind) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	var reader io.Reader = r.Body
	fileName := r.URL.Query().Get("filename")

	if mf, header, err := r.FormFile("file"); err == nil {
		defer mf.Close()
		reader = mf
		if fileName == "" {
			fileName = header.Filename
		}
	}
	if fileName == "" {
		fileName = string(kind) + ".csv"
	}

	records, err := ingest.ParseCSV(reader)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Failed to parse CSV: "+err.Error())
		return
	}

	batch := &models.RecordBatch{
		ID:         uuid.New().String(),
		Kind:       kind,
		FileName:   fileName,
		UploadedAt: time.Now().UTC(),
		Records:    records,
	}
	if err := s.app.Storage.RecordStorage().SaveBatch(r.Context(), batch); err != nil {
		s.logger.Error().Err(err).Msg("Failed to save record batch")
		WriteError(w, http.StatusInternalServerError, "Failed to store upload")
		return
	}

	s.logger.Info().
		Str("kind", string(kind)).
		Str("filename", fileName).
		Int("records", len(records)).
		Msg("Upload stored")

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ok":       true,
		"id":       batch.ID,
		"kind":     kind,
		"filename": fileName,
		"records":  len(records),
	})
}

func (s *Server) handleUploadDelete(w http.ResponseWriter, r *http.Request, kind models.BatchKind) {
	deleted, err := s.app.Storage.RecordStorage().DeleteBatches(r.Context(), kind)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to delete record batches")
		WriteError(w, http.StatusInternalServerError, "Failed to delete uploads")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ok":      true,
		"kind":    kind,
		"deleted": deleted,
	})
}

// batchSummary is the list view of a stored upload; rows are omitted.
type batchSummary struct {
	ID         string           `json:"id"`
	Kind       models.BatchKind `json:"kind"`
	FileName   string           `json:"file_name"`
	UploadedAt time.Time        `json:"uploaded_at"`
	Records    int              `json:"records"`
}

func (s *Server) handleUploadList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	summaries := []batchSummary{}
	for _, kind := range []models.BatchKind{models.BatchKindActivity, models.BatchKindHoldings} {
		batches, err := s.app.Storage.RecordStorage().ListBatches(r.Context(), kind)
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to list record batches")
			WriteError(w, http.StatusInternalServerError, "Failed to list uploads")
			return
		}
		for _, b := range batches {
			summaries = append(summaries, batchSummary{
				ID:         b.ID,
				Kind:       b.Kind,
				FileName:   b.FileName,
				UploadedAt: b.UploadedAt,
				Records:    len(b.Records),
			})
		}
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"uploads": summaries})
}
