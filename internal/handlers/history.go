package handlers

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"credit-decision-engine/internal/models"
	s3service "credit-decision-engine/internal/services/s3"
	"credit-decision-engine/internal/utils"
)

// exportLimit caps the rows pulled for CSV exports and archives.
const exportLimit = 10000

// HistoryResponse is one page of the decision log, newest first.
type HistoryResponse struct {
	Total   int64                   `json:"total"`
	Count   int                     `json:"count"`
	Records []models.DecisionRecord `json:"records"`
}

// ArchiveResponse reports a completed archive upload.
type ArchiveResponse struct {
	Records  int                           `json:"records"`
	Download *s3service.PresignedURLResult `json:"download"`
}

// ListHistory handles GET /api/history.
func (h *ApplicationHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "Limit must be a positive number")
			return
		}
		limit = parsed
	}

	records, err := h.history.List(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	total, err := h.history.Count(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if records == nil {
		records = []models.DecisionRecord{}
	}

	writeJSON(w, http.StatusOK, HistoryResponse{
		Total:   total,
		Count:   len(records),
		Records: records,
	})
}

// ExportHistory handles GET /api/history/export, streaming the decision
// log as a CSV attachment.
func (h *ApplicationHandler) ExportHistory(w http.ResponseWriter, r *http.Request) {
	records, err := h.history.List(r.Context(), exportLimit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	filename := exportFilename(time.Now().UTC())
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := utils.WriteHistoryCSV(w, records); err != nil {
		utils.GetLogger().Error("Failed to write history export", utils.Error(err))
	}
}

// ArchiveHistory handles POST /api/history/archive: uploads the decision
// log to S3 as CSV and returns a presigned download link.
func (h *ApplicationHandler) ArchiveHistory(w http.ResponseWriter, r *http.Request) {
	if h.archiver == nil {
		writeError(w, http.StatusServiceUnavailable, "Archiving is not configured")
		return
	}

	records, err := h.history.List(r.Context(), exportLimit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := utils.WriteHistoryCSV(&buf, records); err != nil {
		utils.GetLogger().Error("Failed to build history archive", utils.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to build archive")
		return
	}

	key := "exports/" + exportFilename(time.Now().UTC())
	if err := h.archiver.UploadArchive(r.Context(), key, buf.Bytes(), "text/csv"); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to upload archive")
		return
	}

	download, err := h.archiver.GeneratePresignedDownloadURL(r.Context(), key, 15)
	if err != nil {
		utils.GetLogger().Error("Failed to presign archive download", utils.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to generate download link")
		return
	}

	writeJSON(w, http.StatusOK, ArchiveResponse{
		Records:  len(records),
		Download: download,
	})
}

// exportFilename names an export after its creation instant.
func exportFilename(t time.Time) string {
	return "decision_history_" + t.Format("20060102_150405") + ".csv"
}
