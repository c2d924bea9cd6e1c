package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/wonny/screener/internal/output"
	"github.com/wonny/screener/pkg/logger"
)

// ResultsHandler serves written screening artefacts
type ResultsHandler struct {
	outputDir string
	logger    *logger.Logger
}

// NewResultsHandler creates a new results handler
func NewResultsHandler(outputDir string, log *logger.Logger) *ResultsHandler {
	return &ResultsHandler{
		outputDir: outputDir,
		logger:    log,
	}
}

// GetLatest returns the newest top-N JSON
// GET /api/results/latest
func (h *ResultsHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	report, path, err := output.LatestTopJSON(h.outputDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			respondError(w, http.StatusNotFound, "no screening results yet")
			return
		}
		h.logger.WithError(err).Error("Failed to load latest results")
		respondError(w, http.StatusInternalServerError, "failed to load results")
		return
	}

	w.Header().Set("X-Result-File", filepath.Base(path))
	respondJSON(w, http.StatusOK, report)
}
