package http

import (
	"bytes"
	"net/http"
	"time"

	"github.com/couchcryptid/covid-snapshot-etl/internal/domain"
	"github.com/couchcryptid/covid-snapshot-etl/internal/export"
)

type snapshotResponse struct {
	SnapshotID  string           `json:"snapshot_id"`
	SourceURL   string           `json:"source_url"`
	FetchedAt   time.Time        `json:"fetched_at"`
	ExtractedAt time.Time        `json:"extracted_at"`
	Fields      []string         `json:"fields"`
	Rows        *domain.Snapshot `json:"rows"`
}

type nationalResponse struct {
	SnapshotID string     `json:"snapshot_id"`
	FetchedAt  time.Time  `json:"fetched_at"`
	Totals     domain.Row `json:"totals"`
	Increases  domain.Row `json:"increases"`
}

type regionsResponse struct {
	SnapshotID string   `json:"snapshot_id"`
	Regions    []string `json:"regions"`
}

// latest writes a 503 and returns false when no snapshot is available yet.
func (s *Server) latest(w http.ResponseWriter) (domain.Extraction, bool) {
	ext, ok := s.snapshots.Latest()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "no snapshot available yet",
		})
		return domain.Extraction{}, false
	}
	return ext, true
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	ext, ok := s.latest(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snapshotResponse{
		SnapshotID:  ext.ID(),
		SourceURL:   ext.SourceURL,
		FetchedAt:   ext.FetchedAt,
		ExtractedAt: ext.ExtractedAt,
		Fields:      domain.FieldNames(),
		Rows:        ext.Snapshot,
	})
}

func (s *Server) handleSnapshotCSV(w http.ResponseWriter, _ *http.Request) {
	ext, ok := s.latest(w)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, ext.Snapshot); err != nil {
		s.logger.Error("csv export failed", "snapshot_id", ext.ID(), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "csv export failed"})
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(ext.FetchedAt)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleNational(w http.ResponseWriter, _ *http.Request) {
	ext, ok := s.latest(w)
	if !ok {
		return
	}
	totals, increases := ext.Snapshot.National()
	writeJSON(w, http.StatusOK, nationalResponse{
		SnapshotID: ext.ID(),
		FetchedAt:  ext.FetchedAt,
		Totals:     totals,
		Increases:  increases,
	})
}

func (s *Server) handleRegions(w http.ResponseWriter, _ *http.Request) {
	ext, ok := s.latest(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, regionsResponse{
		SnapshotID: ext.ID(),
		Regions:    ext.Snapshot.RegionKeys(),
	})
}

func (s *Server) handleRegion(w http.ResponseWriter, r *http.Request) {
	ext, ok := s.latest(w)
	if !ok {
		return
	}

	name := r.PathValue("name")
	row, found := ext.Snapshot.Lookup(name)
	if !found || row.Kind != domain.RowRegion {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown region: " + name})
		return
	}
	writeJSON(w, http.StatusOK, row)
}
