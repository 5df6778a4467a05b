// internal/httpserver/routes_images.go
//
// HTTP routes for the SKU image packer.
// Exposes three endpoints under /images:
//   - POST /images/batch                → upload a sheet (multipart field "file"), build the ZIP
//   - GET  /images/batch/{id}/images.zip → download a finished ZIP
//   - GET  /images/batches              → recent batch history
//
// The upload replies with a JSON report (per-row failures included) and a
// download link; ?download=1 skips the report and streams the ZIP directly.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/aswathmantle-create/game/internal/archive"
	"github.com/aswathmantle-create/game/internal/batch"
	"github.com/aswathmantle-create/game/internal/results"
	"github.com/aswathmantle-create/game/internal/sheet"
	"github.com/aswathmantle-create/game/internal/store"
)

// mountImages registers all /images routes.
func (s *Server) mountImages(r chi.Router) {
	r.Route("/images", func(r chi.Router) {
		r.With(chimw.Timeout(s.cfg.BatchTimeout)).Post("/batch", s.handleBatch)
		r.With(chimw.Timeout(handlerTimeout)).Get("/batch/{id}/"+archive.Filename, s.handleDownload)
		r.With(chimw.Timeout(handlerTimeout)).Get("/batches", s.handleBatches)
	})
}

// batchRes is returned by POST /images/batch.
type batchRes struct {
	*batch.Report
	Download string `json:"download"`
}

// handleBatch reads the uploaded sheet and runs the batch.
//   - Unreadable upload or missing sku/url columns → 400 before any download.
//   - Batch deadline passed → 504 from the Timeout middleware; other
//     cancellation → 503.
//   - Per-row failures are part of the 200 report, never an error status.
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	file, hdr, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		writeError(w, http.StatusBadRequest, "missing upload field 'file'")
		return
	}
	defer file.Close()

	rows, err := sheet.Read(file, hdr.Filename)
	if err != nil {
		log.Warn().Err(err).Str("file", hdr.Filename).Msg("rejecting upload")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rep, err := s.batch.Run(r.Context(), rows)
	if err != nil {
		log.Error().Err(err).Str("file", hdr.Filename).Msg("batch aborted")
		// The Timeout middleware answers 504 once the batch deadline passes.
		if !errors.Is(err, context.DeadlineExceeded) {
			writeError(w, http.StatusServiceUnavailable, "batch aborted")
		}
		return
	}

	s.archives.Put(store.Archive{ID: rep.ID, Data: rep.Archive})
	if s.results != nil {
		run := results.BatchRun{
			ID:         rep.ID,
			Filename:   hdr.Filename,
			Rows:       rep.Rows,
			Processed:  rep.Processed,
			Skipped:    rep.Skipped,
			Failed:     len(rep.Failed),
			DurationMs: rep.Duration.Milliseconds(),
		}
		if err := s.results.RecordBatch(r.Context(), run); err != nil {
			log.Warn().Err(err).Str("batch", rep.ID).Msg("record batch")
		}
	}

	if r.URL.Query().Get("download") == "1" {
		writeArchive(w, rep.Archive)
		return
	}
	writeJSON(w, http.StatusOK, batchRes{
		Report:   rep,
		Download: "/images/batch/" + rep.ID + "/" + archive.Filename,
	})
}

// handleDownload serves a cached archive.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	a, err := s.archives.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "archive expired or unknown")
		return
	}
	writeArchive(w, a.Data)
}

// handleBatches lists recent batches, newest first.
func (s *Server) handleBatches(w http.ResponseWriter, r *http.Request) {
	out := []results.BatchRun{}
	if s.results != nil {
		runs, err := s.results.RecentBatches(r.Context(), 20)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
		out = append(out, runs...)
	}
	writeJSON(w, http.StatusOK, out)
}

func writeArchive(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", archive.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+archive.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
