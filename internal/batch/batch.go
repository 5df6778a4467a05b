// internal/batch/batch.go
//
// Batch driver: turns SKU rows into a ZIP of normalized product images.
//
// Rows are handled strictly one after another. Each valid row is fetched,
// decoded, normalized and encoded; a failure at any of those steps is
// recorded as a RowError and the loop moves on. Only context cancellation
// (client went away, server shutting down) stops the batch early.

package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/aswathmantle-create/game/internal/archive"
	"github.com/aswathmantle-create/game/internal/canvas"
	"github.com/aswathmantle-create/game/internal/fetch"
	"github.com/aswathmantle-create/game/internal/metrics"
	"github.com/aswathmantle-create/game/internal/sheet"
)

// Kind classifies why a row failed.
type Kind string

const (
	KindFetch   Kind = "fetch"   // transport error or bad url
	KindTimeout Kind = "timeout" // download exceeded the timeout
	KindStatus  Kind = "status"  // non-2xx response
	KindDecode  Kind = "decode"  // bytes are not a decodable image
	KindEncode  Kind = "encode"  // jpeg/zip write failed
)

// RowError describes one failed row.
type RowError struct {
	Line   int    `json:"line"`
	SKU    string `json:"sku"`
	URL    string `json:"url"`
	Kind   Kind   `json:"kind"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

func (e *RowError) Error() string {
	return fmt.Sprintf("sku %s (line %d): %s: %s", e.SKU, e.Line, e.Kind, e.Reason)
}

func (e *RowError) Unwrap() error { return e.Err }

// Result is the outcome of a single row: Name is set on success, Err otherwise.
type Result struct {
	Row  sheet.Row
	Name string
	Err  *RowError
}

// Report summarises a finished batch.
type Report struct {
	ID        string        `json:"batchId"`
	Rows      int           `json:"rows"`
	Processed int           `json:"processed"`
	Skipped   int           `json:"skipped"`
	Failed    []*RowError   `json:"failed"`
	Entries   []string      `json:"entries"`
	Duration  time.Duration `json:"-"`

	// Archive holds the finished ZIP; it may contain no entries.
	Archive []byte `json:"-"`
}

// Processor runs batches. The zero value is not usable; see New.
type Processor struct {
	Fetcher    fetch.Fetcher
	CanvasSize int
	Quality    int
}

// New returns a Processor with the default canvas size and quality.
func New(f fetch.Fetcher) *Processor {
	return &Processor{Fetcher: f, CanvasSize: canvas.DefaultSize, Quality: canvas.DefaultQuality}
}

// Run processes rows in order and returns the report with the archive bytes.
// The returned error is non-nil only when ctx is done or the archive itself
// cannot be finalised.
func (p *Processor) Run(ctx context.Context, rows []sheet.Row) (*Report, error) {
	start := time.Now()
	rep := &Report{ID: uuid.NewString(), Rows: len(rows), Failed: []*RowError{}}
	zw := archive.NewWriter()
	logger := log.With().Str("batch", rep.ID).Logger()

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("batch %s cancelled: %w", rep.ID, err)
		}
		if !row.Valid() {
			rep.Skipped++
			metrics.RowsTotal.WithLabelValues(metrics.OutcomeSkipped).Inc()
			continue
		}

		res := p.processRow(ctx, zw, row)
		if res.Err != nil {
			// A cancelled context surfaces as a fetch failure; report it as cancellation.
			if ctx.Err() != nil {
				return nil, fmt.Errorf("batch %s cancelled: %w", rep.ID, ctx.Err())
			}
			logger.Warn().
				Str("sku", row.SKU).
				Str("url", row.URL).
				Str("kind", string(res.Err.Kind)).
				Int("line", row.Line).
				Msg(res.Err.Reason)
			rep.Failed = append(rep.Failed, res.Err)
			metrics.RowsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
			continue
		}
		rep.Processed++
		metrics.RowsTotal.WithLabelValues(metrics.OutcomeWritten).Inc()
	}

	data, err := zw.Close()
	if err != nil {
		return nil, err
	}
	rep.Archive = data
	rep.Entries = zw.Names()
	rep.Duration = time.Since(start)
	metrics.BatchesTotal.Inc()

	logger.Info().
		Int("rows", rep.Rows).
		Int("processed", rep.Processed).
		Int("skipped", rep.Skipped).
		Int("failed", len(rep.Failed)).
		Dur("took", rep.Duration).
		Msg("batch finished")
	return rep, nil
}

// processRow runs fetch → decode → normalize → encode → archive for one row.
func (p *Processor) processRow(ctx context.Context, zw *archive.Writer, row sheet.Row) Result {
	fail := func(kind Kind, err error) Result {
		return Result{Row: row, Err: &RowError{
			Line: row.Line, SKU: row.SKU, URL: row.URL,
			Kind: kind, Reason: err.Error(), Err: err,
		}}
	}

	data, err := p.Fetcher.Fetch(ctx, row.URL)
	if err != nil {
		return fail(fetchKind(err), err)
	}
	img, err := canvas.Decode(data)
	if err != nil {
		return fail(KindDecode, err)
	}
	out, err := canvas.EncodeJPEG(canvas.Normalize(img, p.CanvasSize), p.Quality)
	if err != nil {
		return fail(KindEncode, err)
	}
	name, err := zw.Add(row.SKU, out)
	if err != nil {
		return fail(KindEncode, err)
	}
	return Result{Row: row, Name: name}
}

func fetchKind(err error) Kind {
	var se *fetch.StatusError
	switch {
	case errors.As(err, &se):
		return KindStatus
	case errors.Is(err, fetch.ErrTimeout):
		return KindTimeout
	default:
		return KindFetch
	}
}
