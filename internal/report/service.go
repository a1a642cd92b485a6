// Package report implements the daily sales report pipeline:
// authorization, day-window aggregation, rendering and publication.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// NoDataMessage is the informational result for a day without sales.
const NoDataMessage = "No orders were found for the selected date."

// SaleSource is the record store. Both bounds are inclusive.
type SaleSource interface {
	SalesBetween(ctx context.Context, start, end time.Time) ([]SaleRecord, error)
}

// Renderer turns a summary into a complete document. It must not return
// before the document is finalized.
type Renderer interface {
	Render(ctx context.Context, s Summary) ([]byte, error)
}

// Request is one invocation's input.
type Request struct {
	Date string
}

// Result is either a no-data message or a link to the published report.
type Result struct {
	Message string
	URL     string
	Expiry  time.Time
}

// HasLink reports whether a report was published.
func (r Result) HasLink() bool {
	return r.URL != ""
}

// Config holds the pipeline settings.
type Config struct {
	PrivilegedRole string
	Location       *time.Location
	LinkExpiry     time.Time
}

// Service runs the pipeline. It keeps no state between invocations and is
// safe for concurrent use.
type Service struct {
	cfg       Config
	sales     SaleSource
	renderer  Renderer
	publisher *Publisher
	logger    *zap.Logger
}

func NewService(cfg Config, sales SaleSource, renderer Renderer, store ObjectStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cfg:       cfg,
		sales:     sales,
		renderer:  renderer,
		publisher: NewPublisher(store, cfg.LinkExpiry, logger),
		logger:    logger,
	}
}

// Generate runs one invocation for req on behalf of id.
func (s *Service) Generate(ctx context.Context, req Request, id Identity) (Result, error) {
	log := s.logger.With(zap.String("date", req.Date), zap.String("subject", id.Subject))

	res, err := s.run(ctx, log, req, id)
	if err != nil {
		var rerr *Error
		if errors.As(err, &rerr) && !rerr.Kind.Internal() {
			log.Warn("daily report rejected", zap.String("kind", string(rerr.Kind)), zap.String("stage", string(rerr.Stage)))
		} else {
			log.Error("daily report failed", zap.Error(err))
		}
		return Result{}, err
	}
	return res, nil
}

func (s *Service) run(ctx context.Context, log *zap.Logger, req Request, id Identity) (Result, error) {
	enter(log, StageAuthorizing)
	if err := Authorize(id, s.cfg.PrivilegedRole); err != nil {
		return Result{}, err
	}

	enter(log, StageQuerying)
	window, err := NewDayWindow(req.Date, s.cfg.Location)
	if err != nil {
		msg := fmt.Sprintf("Date must be formatted as YYYY-MM-DD, got %q.", req.Date)
		return Result{}, fail(KindInvalidArgument, StageQuerying, msg, err)
	}
	records, err := s.sales.SalesBetween(ctx, window.Start, window.End)
	if err != nil {
		return Result{}, fail(KindQueryFailure, StageQuerying, "sales query failed", err)
	}
	if len(records) == 0 {
		log.Info("no sales for report date")
		return Result{Message: NoDataMessage}, nil
	}

	enter(log, StageAggregating)
	summary := Fold(req.Date, records)

	enter(log, StageRendering)
	data, err := s.renderer.Render(ctx, summary)
	if err == nil && len(data) == 0 {
		err = errors.New("renderer produced an empty document")
	}
	if err != nil {
		return Result{}, fail(KindRenderFailure, StageRendering, "report rendering failed", err)
	}
	doc := NewDocument(req.Date, data)

	link, err := s.publisher.Publish(ctx, doc)
	if err != nil {
		return Result{}, err
	}

	enter(log, StageDone)
	log.Info("daily report published",
		zap.Int("sales", summary.TotalSales),
		zap.String("revenue", summary.TotalRevenue.String()),
		zap.String("path", doc.Path))

	return Result{URL: link.URL, Expiry: link.Expiry}, nil
}

func enter(log *zap.Logger, stage Stage) {
	log.Debug("report stage", zap.String("stage", string(stage)))
}
