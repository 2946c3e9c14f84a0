package worker

import (
	"context"
	"log/slog"
	"time"
)

// Exporter writes the current listings to a spreadsheet.
type Exporter interface {
	Export(ctx context.Context) error
}

// ExportWorker periodically exports listings.
type ExportWorker struct {
	exporter Exporter
	interval time.Duration
}

// NewExportWorker creates a new ExportWorker.
func NewExportWorker(exporter Exporter, interval time.Duration) *ExportWorker {
	return &ExportWorker{
		exporter: exporter,
		interval: interval,
	}
}

// Run starts the export worker loop. It blocks until the context is cancelled.
func (w *ExportWorker) Run(ctx context.Context) {
	slog.Info("ExportWorker: starting", "interval", w.interval)

	w.export(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("ExportWorker: shutting down")
			return
		case <-ticker.C:
			w.export(ctx)
		}
	}
}

func (w *ExportWorker) export(ctx context.Context) {
	start := time.Now()
	if err := w.exporter.Export(ctx); err != nil {
		slog.Error("ExportWorker: export failed", "error", err)
		return
	}
	slog.Info("ExportWorker: export completed", "duration", time.Since(start))
}
