// Package outwriter has output and writer logic.
package outwriter

import (
	"context"
	"io"

	"github.com/huangsam/depthaudit/internal/contract"
	"github.com/huangsam/depthaudit/schema"
)

// OutWriter renders reports as text tables, CSV or JSON.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct {
	cfg *contract.Config
}

var _ contract.ResultSink = &OutWriter{} // Compile-time check

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter(cfg *contract.Config) *OutWriter {
	return &OutWriter{cfg: cfg}
}

// Write implements the ResultSink interface, dispatching based on the output format configured.
func (ow *OutWriter) Write(ctx context.Context, report *schema.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch ow.cfg.Output {
	case schema.JSONOut:
		return emitReport(ow.cfg.OutputFile, "JSON", func(w io.Writer) error {
			return WriteJSONReport(w, report)
		})
	case schema.CSVOut:
		return emitReport(ow.cfg.OutputFile, "CSV", func(w io.Writer) error {
			return WriteCSVReport(w, report, ow.cfg)
		})
	default:
		// Default to human-readable table
		return emitReport(ow.cfg.OutputFile, "table", func(w io.Writer) error {
			return WriteTextReport(w, report, ow.cfg)
		})
	}
}

// MultiSink fans a report out to several sinks in order, stopping at the first error.
type MultiSink struct {
	sinks []contract.ResultSink
}

var _ contract.ResultSink = &MultiSink{} // Compile-time check

// NewMultiSink creates a sink that writes to every given sink.
func NewMultiSink(sinks ...contract.ResultSink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Write implements the ResultSink interface.
func (m *MultiSink) Write(ctx context.Context, report *schema.Report) error {
	for _, s := range m.sinks {
		if err := s.Write(ctx, report); err != nil {
			return err
		}
	}
	return nil
}
