// Package contract provides interfaces and shared utilities for the depthaudit CLI's internal architecture.
package contract

import (
	"context"

	"github.com/huangsam/depthaudit/schema"
)

// AnnotationSource yields the annotator submissions (HITs).
// This allows the core pipeline to be tested without dump files on disk.
type AnnotationSource interface {
	// LoadHits returns every submission in its recorded order.
	LoadHits(ctx context.Context) ([]*schema.HitRecord, error)
}

// GroundTruthSource yields the ground-truth pose dataset.
type GroundTruthSource interface {
	// LoadTruths returns the truth records with their action catalogue.
	LoadTruths(ctx context.Context) (*schema.TruthSet, error)
}

// RotationProvider yields the camera rotation matrices used to de-tilt poses.
type RotationProvider interface {
	// LoadRotations returns matrices keyed by camera and subject id.
	LoadRotations(ctx context.Context) (*schema.RotationTable, error)
}

// ResultSink consumes finished reports.
type ResultSink interface {
	// Write renders or stores one report.
	Write(ctx context.Context, report *schema.Report) error
}

// DataSources bundles the three inputs of a run.
type DataSources struct {
	Hits      AnnotationSource
	Truths    GroundTruthSource
	Rotations RotationProvider
}
