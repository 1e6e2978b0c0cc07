package outwriter

import (
	"io"

	"github.com/huangsam/depthaudit/schema"
)

// jsonReport adds rank and label to scored rows. The outer fields shadow the
// plain ones of the embedded report.
type jsonReport struct {
	*schema.Report
	Workers []schema.EnrichedWorkerScore `json:"workers,omitempty"`
	Images  []schema.EnrichedImageScore  `json:"images,omitempty"`
}

// WriteJSONReport writes the whole report, histograms included, as indented JSON.
func WriteJSONReport(w io.Writer, report *schema.Report) error {
	out := jsonReport{Report: report}
	for _, group := range splitByThreshold(report.Workers) {
		out.Workers = append(out.Workers, schema.EnrichWorkers(group, schema.AllProvenance)...)
	}
	if len(report.Images) > 0 {
		out.Images = schema.EnrichImages(report.Images)
	}
	return writeJSON(w, out)
}
