package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// ProvenanceFilter selects which resolved comparisons are scored.
	ProvenanceFilter string

	// Verdict is the classification of a single comparison against ground truth.
	Verdict string

	// ReportKind names the report produced by a command.
	ReportKind string

	// TieRule selects how a result is judged when the true depth difference is
	// inside the noise threshold.
	TieRule string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All provenance filters supported.
const (
	AllProvenance       ProvenanceFilter = "all" // default
	HumanProvenance     ProvenanceFilter = "human"
	GeneratedProvenance ProvenanceFilter = "generated"
)

// Classification verdicts.
const (
	Correct   Verdict = "correct"
	Incorrect Verdict = "incorrect"
)

// All tie rules supported.
const (
	// LenientTies accepts a tie vote or a matching sign inside the threshold.
	LenientTies TieRule = "lenient" // default

	// StrictTies treats the truth inside the threshold as a tie, so only a tie vote is correct.
	StrictTies TieRule = "strict"
)

// All report kinds.
const (
	WorkersReport    ReportKind = "workers"
	ImagesReport     ReportKind = "images"
	WrongnessReport  ReportKind = "wrongness"
	AgreementReport  ReportKind = "agreement"
	ScoresReport     ReportKind = "scores"
	DepthStatsReport ReportKind = "depthstats"
	SummaryReport    ReportKind = "summary"
	LookupReport     ReportKind = "lookup"
)

// Default thresholds in millimetres.
const (
	DefaultWorkerThreshold = 500.0
	DefaultImageThreshold  = 1000.0
	DefaultBinWidth        = 200.0
	DefaultDepthAxis       = 1
)

// DefaultSweepThresholds are the noise thresholds a worker sweep visits, widest first.
var DefaultSweepThresholds = []float64{1000, 500, 200, 150, 100}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidProvenanceFilters lists all valid provenance filters.
var ValidProvenanceFilters = map[ProvenanceFilter]struct{}{
	AllProvenance:       {},
	HumanProvenance:     {},
	GeneratedProvenance: {},
}

// ValidTieRules lists all valid tie rules.
var ValidTieRules = map[TieRule]struct{}{
	LenientTies: {},
	StrictTies:  {},
}

// Accepts reports whether an entry of the given origin passes the filter.
func (f ProvenanceFilter) Accepts(o Origin) bool {
	switch f {
	case HumanProvenance:
		return o == OriginHuman
	case GeneratedProvenance:
		return o != OriginHuman
	default:
		return true
	}
}
