package schema

import "time"

// Action is one Human3.6M action category.
type Action struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Version int    `json:"version"`
}

// TruthSet is the ground-truth dataset as loaded.
type TruthSet struct {
	Truths  []Truth  `json:"truths"`
	Actions []Action `json:"actions"`
}

// ActionID resolves an action name and version to its id.
func (ts *TruthSet) ActionID(name string, version int) (int, bool) {
	for _, a := range ts.Actions {
		if a.Name == name && a.Version == version {
			return a.ID, true
		}
	}
	return 0, false
}

// Tally counts correct and total classified comparisons by provenance.
type Tally struct {
	HumanCorrect     int `json:"human_correct"`
	HumanTotal       int `json:"human_total"`
	GeneratedCorrect int `json:"generated_correct"`
	GeneratedTotal   int `json:"generated_total"`
}

// Add merges another tally into this one.
func (t *Tally) Add(o Tally) {
	t.HumanCorrect += o.HumanCorrect
	t.HumanTotal += o.HumanTotal
	t.GeneratedCorrect += o.GeneratedCorrect
	t.GeneratedTotal += o.GeneratedTotal
}

// Correct returns the correct count over both provenances.
func (t Tally) Correct() int { return t.HumanCorrect + t.GeneratedCorrect }

// Total returns the total count over both provenances.
func (t Tally) Total() int { return t.HumanTotal + t.GeneratedTotal }

// HumanRatio returns the human accuracy in [0,1] and false when nothing was counted.
func (t Tally) HumanRatio() (float64, bool) { return ratio(t.HumanCorrect, t.HumanTotal) }

// GeneratedRatio returns the generated accuracy in [0,1] and false when nothing was counted.
func (t Tally) GeneratedRatio() (float64, bool) { return ratio(t.GeneratedCorrect, t.GeneratedTotal) }

// Ratio returns the overall accuracy in [0,1] and false when nothing was counted.
func (t Tally) Ratio() (float64, bool) { return ratio(t.Correct(), t.Total()) }

func ratio(n, d int) (float64, bool) {
	if d == 0 {
		return 0, false
	}
	return float64(n) / float64(d), true
}

// WorkerScore is the accuracy of one worker at one threshold.
type WorkerScore struct {
	WorkerID  string  `json:"worker_id"`
	Threshold float64 `json:"threshold"`
	Hits      int     `json:"hits"`
	Tally
}

// ImageScore is the accuracy of one image's metaperson.
type ImageScore struct {
	ImageID    int64   `json:"image_id"`
	Filename   string  `json:"filename"`
	Threshold  float64 `json:"threshold"`
	Annotators int     `json:"annotators"`
	TiedVotes  int     `json:"tied_votes"`
	Tally
}

// DepthBucket counts classified comparisons whose depth difference falls in [Lower, Upper).
type DepthBucket struct {
	Lower              float64 `json:"lower"`
	Upper              float64 `json:"upper"`
	HumanCorrect       int     `json:"human_correct"`
	HumanIncorrect     int     `json:"human_incorrect"`
	GeneratedCorrect   int     `json:"generated_correct"`
	GeneratedIncorrect int     `json:"generated_incorrect"`
}

// HumanProportion returns the share of human comparisons in the bucket that were correct.
func (b DepthBucket) HumanProportion() (float64, bool) {
	return ratio(b.HumanCorrect, b.HumanCorrect+b.HumanIncorrect)
}

// AllProportion returns the share of all comparisons in the bucket that were correct.
func (b DepthBucket) AllProportion() (float64, bool) {
	c := b.HumanCorrect + b.GeneratedCorrect
	return ratio(c, c+b.HumanIncorrect+b.GeneratedIncorrect)
}

// AgreementStats summarizes pairwise ordering similarity within one image.
type AgreementStats struct {
	ImageID int64     `json:"image_id"`
	Avg     float64   `json:"avg"`
	Best    float64   `json:"best"`
	Worst   float64   `json:"worst"`
	All     []float64 `json:"all"`
}

// AgreementDistributions collects the agreement distributions over all images.
type AgreementDistributions struct {
	Images []AgreementStats `json:"images"`
	Avg    []float64        `json:"avg"`
	All    []float64        `json:"all"`
	Best   []float64        `json:"best"`
	Worst  []float64        `json:"worst"`
	Random []float64        `json:"random"`
}

// HistogramBin is one fixed-width bin with its cumulative proportion.
type HistogramBin struct {
	Lower      float64 `json:"lower"`
	Upper      float64 `json:"upper"`
	Count      int     `json:"count"`
	Proportion float64 `json:"proportion"`
	Cumulative float64 `json:"cumulative"`
}

// Histogram is a named set of bins over a sample.
type Histogram struct {
	Name    string         `json:"name"`
	Samples int            `json:"samples"`
	Bins    []HistogramBin `json:"bins"`
}

// RecordScore holds the per-hit ordering scores against ground truth.
type RecordScore struct {
	HitID    int64   `json:"hit_id"`
	WorkerID string  `json:"worker_id"`
	ImageID  int64   `json:"image_id"`
	Naive    int     `json:"naive"`
	Distance float64 `json:"distance"`
}

// DepthStats summarizes the depth range (deepest minus shallowest keypoint) per record.
type DepthStats struct {
	Records int       `json:"records"`
	Mean    float64   `json:"mean"`
	Median  float64   `json:"median"`
	Min     float64   `json:"min"`
	Max     float64   `json:"max"`
	Ranges  []float64 `json:"ranges"`
}

// DatasetSummary counts what made it through dataset construction.
type DatasetSummary struct {
	Hits    int           `json:"hits"`
	Usable  int           `json:"usable"`
	Truths  int           `json:"truths"`
	Images  int           `json:"images"`
	Workers int           `json:"workers"`
	Errors  *ErrorSummary `json:"errors"`
}

// LookupRow maps one query value to its matches.
type LookupRow struct {
	Query   string   `json:"query"`
	Matches []string `json:"matches"`
}

// Report is the envelope every command hands to a result sink.
// Only the fields belonging to Kind are populated.
type Report struct {
	RunID       string     `json:"run_id"`
	Kind        ReportKind `json:"kind"`
	GeneratedAt time.Time  `json:"generated_at"`

	Workers    []WorkerScore           `json:"workers,omitempty"`
	Images     []ImageScore            `json:"images,omitempty"`
	Buckets    []DepthBucket           `json:"buckets,omitempty"`
	Agreement  *AgreementDistributions `json:"agreement,omitempty"`
	Scores     []RecordScore           `json:"scores,omitempty"`
	DepthStats *DepthStats             `json:"depth_stats,omitempty"`
	Summary    *DatasetSummary         `json:"summary,omitempty"`
	Lookup     []LookupRow             `json:"lookup,omitempty"`
	Histograms []Histogram             `json:"histograms,omitempty"`
}
