package schema

import "slices"

// Truth is the ground-truth pose record for one image.
// Kpts2D, Kpts3D and the identifiers come from the dataset; KptsDepth and
// Ordering are derived when a truth is attached to a HitRecord.
type Truth struct {
	ImageID   int64         `json:"image_id"`
	CameraID  int           `json:"camera_id"`
	SubjectID int           `json:"subject_id"`
	ActionID  int           `json:"action_id"`
	Filename  string        `json:"filename"`
	Kpts2D    []float64     `json:"kpts_2d"`
	Kpts3D    Pose3D        `json:"kpts_3d"`
	KptsDepth []float64     `json:"kpts_depth,omitempty"`
	Ordering  DepthOrdering `json:"ordering,omitempty"`
}

// Clone returns a deep copy of the truth record.
func (t *Truth) Clone() *Truth {
	if t == nil {
		return nil
	}
	clone := *t
	clone.Kpts2D = slices.Clone(t.Kpts2D)
	clone.Kpts3D = slices.Clone(t.Kpts3D)
	clone.KptsDepth = slices.Clone(t.KptsDepth)
	clone.Ordering = slices.Clone(t.Ordering)
	return &clone
}

// Depth returns the ground-truth depth of a keypoint.
func (t *Truth) Depth(kpt int) (float64, bool) {
	if t == nil || kpt < 0 || kpt >= len(t.KptsDepth) {
		return 0, false
	}
	return t.KptsDepth[kpt], true
}

// HitRecord is one annotator's submission for one image.
type HitRecord struct {
	HitID    int64  `json:"hit_id"`
	WorkerID string `json:"worker_id"`
	ImageID  int64  `json:"image_id"`

	// Ordering is the depth ordering recreated from the GUI trial; nil when missing.
	Ordering DepthOrdering `json:"ordering,omitempty"`

	// HumanResults holds the comparisons recorded by the GUI, keyed as recorded.
	HumanResults map[ComparisonKey]ComparisonResult `json:"-"`

	// HumanMadeKeys are the comparisons actually presented to the annotator.
	HumanMadeKeys []ComparisonKey `json:"human_made_keys"`

	Truth    *Truth         `json:"truth,omitempty"`
	Resolved *ResolvedTable `json:"-"`
	Err      error          `json:"-"`
}

// Usable reports whether the record survived matching and resolution.
func (h *HitRecord) Usable() bool {
	return h != nil && h.Err == nil && h.Truth != nil && h.Resolved != nil
}

// Origin records where a resolved comparison came from.
type Origin uint8

// All comparison origins.
const (
	OriginSynthesized Origin = iota // inferred from the annotator's ordering
	OriginRecorded                  // in the GUI result map but never presented
	OriginHuman                     // presented to and answered by the annotator
	OriginConsensus                 // majority vote across annotators
)

// String returns the origin name.
func (o Origin) String() string {
	switch o {
	case OriginHuman:
		return "human"
	case OriginRecorded:
		return "recorded"
	case OriginConsensus:
		return "consensus"
	default:
		return "synthesized"
	}
}

// Entry is one resolved comparison.
type Entry struct {
	Key    ComparisonKey    `json:"key"`
	Result ComparisonResult `json:"result"`
	Origin Origin           `json:"origin"`
}

// IsHuman reports whether the comparison was made by a person.
func (e Entry) IsHuman() bool { return e.Origin == OriginHuman }

// ResolvedTable is a complete pairwise comparison table.
// Entries keep the orientation they were stored with; lookups normalize.
type ResolvedTable struct {
	entries []Entry
	index   map[ComparisonKey]int
	human   map[ComparisonKey]struct{}
}

// NewResolvedTable creates an empty table. humanKeys is the set of comparisons
// presented to the annotator, in any orientation.
func NewResolvedTable(humanKeys []ComparisonKey) *ResolvedTable {
	t := &ResolvedTable{
		index: make(map[ComparisonKey]int),
		human: make(map[ComparisonKey]struct{}, len(humanKeys)),
	}
	for _, k := range humanKeys {
		t.human[k.Canonical()] = struct{}{}
	}
	return t
}

// Add stores an entry under its own key. It returns false and leaves the table
// untouched if the pair is already present in either orientation.
func (t *ResolvedTable) Add(e Entry) bool {
	if _, ok := t.position(e.Key); ok {
		return false
	}
	t.index[e.Key] = len(t.entries)
	t.entries = append(t.entries, e)
	return true
}

func (t *ResolvedTable) position(key ComparisonKey) (int, bool) {
	if i, ok := t.index[key]; ok {
		return i, true
	}
	i, ok := t.index[key.Reversed()]
	return i, ok
}

// Get returns the stored entry for the pair, in its stored orientation.
func (t *ResolvedTable) Get(key ComparisonKey) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	i, ok := t.position(key)
	if !ok {
		return Entry{}, false
	}
	return t.entries[i], true
}

// Lookup returns the result oriented as key asks for: a pair stored reversed
// has its sign flipped.
func (t *ResolvedTable) Lookup(key ComparisonKey) (ComparisonResult, bool) {
	e, ok := t.Get(key)
	if !ok {
		return Tie, false
	}
	if e.Key == key {
		return e.Result, true
	}
	return -e.Result, true
}

// IsHuman reports whether the pair was presented to the annotator.
func (t *ResolvedTable) IsHuman(key ComparisonKey) bool {
	if t == nil {
		return false
	}
	_, ok := t.human[key.Canonical()]
	return ok
}

// HumanKeys returns the presented pairs in canonical form, sorted.
func (t *ResolvedTable) HumanKeys() []ComparisonKey {
	keys := make([]ComparisonKey, 0, len(t.human))
	for k := range t.human {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeys)
	return keys
}

// Entries returns a copy of all entries in insertion order.
func (t *ResolvedTable) Entries() []Entry {
	if t == nil {
		return nil
	}
	return slices.Clone(t.entries)
}

// Len returns the number of entries.
func (t *ResolvedTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

func compareKeys(a, b ComparisonKey) int {
	if a.Kpt1 != b.Kpt1 {
		return a.Kpt1 - b.Kpt1
	}
	return a.Kpt2 - b.Kpt2
}

// VoteOutcome is a majority vote result. Tied marks a vote that fell back to 0
// because the top candidates were tied.
type VoteOutcome struct {
	Result ComparisonResult `json:"result"`
	Tied   bool             `json:"tied"`
}

// Metaperson is the consensus annotator for one image.
type Metaperson struct {
	ImageID int64
	Truth   *Truth
	Table   *ResolvedTable
	Votes   map[ComparisonKey]VoteOutcome
}

// TiedVotes counts keys whose consensus was a tie fallback.
func (m *Metaperson) TiedVotes() int {
	n := 0
	for _, v := range m.Votes {
		if v.Tied {
			n++
		}
	}
	return n
}

// ImageGroup is a non-owning view of the hits for one image.
type ImageGroup struct {
	ImageID    int64
	Hits       []*HitRecord
	Metaperson *Metaperson
}

// WorkerGroup is a non-owning view of the hits for one worker.
type WorkerGroup struct {
	WorkerID string
	Hits     []*HitRecord
}

// RotationTable holds per-(camera, subject) rotation matrices.
type RotationTable struct {
	CameraIDs  []int
	SubjectIDs []int
	// Matrices is indexed [cameraIndex][subjectIndex].
	Matrices [][][3][3]float64
}

// Lookup returns the matrix for a camera and subject id.
func (rt *RotationTable) Lookup(cameraID, subjectID int) ([3][3]float64, bool) {
	if rt == nil {
		return [3][3]float64{}, false
	}
	ci := slices.Index(rt.CameraIDs, cameraID)
	si := slices.Index(rt.SubjectIDs, subjectID)
	if ci < 0 || si < 0 || ci >= len(rt.Matrices) || si >= len(rt.Matrices[ci]) {
		return [3][3]float64{}, false
	}
	return rt.Matrices[ci][si], true
}
