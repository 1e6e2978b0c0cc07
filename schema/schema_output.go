package schema

// Accuracy label values, from most to least trustworthy.
const (
	ExpertValue = "Expert"
	GoodValue   = "Good"
	FairValue   = "Fair"
	PoorValue   = "Poor"
)

// EnrichedWorkerScore adds presentation data to a WorkerScore.
type EnrichedWorkerScore struct {
	Rank  int    `json:"rank"`
	Label string `json:"label"`
	WorkerScore
}

// EnrichedImageScore adds presentation data to an ImageScore.
type EnrichedImageScore struct {
	Rank  int    `json:"rank"`
	Label string `json:"label"`
	ImageScore
}

// GetPlainLabel returns a plain text label for an accuracy percentage.
func GetPlainLabel(percent float64) string {
	switch {
	case percent >= 80:
		return ExpertValue
	case percent >= 60:
		return GoodValue
	case percent >= 40:
		return FairValue
	default:
		return PoorValue
	}
}

// RatioFor returns the accuracy ratio for the given filter and false when nothing was counted.
func (t Tally) RatioFor(filter ProvenanceFilter) (float64, bool) {
	switch filter {
	case HumanProvenance:
		return t.HumanRatio()
	case GeneratedProvenance:
		return t.GeneratedRatio()
	default:
		return t.Ratio()
	}
}

// Percent returns the accuracy percentage for the given filter.
func (t Tally) Percent(filter ProvenanceFilter) float64 {
	r, _ := t.RatioFor(filter)
	return 100 * r
}

// EnrichWorkers adds rank and label to a list of worker scores.
func EnrichWorkers(workers []WorkerScore, filter ProvenanceFilter) []EnrichedWorkerScore {
	output := make([]EnrichedWorkerScore, len(workers))
	for i, w := range workers {
		output[i] = EnrichedWorkerScore{
			Rank:        i + 1,
			Label:       GetPlainLabel(w.Percent(filter)),
			WorkerScore: w,
		}
	}
	return output
}

// EnrichImages adds rank and label to a list of image scores.
func EnrichImages(images []ImageScore) []EnrichedImageScore {
	output := make([]EnrichedImageScore, len(images))
	for i, img := range images {
		output[i] = EnrichedImageScore{
			Rank:       i + 1,
			Label:      GetPlainLabel(img.Percent(AllProvenance)),
			ImageScore: img,
		}
	}
	return output
}
