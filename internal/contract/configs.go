package contract

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/huangsam/depthaudit/schema"
)

// Default values for configuration.
const (
	DefaultHitsPath      = "hits.json"
	DefaultTruthPath     = "truth.json"
	DefaultRotationsPath = "rotations.json"
	DefaultResultLimit   = 25
	MaxResultLimit       = 1000
	DefaultPrecision     = 1
	DefaultSeed          = 1
)

// Lookup modes supported by the lookup command.
const (
	LookupFiles   = "files"   // hits by image filename
	LookupImages  = "images"  // filenames by image id
	LookupWorkers = "workers" // filenames by worker id
	LookupHits    = "hits"    // hit ids by image id
)

// ValidLookupModes lists all valid lookup modes.
var ValidLookupModes = map[string]struct{}{
	LookupFiles:   {},
	LookupImages:  {},
	LookupWorkers: {},
	LookupHits:    {},
}

// Config holds the runtime configuration for a run.
// This struct remains the "final, validated" config.
type Config struct {
	HitsPath      string
	TruthPath     string
	RotationsPath string

	Threshold      float64   // worker noise threshold (mm)
	ImageThreshold float64   // metaperson noise threshold (mm)
	Thresholds     []float64 // worker sweep thresholds (mm)
	TieRule        schema.TieRule
	Provenance     schema.ProvenanceFilter

	DepthAxis int
	BinWidth  float64
	Absolute  bool
	Seed      uint64

	Subjects      []int  // keep only these subjects (empty = all)
	Action        string // keep only this action name (empty = all)
	ActionVersion int

	LookupMode   string
	LookupValues []string

	Output      schema.OutputMode
	OutputFile  string
	PlotDir     string
	Precision   int
	ResultLimit int
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	LookupArgs []string

	// --- Fields from rootCmd.PersistentFlags() ---
	Hits           string  `mapstructure:"hits"`
	Truth          string  `mapstructure:"truth"`
	Rotations      string  `mapstructure:"rotations"`
	Threshold      float64 `mapstructure:"threshold"`
	ImageThreshold float64 `mapstructure:"image-threshold"`
	TieRule        string  `mapstructure:"tie-rule"`
	Provenance     string  `mapstructure:"provenance"`
	DepthAxis      int     `mapstructure:"depth-axis"`
	Subjects       string  `mapstructure:"subjects"`
	Action         string  `mapstructure:"action"`
	ActionVersion  int     `mapstructure:"action-version"`
	Output         string  `mapstructure:"output"`
	OutputFile     string  `mapstructure:"output-file"`
	PlotDir        string  `mapstructure:"plot-dir"`
	Precision      int     `mapstructure:"precision"`
	Limit          int     `mapstructure:"limit"`
	Width          int     `mapstructure:"width"`
	Color          string  `mapstructure:"color"`

	// --- Fields from workersCmd.Flags() ---
	Thresholds string `mapstructure:"thresholds"`

	// --- Fields from wrongnessCmd.Flags() ---
	BinWidth float64 `mapstructure:"bin-width"`
	Absolute bool    `mapstructure:"absolute"`

	// --- Fields from agreementCmd.Flags() ---
	Seed uint64 `mapstructure:"seed"`

	// --- Fields from lookupCmd.Flags() ---
	By string `mapstructure:"by"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Thresholds = slices.Clone(c.Thresholds)
	clone.Subjects = slices.Clone(c.Subjects)
	clone.LookupValues = slices.Clone(c.LookupValues)
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processScoring(cfg, input); err != nil {
		return err
	}
	if err := processTruthFilter(cfg, input); err != nil {
		return err
	}
	if err := processLookup(cfg, input); err != nil {
		return err
	}
	return nil
}

// validateSimpleInputs processes and validates the input and output fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.HitsPath = strings.TrimSpace(input.Hits)
	cfg.TruthPath = strings.TrimSpace(input.Truth)
	cfg.RotationsPath = strings.TrimSpace(input.Rotations)
	cfg.OutputFile = input.OutputFile
	cfg.PlotDir = input.PlotDir
	cfg.Width = input.Width

	if cfg.HitsPath == "" || cfg.TruthPath == "" || cfg.RotationsPath == "" {
		return fmt.Errorf("hits, truth and rotations paths must all be set")
	}

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. ResultLimit Validation ---
	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- 2. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 4 {
		return fmt.Errorf("precision must be between 1 and 4 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}

	return nil
}

// processScoring handles thresholds and the judging rules.
func processScoring(cfg *Config, input *ConfigRawInput) error {
	if input.Threshold < 0 {
		return fmt.Errorf("threshold cannot be negative (received %.1f)", input.Threshold)
	}
	cfg.Threshold = input.Threshold

	if input.ImageThreshold < 0 {
		return fmt.Errorf("image threshold cannot be negative (received %.1f)", input.ImageThreshold)
	}
	cfg.ImageThreshold = input.ImageThreshold

	cfg.Thresholds = slices.Clone(schema.DefaultSweepThresholds)
	if strings.TrimSpace(input.Thresholds) != "" {
		thresholds, err := ParseFloatList(input.Thresholds)
		if err != nil {
			return fmt.Errorf("invalid --thresholds: %w", err)
		}
		for _, thr := range thresholds {
			if thr < 0 {
				return fmt.Errorf("sweep thresholds cannot be negative (received %.1f)", thr)
			}
		}
		cfg.Thresholds = thresholds
	}

	cfg.TieRule = schema.TieRule(strings.ToLower(input.TieRule))
	if cfg.TieRule == "" {
		cfg.TieRule = schema.LenientTies
	}
	if _, ok := schema.ValidTieRules[cfg.TieRule]; !ok {
		return fmt.Errorf("invalid tie rule '%s'. must be lenient, strict", input.TieRule)
	}

	cfg.Provenance = schema.ProvenanceFilter(strings.ToLower(input.Provenance))
	if cfg.Provenance == "" {
		cfg.Provenance = schema.AllProvenance
	}
	if _, ok := schema.ValidProvenanceFilters[cfg.Provenance]; !ok {
		return fmt.Errorf("invalid provenance '%s'. must be all, human, generated", input.Provenance)
	}

	if input.DepthAxis < 0 || input.DepthAxis > 2 {
		return fmt.Errorf("depth axis must be 0, 1 or 2 (received %d)", input.DepthAxis)
	}
	cfg.DepthAxis = input.DepthAxis

	if input.BinWidth <= 0 {
		return fmt.Errorf("bin width must be greater than 0 (received %.1f)", input.BinWidth)
	}
	cfg.BinWidth = input.BinWidth
	cfg.Absolute = input.Absolute
	cfg.Seed = input.Seed

	return nil
}

// processTruthFilter handles the optional subject and action filter.
func processTruthFilter(cfg *Config, input *ConfigRawInput) error {
	cfg.Subjects = nil
	if strings.TrimSpace(input.Subjects) != "" {
		subjects, err := ParseIntList(input.Subjects)
		if err != nil {
			return fmt.Errorf("invalid --subjects: %w", err)
		}
		cfg.Subjects = subjects
	}
	cfg.Action = strings.TrimSpace(input.Action)
	if input.ActionVersion < 0 {
		return fmt.Errorf("action version cannot be negative (received %d)", input.ActionVersion)
	}
	cfg.ActionVersion = input.ActionVersion
	return nil
}

// processLookup handles the lookup mode and its positional values.
func processLookup(cfg *Config, input *ConfigRawInput) error {
	cfg.LookupValues = nil
	for _, arg := range input.LookupArgs {
		for v := range strings.SplitSeq(arg, ",") {
			if v = strings.TrimSpace(v); v != "" {
				cfg.LookupValues = append(cfg.LookupValues, v)
			}
		}
	}

	cfg.LookupMode = strings.ToLower(strings.TrimSpace(input.By))
	if cfg.LookupMode == "" {
		return nil
	}
	if _, ok := ValidLookupModes[cfg.LookupMode]; !ok {
		return fmt.Errorf("invalid lookup mode '%s'. must be files, images, workers, hits", input.By)
	}
	if cfg.LookupMode == LookupImages || cfg.LookupMode == LookupHits {
		for _, v := range cfg.LookupValues {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				return fmt.Errorf("image id '%s' is not a number", v)
			}
		}
	}
	return nil
}

// ParseFloatList parses a comma-separated list like "1000,500,200".
func ParseFloatList(s string) ([]float64, error) {
	var out []float64
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number '%s': %w", part, err)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty list")
	}
	return out, nil
}

// ParseIntList parses a comma-separated list like "1,5,6".
func ParseIntList(s string) ([]int, error) {
	var out []int
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid integer '%s': %w", part, err)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty list")
	}
	return out, nil
}
