// =============================================================================
// ADV Filing Extractor - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing all configuration
// files. It handles the main application configuration, the extraction
// settings, and the firm definitions.
//
// CONFIGURATION FILES:
//   1. Main Config (config.yaml): Global application settings
//   2. Settings (adv_settings.yaml): Column names, matching strategy,
//      target columns, and manual overwrites
//   3. Firms (firms.yaml + firms-*.yaml): The tracked firms with their
//      identifier pairs and per-year default values
//
// ARCHITECTURE:
//   The configuration system is designed to be:
//   - Modular: Firms can be split across multiple firms-*.yaml files
//   - Validated: Structurally required settings (matching strategy, target
//     columns) are checked once at load time and are fatal if missing.
//     Everything downstream of loading recovers per item.
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// MATCHING STRATEGIES
// =============================================================================

// MatchingStrategy selects how corpus rows are matched to a firm.
// It is chosen once per run; the scanner never branches on it per row.
type MatchingStrategy string

const (
	// MatchSECOnly matches on the SEC ID column only.
	MatchSECOnly MatchingStrategy = "sec_only"

	// MatchCRDOnly matches on the CRD ID column only.
	MatchCRDOnly MatchingStrategy = "crd_only"

	// MatchBoth requires both identifiers to match.
	MatchBoth MatchingStrategy = "both"
)

// ParseMatchingStrategy normalizes a configured strategy string.
// Legacy spellings from older settings files ("SEC_ONLY", "CRD_ONLY",
// "BOTH") are accepted.
func ParseMatchingStrategy(raw string) (MatchingStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "sec_only":
		return MatchSECOnly, nil
	case "crd_only":
		return MatchCRDOnly, nil
	case "both":
		return MatchBoth, nil
	case "":
		return "", fmt.Errorf("matching_strategy is required")
	default:
		return "", fmt.Errorf("unknown matching_strategy %q (valid: sec_only, crd_only, both)", raw)
	}
}

// Describe returns the human-readable form used in log output.
func (s MatchingStrategy) Describe() string {
	switch s {
	case MatchSECOnly:
		return "SEC ID"
	case MatchCRDOnly:
		return "CRD ID"
	case MatchBoth:
		return "SEC ID and CRD ID"
	default:
		return string(s)
	}
}

// =============================================================================
// DECIMAL YAML SCALARS
// =============================================================================

// YAMLDecimal is a decimal that unmarshals from a YAML number or string
// scalar. Overwrite and default values are money-grade figures, so they are
// parsed exactly rather than through a float64.
//
// Configuration is trusted input: a malformed decimal here is a load error,
// unlike corpus cells, whose coercion failures degrade to absence.
type YAMLDecimal struct {
	decimal.Decimal
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *YAMLDecimal) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("expected scalar value, got %v", node.Kind)
	}
	parsed, err := decimal.NewFromString(strings.TrimSpace(node.Value))
	if err != nil {
		return fmt.Errorf("invalid numeric value %q: %w", node.Value, err)
	}
	d.Decimal = parsed
	return nil
}

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
// This is loaded from the main config.yaml file.
type MainConfig struct {
	// InputDir is the directory containing the raw filing snapshots.
	// It is scanned recursively; each run re-scans the full corpus.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir is the directory where reconciled CSV files are placed.
	// Default: "./output/csvs"
	OutputDir string `yaml:"output_dir"`

	// ChartsDir is the directory where chart workbooks are placed.
	// Default: "./output/charts"
	ChartsDir string `yaml:"charts_dir"`

	// SettingsFile is the path to the extraction settings file.
	// Default: "./adv_settings.yaml"
	SettingsFile string `yaml:"settings_file"`

	// FirmsFile is the path to the main firms file. Additional firms-*.yaml
	// files next to it are merged in automatically.
	// Default: "./firms.yaml"
	FirmsFile string `yaml:"firms_file"`

	// OutputNameFormat defines the format for output file names.
	// Placeholders:
	//   {firm}      - Firm name
	//   {sec_id}    - SEC ID
	//   {crd_id}    - CRD ID
	//   {year}      - Most recent fiscal year in the output
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {uuid}      - A random UUID
	// Default: "adv_data_{firm}_{sec_id}_{crd_id}_{year}.csv"
	OutputNameFormat string `yaml:"output_name_format"`

	// MaxConcurrency is the maximum number of firms to process
	// concurrently. Firms are independent, so any bound is safe.
	// Set to 1 for sequential processing.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// ContinueOnError determines whether to continue processing other
	// firms if one firm fails.
	// Default: true
	ContinueOnError *bool `yaml:"continue_on_error"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`
}

// =============================================================================
// EXTRACTION SETTINGS STRUCTURE
// =============================================================================

// Settings holds the extraction settings: which columns identify a firm,
// how rows are matched, which fields to extract, and any manual overwrites.
type Settings struct {
	// SECIDColumn is the header of the SEC identifier column in the
	// snapshots.
	// Default: "SEC#"
	SECIDColumn string `yaml:"sec_id_column"`

	// CRDIDColumn is the header of the CRD identifier column.
	// Default: "FirmCrdNb"
	CRDIDColumn string `yaml:"crd_id_column"`

	// FilingIDColumn is the header of the filing identifier column.
	// Default: "FilingID"
	FilingIDColumn string `yaml:"filing_id_column"`

	// ExecutionDateColumn is the header of the filing execution date
	// column. Fiscal years are derived from this column.
	// Default: "Execution Date"
	ExecutionDateColumn string `yaml:"execution_date_column"`

	// MatchingStrategy selects how rows are matched to a firm.
	// Required. Valid values: "sec_only", "crd_only", "both".
	MatchingStrategy MatchingStrategy `yaml:"matching_strategy"`

	// TargetColumns are the headers of the metric columns to extract.
	// Required, must be non-empty. The engine hard-codes no field names;
	// the reconciled output contains exactly these columns.
	TargetColumns []string `yaml:"target_columns"`

	// FilePattern is the glob matched against snapshot base names during
	// corpus discovery.
	// Default: "IA_ADV_Base_*.csv"
	FilePattern string `yaml:"file_pattern"`

	// Delimiter is the field separator used in the snapshots.
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// Encoding is the character encoding of the snapshots. ADV base
	// snapshots ship as latin1.
	// Valid values: "utf-8", "latin1", "iso-8859-1", "windows-1252"
	// Default: "latin1"
	Encoding string `yaml:"encoding"`

	// Overwrites maps a filing identifier to manual field corrections.
	// An overwrite replaces the named fields of that filing's matched row
	// before fiscal-year derivation, so a correction can never leak into
	// a different filing's year.
	Overwrites map[string]map[string]YAMLDecimal `yaml:"overwrites"`
}

// UnmarshalYAML normalizes the matching strategy while decoding, so that
// legacy upper-case spellings load transparently.
func (s *Settings) UnmarshalYAML(node *yaml.Node) error {
	type plain Settings
	var raw plain
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*s = Settings(raw)
	if s.MatchingStrategy != "" {
		normalized, err := ParseMatchingStrategy(string(s.MatchingStrategy))
		if err != nil {
			return err
		}
		s.MatchingStrategy = normalized
	}
	return nil
}

// =============================================================================
// FIRM CONFIGURATION STRUCTURE
// =============================================================================

// Firm is one tracked firm: its identifier pair and its per-year default
// values for fiscal years absent from the raw corpus.
type Firm struct {
	// Name is the human-readable firm name, used in logs and output file
	// names.
	Name string `yaml:"name"`

	// SECID is the firm's SEC identifier (e.g., "801-12345").
	SECID string `yaml:"sec_id"`

	// CRDID is the firm's CRD identifier.
	CRDID string `yaml:"crd_id"`

	// DefaultValues maps a fiscal year to fallback field values, used when
	// no raw record exists for that year or when the corpus yields nothing
	// at all for the firm. Fields not listed stay absent, not zero.
	DefaultValues map[int]map[string]YAMLDecimal `yaml:"default_values"`
}

// firmsFile is the on-disk shape of firms.yaml and firms-*.yaml.
type firmsFile struct {
	Firms []Firm `yaml:"firms"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the main configuration from a YAML file, applies
// defaults, and creates the configured directories.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := ensureDirectories(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration
// options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output/csvs"
	}
	if config.ChartsDir == "" {
		config.ChartsDir = "./output/charts"
	}
	if config.SettingsFile == "" {
		config.SettingsFile = "./adv_settings.yaml"
	}
	if config.FirmsFile == "" {
		config.FirmsFile = "./firms.yaml"
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "adv_data_{firm}_{sec_id}_{crd_id}_{year}.csv"
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}
	if config.ContinueOnError == nil {
		t := true
		config.ContinueOnError = &t
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
}

// ensureDirectories creates the configured directories if they do not exist.
func ensureDirectories(config *MainConfig) error {
	dirs := []string{
		config.InputDir,
		config.OutputDir,
		config.ChartsDir,
	}

	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}

	return nil
}

// LoadSettings loads the extraction settings and validates the structurally
// required fields. A missing matching strategy or an empty target-column
// list is a fatal startup condition; it is checked here, once, outside the
// per-firm loop.
func LoadSettings(settingsPath string) (*Settings, error) {
	data, err := os.ReadFile(settingsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}

	applySettingsDefaults(&settings)

	if err := validateSettings(&settings); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	return &settings, nil
}

// applySettingsDefaults sets default values for the extraction settings.
func applySettingsDefaults(settings *Settings) {
	if settings.SECIDColumn == "" {
		settings.SECIDColumn = "SEC#"
	}
	if settings.CRDIDColumn == "" {
		settings.CRDIDColumn = "FirmCrdNb"
	}
	if settings.FilingIDColumn == "" {
		settings.FilingIDColumn = "FilingID"
	}
	if settings.ExecutionDateColumn == "" {
		settings.ExecutionDateColumn = "Execution Date"
	}
	if settings.FilePattern == "" {
		settings.FilePattern = "IA_ADV_Base_*.csv"
	}
	if settings.Delimiter == "" {
		settings.Delimiter = ","
	}
	if settings.Encoding == "" {
		settings.Encoding = "latin1"
	}
	if settings.Overwrites == nil {
		settings.Overwrites = map[string]map[string]YAMLDecimal{}
	}
}

// validateSettings checks the structurally required settings.
func validateSettings(settings *Settings) error {
	normalized, err := ParseMatchingStrategy(string(settings.MatchingStrategy))
	if err != nil {
		return err
	}
	settings.MatchingStrategy = normalized

	if len(settings.TargetColumns) == 0 {
		return fmt.Errorf("target_columns is required and must not be empty")
	}
	for _, col := range settings.TargetColumns {
		if strings.TrimSpace(col) == "" {
			return fmt.Errorf("target_columns must not contain blank entries")
		}
	}

	return nil
}

// LoadFirms loads the main firms file plus any sibling firms-*.yaml files.
// Splitting firms across files keeps large watchlists manageable; a sibling
// file that fails to load is reported but does not abort the main load,
// matching the per-item failure domain of the rest of the pipeline.
func LoadFirms(firmsPath string) ([]Firm, []error, error) {
	firms, err := loadFirmsFile(firmsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load %s: %w", firmsPath, err)
	}

	// Discover sibling firms-*.yaml files next to the main file.
	dir := filepath.Dir(firmsPath)
	base := filepath.Base(firmsPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	pattern := filepath.Join(dir, stem+"-*"+ext)
	siblings, err := filepath.Glob(pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list firm files: %w", err)
	}
	sort.Strings(siblings)

	var warnings []error
	for _, sibling := range siblings {
		extra, err := loadFirmsFile(sibling)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("could not load %s: %w", sibling, err))
			continue
		}
		firms = append(firms, extra...)
	}

	if err := validateFirms(firms); err != nil {
		return nil, warnings, err
	}

	return firms, warnings, nil
}

// loadFirmsFile loads a single firms file.
func loadFirmsFile(path string) ([]Firm, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var file firmsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}

	return file.Firms, nil
}

// validateFirms checks that every firm is well-formed enough to process.
func validateFirms(firms []Firm) error {
	if len(firms) == 0 {
		return fmt.Errorf("no firms configured")
	}
	for i, firm := range firms {
		if strings.TrimSpace(firm.Name) == "" {
			return fmt.Errorf("firm %d has no name", i+1)
		}
		if firm.SECID == "" && firm.CRDID == "" {
			return fmt.Errorf("firm %q has neither a SEC ID nor a CRD ID", firm.Name)
		}
	}
	return nil
}
