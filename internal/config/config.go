package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory locations.
type Paths struct {
	OutputDir     string `toml:"output_dir"`
	LogDir        string `toml:"log_dir"`
	CatalogDB     string `toml:"catalog_db"`
	MetricsFile   string `toml:"metrics_file"`
	ReferenceFile string `toml:"reference_file"`
}

// Classification contains the disposition funnel and renewal matcher knobs.
type Classification struct {
	// CutoffYear is the first year still under copyright. Zero means the
	// current year minus 95.
	CutoffYear          int      `toml:"cutoff_year"`
	UpperYearBound      int      `toml:"upper_year_bound"`
	WordOverlapQuotient float64  `toml:"word_overlap_quotient"`
	InterimIsForeign    bool     `toml:"interim_is_foreign"`
	BookPrefixes        []string `toml:"book_prefixes"`
}

// Catalog contains the catalog match scorer knobs.
type Catalog struct {
	MatchCountDilutionThreshold int     `toml:"match_count_dilution_threshold"`
	QualityCutoff               float64 `toml:"quality_cutoff"`
	ReviewCutoff                float64 `toml:"review_cutoff"`
	YearSlack                   int     `toml:"year_slack"`
	AuthorPenaltyCap            float64 `toml:"author_penalty_cap"`
	DateExponent                float64 `toml:"date_exponent"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format           string            `toml:"format"`
	Level            string            `toml:"level"`
	ProgressInterval int               `toml:"progress_interval"`
	StageOverrides   map[string]string `toml:"stage_overrides"`
}

// Config encapsulates all configuration values for crclear.
type Config struct {
	Paths          Paths          `toml:"paths"`
	Classification Classification `toml:"classification"`
	Catalog        Catalog        `toml:"catalog"`
	Logging        Logging        `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// projectConfigName is picked up from the working directory when no user
// config exists.
const projectConfigName = "crclear.toml"

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and every default applied. The second
// and third results report the resolved path and whether a file was read.
// Keys the config does not define are rejected so that typos surface.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolved, exists, err := locate(path)
	if err != nil {
		return nil, "", false, err
	}
	if exists {
		if err := decodeFile(resolved, &cfg); err != nil {
			return nil, "", false, err
		}
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	dec := toml.NewDecoder(file)
	dec.DisallowUnknownFields()
	err = dec.Decode(cfg)

	var strict *toml.StrictMissingError
	var decodeErr *toml.DecodeError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &strict):
		keys := make([]string, 0, len(strict.Errors))
		for _, e := range strict.Errors {
			keys = append(keys, strings.Join(e.Key(), "."))
		}
		return fmt.Errorf("parse config %s: unknown keys %s", path, strings.Join(keys, ", "))
	case errors.As(err, &decodeErr):
		row, col := decodeErr.Position()
		return fmt.Errorf("parse config %s:%d:%d: %w", path, row, col, err)
	default:
		return fmt.Errorf("parse config %s: %w", path, err)
	}
}

// locate resolves the config file to read. An explicit path is used as
// given, existing or not. Otherwise the user config wins over crclear.toml
// in the working directory; when neither exists the user config path is
// reported with exists=false.
func locate(path string) (string, bool, error) {
	var candidates []string
	if path != "" {
		candidates = []string{path}
	} else {
		candidates = []string{defaultConfigPath, projectConfigName}
	}

	var first string
	for _, candidate := range candidates {
		expanded, err := expandPath(candidate)
		if err != nil {
			return "", false, err
		}
		if first == "" {
			first = expanded
		}
		info, err := os.Stat(expanded)
		switch {
		case err == nil && !info.IsDir():
			return expanded, true, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			if path != "" {
				return "", false, fmt.Errorf("stat config: %w", err)
			}
		}
	}
	return first, false, nil
}

// EnsureDirectories creates the output and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
