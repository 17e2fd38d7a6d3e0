package preflight

import (
	"errors"
	"sort"
	"strings"

	"crclear/internal/config"
	"crclear/internal/faults"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Plan lists what one stage will read and write.
type Plan struct {
	Inputs    map[string][]string
	OutputDir string
	Files     map[string]string
}

// RunAll executes the checks shared by every stage plus those in plan.
// Optional config paths are only checked when set.
func RunAll(cfg *config.Config, plan Plan) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	if cfg.Paths.LogDir != "" {
		results = append(results, CheckCreatableDirectory("Log directory", cfg.Paths.LogDir))
	}
	if cfg.Paths.ReferenceFile != "" {
		results = append(results, CheckFileReadable("Reference data", cfg.Paths.ReferenceFile))
	}
	if cfg.Paths.MetricsFile != "" {
		results = append(results, CheckFileWritable("Metrics textfile", cfg.Paths.MetricsFile))
	}

	if plan.OutputDir != "" {
		results = append(results, CheckCreatableDirectory("Output directory", plan.OutputDir))
	}
	for _, name := range sortedKeys(plan.Inputs) {
		for _, path := range plan.Inputs[name] {
			results = append(results, CheckFileReadable(name, path))
		}
	}
	for _, name := range sortedKeys(plan.Files) {
		results = append(results, CheckFileWritable(name, plan.Files[name]))
	}
	return results
}

// Err folds the failed results into one configuration error, or returns nil
// when every check passed.
func Err(results []Result) error {
	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r.Name+": "+r.Detail)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return faults.Wrap(faults.ErrConfiguration, "preflight", "", strings.Join(failed, "; "), errors.New("checks failed"))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
