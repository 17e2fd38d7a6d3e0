// Package gazetteer holds the reference data the classifiers consult: foreign
// places, registration-number prefixes, previous-publication phrases, and the
// generic-title list. The default data set is embedded; a YAML file with the
// same shape can replace it.
package gazetteer

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"crclear/internal/faults"
)

//go:embed gazetteer.yaml
var defaultData []byte

// Gazetteer is the parsed reference data. Construct it with Default, Load,
// or Parse; the zero value matches nothing.
type Gazetteer struct {
	ForeignCities       []string `yaml:"foreign_cities"`
	DomesticNames       []string `yaml:"domestic_names"`
	Countries           []string `yaml:"countries"`
	AdditionalCountries []string `yaml:"additional_countries"`
	ForeignPrefixes     []string `yaml:"foreign_prefixes"`
	InterimPrefixes     []string `yaml:"interim_prefixes"`
	InterimMarkers      []string `yaml:"interim_markers"`
	AbroadPattern       string   `yaml:"abroad_pattern"`
	WeakKeywords        []string `yaml:"weak_keywords"`
	GenericTitles       []string `yaml:"generic_titles"`
	TelephoneMarker     string   `yaml:"telephone_marker"`

	abroad           *regexp.Regexp
	foreignCountries []string
}

// Default returns the embedded reference data.
func Default() (*Gazetteer, error) {
	return Parse(defaultData)
}

// Load reads reference data from path, or returns Default when path is empty.
func Load(path string) (*Gazetteer, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, faults.Wrap(faults.ErrConfiguration, "gazetteer", "read", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML reference data and prepares its derived lookups.
func Parse(data []byte) (*Gazetteer, error) {
	var g Gazetteer
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, faults.Wrap(faults.ErrConfiguration, "gazetteer", "decode", "invalid reference data", err)
	}
	if err := g.prepare(); err != nil {
		return nil, err
	}
	return &g, nil
}

func (g *Gazetteer) prepare() error {
	if len(g.ForeignPrefixes) == 0 {
		return faults.Wrap(faults.ErrConfiguration, "gazetteer", "validate", "foreign_prefixes must not be empty", nil)
	}
	if len(g.InterimPrefixes) == 0 {
		return faults.Wrap(faults.ErrConfiguration, "gazetteer", "validate", "interim_prefixes must not be empty", nil)
	}
	if g.AbroadPattern != "" {
		re, err := regexp.Compile(g.AbroadPattern)
		if err != nil {
			return faults.Wrap(faults.ErrConfiguration, "gazetteer", "validate", fmt.Sprintf("abroad_pattern %q", g.AbroadPattern), err)
		}
		g.abroad = re
	}
	domestic := make(map[string]struct{}, len(g.DomesticNames))
	for _, name := range g.DomesticNames {
		domestic[name] = struct{}{}
	}
	g.foreignCountries = g.foreignCountries[:0]
	for _, name := range append(append([]string{}, g.Countries...), g.AdditionalCountries...) {
		if _, ok := domestic[name]; ok {
			continue
		}
		g.foreignCountries = append(g.foreignCountries, name)
	}
	return nil
}

// ForeignCountries lists every country name treated as foreign: the country
// list minus domestic names, plus the additional names.
func (g *Gazetteer) ForeignCountries() []string {
	return append([]string(nil), g.foreignCountries...)
}

// PublishedAbroad reports whether text matches the "published abroad" pattern.
func (g *Gazetteer) PublishedAbroad(text string) bool {
	return g.abroad != nil && g.abroad.MatchString(text)
}
