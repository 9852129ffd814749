package bundler

import (
	"os"
	"sort"

	errorutil "github.com/projectdiscovery/utils/errors"
	mapsutil "github.com/projectdiscovery/utils/maps"
	"gopkg.in/yaml.v3"
)

// Config lists the surfaces a census can be taken over.
type Config struct {
	Surfaces map[string]*Surface `yaml:"surfaces"`
}

// Surface describes the generators of a mapping class group and the
// geometry they come from.
type Surface struct {
	// generators and their inverses, e.g. aAbB
	Generators string `yaml:"generators"`
	// clauses separated by ^, every word meets each clause
	MustContain string `yaml:"must_contain"`
	// symmetries of the generators separated by |
	Automorphisms string `yaml:"automorphisms"`
	// support of each lower case generator: annulus or rectangle
	Curves map[string]string `yaml:"curves,omitempty"`
	// geometric intersection number of pairs of generators, e.g. ab: 1
	Intersections map[string]int `yaml:"intersections,omitempty"`
	// generators on either side of an arc where it meets a curve, e.g. xc: aa
	ArcNeighbours map[string]string `yaml:"arc_neighbours,omitempty"`
	// extra relators such as aba=bab
	Relators []string `yaml:"relators,omitempty"`
	// free generators of the fundamental group and their inverses
	Pi1 string `yaml:"pi1,omitempty"`
	// image of the fundamental group generators under each twist
	Twists map[string]map[string]string `yaml:"twists,omitempty"`
	// loops tracked by the fixed loop test
	Seeds []string `yaml:"seeds,omitempty"`
}

// NewConfig reads config from file
func NewConfig(filePath string) (*Config, error) {
	bin, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err = yaml.Unmarshal(bin, &cfg); err != nil {
		return nil, err
	}
	for name, s := range cfg.Surfaces {
		if s == nil || s.Generators == "" {
			return nil, errorutil.NewWithTag("bundler", "surface %v has no generators", name)
		}
	}
	return &cfg, nil
}

// Names returns the configured surface names in order.
func (c *Config) Names() []string {
	names := mapsutil.GetKeys(c.Surfaces)
	sort.Strings(names)
	return names
}

// Surface returns the named surface.
func (c *Config) Surface(name string) (*Surface, error) {
	s, ok := c.Surfaces[name]
	if !ok {
		return nil, errorutil.NewWithTag("bundler", "unknown surface %v, expected one of %v", name, c.Names())
	}
	return s, nil
}

// GenerateSample writes the default surfaces to filePath
func GenerateSample(filePath string) error {
	bin, err := yaml.Marshal(DefaultConfig)
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, bin, 0644)
}
