package main

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"

	"github.com/m0hashi/citrees/forest"
)

/*
fitParams holds every forest hyperparameter the fit command accepts. The
values can come from a YAML configuration file, from command-line flags,
or both; explicitly-set flags take precedence over the file.
*/
type fitParams struct {
	Trees           int     `yaml:"trees"`
	Alpha           float64 `yaml:"alpha"`
	MinSamplesSplit int     `yaml:"min_samples_split"`
	MaxDepth        int     `yaml:"max_depth"`
	MaxFeatures     string  `yaml:"max_features"`
	Permutations    int     `yaml:"permutations"`
	Selector        string  `yaml:"selector"`
	EarlyStopping   bool    `yaml:"early_stopping"`
	Bootstrap       bool    `yaml:"bootstrap"`
	Bayes           bool    `yaml:"bayes"`
	ClassWeight     string  `yaml:"class_weight"`
	Workers         int     `yaml:"workers"`
	Seed            uint64  `yaml:"seed"`
	Holdout         float64 `yaml:"holdout"`
}

func defaultFitParams() fitParams {
	return fitParams{
		Trees:           100,
		Alpha:           0.05,
		MinSamplesSplit: 2,
		MaxDepth:        -1,
		MaxFeatures:     "sqrt",
		Permutations:    200,
		Selector:        "pearson",
		Bootstrap:       true,
		Bayes:           true,
		ClassWeight:     "balanced",
		Workers:         -1,
		Seed:            1,
		Holdout:         0.2,
	}
}

// loadInto overwrites p with the values declared in the YAML file at
// path. Fields absent from the file keep their current values.
func (p *fitParams) loadInto(path string) error {
	md, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading configuration file: %v", err)
	}
	if err := yaml.Unmarshal(md, p); err != nil {
		return fmt.Errorf("parsing configuration file %s: %v", path, err)
	}
	return nil
}

// options translates the parameters into forest classifier options.
func (p *fitParams) options() []forest.Option {
	return []forest.Option{
		forest.Trees(p.Trees),
		forest.Alpha(p.Alpha),
		forest.MinSamplesSplit(p.MinSamplesSplit),
		forest.MaxDepth(p.MaxDepth),
		forest.MaxFeatures(p.MaxFeatures),
		forest.Permutations(p.Permutations),
		forest.Selector(p.Selector),
		forest.EarlyStopping(p.EarlyStopping),
		forest.Bootstrap(p.Bootstrap),
		forest.Bayes(p.Bayes),
		forest.ClassWeight(p.ClassWeight),
		forest.Workers(p.Workers),
		forest.Seed(p.Seed),
	}
}
