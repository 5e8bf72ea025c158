package tree

import (
	"fmt"
	"math"
	"strconv"

	"github.com/m0hashi/citrees"
)

// Selector kinds for feature selection.
const (
	// SelectorPearson runs permutation tests on the Pearson correlation.
	SelectorPearson = "pearson"
	// SelectorDistance runs permutation tests on the distance correlation.
	SelectorDistance = "distance"
	// SelectorHybrid measures both correlations per column and tests
	// whichever is larger in magnitude.
	SelectorHybrid = "hybrid"
)

// Symbolic policies for the number of columns examined per split.
const (
	// MaxFeaturesSqrt examines floor(sqrt(p)) columns.
	MaxFeaturesSqrt = "sqrt"
	// MaxFeaturesLog examines floor(ln(p+1)) columns.
	MaxFeaturesLog = "log"
	// MaxFeaturesAll examines every column.
	MaxFeaturesAll = "all"
)

type config struct {
	alpha           float64
	minSamplesSplit int
	maxDepth        int
	maxFeatures     string
	permutations    int
	selector        string
	earlyStopping   bool
	workers         int
	seed            uint64
	logger          citrees.Logger
}

// Option configures a Classifier passed to NewClassifier.
type Option func(*config)

// Alpha sets the p-value threshold for accepting a split. Must lie in
// (0, 1]; smaller values produce shallower trees.
func Alpha(a float64) Option {
	return func(c *config) {
		c.alpha = a
	}
}

// MinSamplesSplit sets the minimum number of samples a node must hold to
// be considered for splitting. Values below 1 are raised to 1.
func MinSamplesSplit(n int) Option {
	return func(c *config) {
		c.minSamplesSplit = n
	}
}

// MaxDepth limits the depth of the fitted tree. Specifying -1 for n will
// grow a full tree, subject to the MinSamplesSplit and Alpha constraints.
func MaxDepth(n int) Option {
	return func(c *config) {
		c.maxDepth = n
	}
}

// MaxFeatures sets the number of columns examined per split: "sqrt",
// "log", "all", or the decimal representation of an explicit count.
func MaxFeatures(policy string) Option {
	return func(c *config) {
		c.maxFeatures = policy
	}
}

// Permutations sets the number of shuffling trials per permutation test.
// With 0 trials every test returns a p-value of 1 and the tree degenerates
// to a single leaf.
func Permutations(n int) Option {
	return func(c *config) {
		c.permutations = n
	}
}

// Selector sets the correlation regime for feature selection: pearson,
// distance or hybrid.
func Selector(kind string) Option {
	return func(c *config) {
		c.selector = kind
	}
}

// EarlyStopping makes the feature selector return the first column whose
// p-value drops below alpha instead of examining every candidate. The
// selected column may then be a locally-best rather than globally-best
// choice.
func EarlyStopping(on bool) Option {
	return func(c *config) {
		c.earlyStopping = on
	}
}

// Workers sets the number of goroutines used by the parallel distance
// correlation permutation test on large samples. Values below 1 mean one
// goroutine per CPU.
func Workers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

// Seed sets the random state. The seed is the single source of
// randomness: trees fitted with the same seed on the same data are
// identical.
func Seed(s uint64) Option {
	return func(c *config) {
		c.seed = s
	}
}

// Verbose installs a logger for training and prediction progress
// messages.
func Verbose(l citrees.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func defaultConfig() config {
	return config{
		alpha:           0.05,
		minSamplesSplit: 2,
		maxDepth:        -1,
		maxFeatures:     MaxFeaturesAll,
		permutations:    100,
		selector:        SelectorPearson,
		workers:         1,
		seed:            1,
		logger:          citrees.NopLogger{},
	}
}

func (c *config) validate() error {
	if c.alpha <= 0 || c.alpha > 1 {
		return fmt.Errorf("alpha (%.2f) should be in (0, 1]", c.alpha)
	}
	if c.permutations < 0 {
		return fmt.Errorf("permutations (%d) should be >= 0", c.permutations)
	}
	switch c.selector {
	case SelectorPearson, SelectorDistance, SelectorHybrid:
	default:
		return fmt.Errorf("selector (%s) should be %s, %s or %s", c.selector, SelectorPearson, SelectorDistance, SelectorHybrid)
	}
	switch c.maxFeatures {
	case MaxFeaturesSqrt, MaxFeaturesLog, MaxFeaturesAll:
	default:
		n, err := strconv.Atoi(c.maxFeatures)
		if err != nil || n < 1 {
			return fmt.Errorf("%q is not a valid argument for max features", c.maxFeatures)
		}
	}
	if c.minSamplesSplit < 1 {
		c.minSamplesSplit = 1
	}
	return nil
}

// resolveMaxFeatures turns the symbolic policy into a concrete column
// count for a p-column matrix. Resolved once at the start of every fit.
func (c *config) resolveMaxFeatures(p int) int {
	switch c.maxFeatures {
	case MaxFeaturesSqrt:
		return int(math.Sqrt(float64(p)))
	case MaxFeaturesLog:
		return int(math.Log(float64(p + 1)))
	case MaxFeaturesAll, "":
		return p
	default:
		n, _ := strconv.Atoi(c.maxFeatures)
		if n > p {
			n = p
		}
		return n
	}
}
