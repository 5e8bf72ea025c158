package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/m0hashi/citrees/forest"
)

type fitCmdConfig struct {
	*rootCmdConfig
	dataInput    string
	predictInput string
	output       string
	paramsFile   string
	params       fitParams
}

func fitCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &fitCmdConfig{rootCmdConfig: rootConfig, params: defaultFitParams()}
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Train a conditional inference forest from a set of data",
		Long:  `Train a conditional inference forest from a CSV of data, report its accuracy and feature importances, and optionally classify another CSV of samples.`,
		Run: func(cmd *cobra.Command, args []string) {
			if err := config.resolveParams(cmd); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			X, y, features, err := config.trainingData()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			opts := append(config.params.options(), forest.Verbose(config.logger()))
			if config.params.Bootstrap {
				opts = append(opts, forest.ComputeOOB())
			}
			clf, err := forest.NewClassifier(opts...)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			XTrain, yTrain, XTest, yTest := holdoutSplit(X, y, config.params.Holdout, config.params.Seed)
			n, _ := XTrain.Dims()
			config.Logf("Growing a forest of %d trees from %d samples with %d features ...", config.params.Trees, n, len(features))
			if err := clf.Fit(XTrain, yTrain); err != nil {
				fmt.Fprintf(os.Stderr, "growing the forest: %v\n", err)
				os.Exit(4)
			}
			config.Logf("Done")
			reportFit(clf, XTest, yTest, features)
			if config.predictInput != "" {
				if err := config.predictTo(clf, len(features)); err != nil {
					fmt.Fprintln(os.Stderr, err)
					os.Exit(5)
				}
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to an input CSV file with training data, last column holding the class label (defaults to STDIN)")
	cmd.PersistentFlags().StringVarP(&(config.predictInput), "predict", "p", "", "path to a CSV file with unlabeled samples to classify after training")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "", "path to a file to which predicted labels will be written in CSV format (defaults to STDOUT)")
	cmd.PersistentFlags().StringVarP(&(config.paramsFile), "config", "c", "", "path to a YAML file with hyperparameters; explicitly-set flags take precedence")
	cmd.PersistentFlags().IntVar(&(config.params.Trees), "trees", config.params.Trees, "number of trees in the forest")
	cmd.PersistentFlags().Float64Var(&(config.params.Alpha), "alpha", config.params.Alpha, "p-value threshold for accepting a split, in (0, 1]")
	cmd.PersistentFlags().IntVar(&(config.params.MinSamplesSplit), "min-samples-split", config.params.MinSamplesSplit, "minimum node size considered for splitting")
	cmd.PersistentFlags().IntVar(&(config.params.MaxDepth), "max-depth", config.params.MaxDepth, "maximum tree depth, -1 for unbounded")
	cmd.PersistentFlags().StringVar(&(config.params.MaxFeatures), "max-features", config.params.MaxFeatures, "columns examined per split: sqrt, log, all, or a count")
	cmd.PersistentFlags().IntVar(&(config.params.Permutations), "permutations", config.params.Permutations, "number of trials per permutation test")
	cmd.PersistentFlags().StringVar(&(config.params.Selector), "selector", config.params.Selector, "correlation regime for feature selection: pearson, distance or hybrid")
	cmd.PersistentFlags().BoolVar(&(config.params.EarlyStopping), "early-stopping", config.params.EarlyStopping, "accept the first column testing significant instead of examining all candidates")
	cmd.PersistentFlags().BoolVar(&(config.params.Bootstrap), "bootstrap", config.params.Bootstrap, "train every tree on its own bootstrap sample")
	cmd.PersistentFlags().BoolVar(&(config.params.Bayes), "bayes", config.params.Bayes, "use Bayesian-bootstrap sampling weights")
	cmd.PersistentFlags().StringVar(&(config.params.ClassWeight), "class-weight", config.params.ClassWeight, "bootstrap policy: balanced, stratify, or empty for plain sampling")
	cmd.PersistentFlags().IntVar(&(config.params.Workers), "workers", config.params.Workers, "limit to trees fitted concurrently (defaults to -1: one per CPU)")
	cmd.PersistentFlags().Uint64Var(&(config.params.Seed), "seed", config.params.Seed, "random state; identical seeds reproduce identical forests")
	cmd.PersistentFlags().Float64Var(&(config.params.Holdout), "holdout", config.params.Holdout, "fraction of samples held out for accuracy evaluation")
	return cmd
}

/*
resolveParams merges the three parameter sources: defaults, the YAML
configuration file, and command-line flags. Flags the user set explicitly
win over the file, which wins over the defaults.
*/
func (fcc *fitCmdConfig) resolveParams(cmd *cobra.Command) error {
	if fcc.paramsFile == "" {
		return nil
	}
	fromFlags := fcc.params
	fcc.params = defaultFitParams()
	if err := fcc.params.loadInto(fcc.paramsFile); err != nil {
		return err
	}
	flags := cmd.PersistentFlags()
	if flags.Changed("trees") {
		fcc.params.Trees = fromFlags.Trees
	}
	if flags.Changed("alpha") {
		fcc.params.Alpha = fromFlags.Alpha
	}
	if flags.Changed("min-samples-split") {
		fcc.params.MinSamplesSplit = fromFlags.MinSamplesSplit
	}
	if flags.Changed("max-depth") {
		fcc.params.MaxDepth = fromFlags.MaxDepth
	}
	if flags.Changed("max-features") {
		fcc.params.MaxFeatures = fromFlags.MaxFeatures
	}
	if flags.Changed("permutations") {
		fcc.params.Permutations = fromFlags.Permutations
	}
	if flags.Changed("selector") {
		fcc.params.Selector = fromFlags.Selector
	}
	if flags.Changed("early-stopping") {
		fcc.params.EarlyStopping = fromFlags.EarlyStopping
	}
	if flags.Changed("bootstrap") {
		fcc.params.Bootstrap = fromFlags.Bootstrap
	}
	if flags.Changed("bayes") {
		fcc.params.Bayes = fromFlags.Bayes
	}
	if flags.Changed("class-weight") {
		fcc.params.ClassWeight = fromFlags.ClassWeight
	}
	if flags.Changed("workers") {
		fcc.params.Workers = fromFlags.Workers
	}
	if flags.Changed("seed") {
		fcc.params.Seed = fromFlags.Seed
	}
	if flags.Changed("holdout") {
		fcc.params.Holdout = fromFlags.Holdout
	}
	return nil
}

func (fcc *fitCmdConfig) trainingData() (*mat.Dense, []int, []string, error) {
	var reader io.Reader = os.Stdin
	if fcc.dataInput != "" {
		f, err := os.Open(fcc.dataInput)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("opening input file: %v", err)
		}
		defer f.Close()
		reader = f
	}
	return readLabeledCSV(reader)
}

func (fcc *fitCmdConfig) predictTo(clf *forest.Classifier, p int) error {
	f, err := os.Open(fcc.predictInput)
	if err != nil {
		return fmt.Errorf("opening prediction file: %v", err)
	}
	defer f.Close()
	X, err := readUnlabeledCSV(f, p)
	if err != nil {
		return err
	}
	labels, err := clf.Predict(X)
	if err != nil {
		return fmt.Errorf("classifying samples: %v", err)
	}
	var out io.Writer = os.Stdout
	if fcc.output != "" {
		of, err := os.Create(fcc.output)
		if err != nil {
			return fmt.Errorf("creating output file: %v", err)
		}
		defer of.Close()
		out = of
	}
	fmt.Fprintln(out, "label")
	for _, label := range labels {
		fmt.Fprintln(out, label)
	}
	return nil
}

/*
holdoutSplit shuffles the rows deterministically under the given seed and
splits off the requested fraction for evaluation. A fraction of 0 (or one
that would leave the training part empty) keeps everything for training
and evaluates on it.
*/
func holdoutSplit(X *mat.Dense, y []int, fraction float64, seed uint64) (*mat.Dense, []int, *mat.Dense, []int) {
	n, p := X.Dims()
	nTest := int(fraction * float64(n))
	if nTest <= 0 || nTest >= n {
		return X, y, X, y
	}
	order := rand.New(rand.NewSource(seed)).Perm(n)
	take := func(idx []int) (*mat.Dense, []int) {
		data := make([]float64, 0, len(idx)*p)
		labels := make([]int, len(idx))
		for j, i := range idx {
			data = append(data, X.RawRowView(i)...)
			labels[j] = y[i]
		}
		return mat.NewDense(len(idx), p, data), labels
	}
	XTest, yTest := take(order[:nTest])
	XTrain, yTrain := take(order[nTest:])
	return XTrain, yTrain, XTest, yTest
}

func reportFit(clf *forest.Classifier, XTest *mat.Dense, yTest []int, features []string) {
	predicted, err := clf.Predict(XTest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "evaluating the forest: %v\n", err)
		os.Exit(4)
	}
	correct := 0
	for i, label := range predicted {
		if label == yTest[i] {
			correct++
		}
	}
	fmt.Printf("accuracy: %.4f\n", float64(correct)/float64(len(yTest)))
	if clf.OOBScore > 0 {
		fmt.Printf("out-of-bag accuracy: %.4f\n", clf.OOBScore)
	}
	fmt.Println("feature importances:")
	for i, name := range features {
		fmt.Printf("  %s: %.4f\n", name, clf.FeatureImportances[i])
	}
}
