package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/acllite/go-acllite/gcnner"
)

var evalFlags struct {
	dataDir  string
	model    string
	labels   string
	deviceID int32
	nodes    int
	features int
	classNum int
	noScore  bool
}

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Run inference over a dataset directory and report span scores",
	Long: "Runs every graph found under <dataset>/adjacency through the " +
		"model, writes predictions to <dataset>/result and scores them " +
		"against the gold labels under <dataset>/label.",
	RunE: runEval,
}

func init() {
	evalCmd.Flags().StringVarP(&evalFlags.dataDir, "dataset", "d", "data/cluener",
		"dataset directory holding adjacency/, feature/ and label/ tensor dumps")
	evalCmd.Flags().StringVarP(&evalFlags.model, "model", "m", "data/gcn_ner.om",
		"compiled offline model file")
	evalCmd.Flags().StringVarP(&evalFlags.labels, "labels", "l",
		"data/cluener_labels.txt", "class label file, one BIO label per line")
	evalCmd.Flags().Int32Var(&evalFlags.deviceID, "device", 0, "NPU device id")
	evalCmd.Flags().IntVar(&evalFlags.nodes, "nodes", 128,
		"number of graph nodes per input")
	evalCmd.Flags().IntVar(&evalFlags.features, "features", 300,
		"feature vector length per node")
	evalCmd.Flags().IntVar(&evalFlags.classNum, "classnum", 21,
		"number of output classes")
	evalCmd.Flags().BoolVar(&evalFlags.noScore, "no-score", false,
		"skip gold label scoring, only write predictions")
}

func runEval(cmd *cobra.Command, args []string) error {

	p, err := gcnner.NewPipeline(gcnner.InitParam{
		DeviceID:  evalFlags.deviceID,
		ModelPath: evalFlags.model,
		LabelPath: evalFlags.labels,
		ClassNum:  evalFlags.classNum,
		Nodes:     evalFlags.nodes,
		Features:  evalFlags.features,
	})

	if err != nil {
		return err
	}

	defer p.Close()

	names, err := datasetGraphs(evalFlags.dataDir)

	if err != nil {
		return err
	}

	if len(names) == 0 {
		return fmt.Errorf("no tensor dumps found under %s",
			filepath.Join(evalFlags.dataDir, gcnner.AdjacencyDir))
	}

	for _, name := range names {
		res, err := p.Process(evalFlags.dataDir, name, !evalFlags.noScore)

		if err != nil {
			return fmt.Errorf("graph %s: %w", name, err)
		}

		fmt.Printf("%s: %d entities, infer %.3f ms\n",
			name, len(res.Entities), res.InferCost)
	}

	cost := p.Cost()
	fmt.Printf("\nprocessed %d graphs, avg infer %.3f ms, total %.3f ms\n",
		cost.Count(), cost.Mean(), cost.Total())

	if !evalFlags.noScore {
		s := p.Scorer()
		tp, fp, fn := s.Counts()

		fmt.Printf("TP=%d FP=%d FN=%d\n", tp, fp, fn)
		fmt.Printf("precision=%.4f recall=%.4f f1=%.4f\n",
			s.Precision(), s.Recall(), s.F1())
	}

	return nil
}

// datasetGraphs lists the graph names in the dataset, taken from the .bin
// files in the adjacency directory
func datasetGraphs(dataDir string) ([]string, error) {

	entries, err := os.ReadDir(filepath.Join(dataDir, gcnner.AdjacencyDir))

	if err != nil {
		return nil, fmt.Errorf("error reading dataset directory: %w", err)
	}

	var names []string

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".bin") {
			continue
		}

		names = append(names, strings.TrimSuffix(e.Name(), ".bin"))
	}

	sort.Strings(names)

	return names, nil
}
