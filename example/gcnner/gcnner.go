package main

import (
	"flag"
	"log"

	"github.com/acllite/go-acllite"
	"github.com/acllite/go-acllite/gcnner"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	modelFile := flag.String("m", "../data/gcn_ner.om", "Compiled offline model file")
	labelFile := flag.String("l", "../data/cluener_labels.txt", "Class label file")
	dataDir := flag.String("d", "../data/cluener", "Dataset directory")
	graphName := flag.String("g", "graph_0001", "Graph name to run inference on")
	nodes := flag.Int("nodes", 128, "Number of graph nodes")
	features := flag.Int("features", 300, "Feature vector length per node")
	classNum := flag.Int("classnum", 21, "Number of output classes")
	eval := flag.Bool("eval", false, "Score predictions against gold labels")
	flag.Parse()

	p, err := gcnner.NewPipeline(gcnner.InitParam{
		DeviceID:  0,
		ModelPath: *modelFile,
		LabelPath: *labelFile,
		ClassNum:  *classNum,
		Nodes:     *nodes,
		Features:  *features,
	})

	if err != nil {
		log.Fatal("Error initializing pipeline: ", err)
	}

	// optional querying of model file tensors and CANN version.  not
	// necessary for production inference code
	optionalQueries(p.Runtime())

	// run inference on a single graph
	res, err := p.Process(*dataDir, *graphName, *eval)

	if err != nil {
		log.Fatal("Pipeline processing failed with error: ", err)
	}

	log.Printf(" --- Entities in %s ---", *graphName)

	for _, entity := range res.Entities {
		log.Printf("  %s", entity.String())
	}

	log.Printf("inference took %.3f ms", res.InferCost)

	if *eval {
		s := p.Scorer()
		tp, fp, fn := s.Counts()
		log.Printf("TP=%d FP=%d FN=%d precision=%.4f recall=%.4f f1=%.4f",
			tp, fp, fn, s.Precision(), s.Recall(), s.F1())
	}

	// close pipeline and release device resources
	err = p.Close()

	if err != nil {
		log.Fatal("Error closing pipeline: ", err)
	}

	log.Println("done")
}

func optionalQueries(rt *acllite.Runtime) {

	// get CANN version
	ver, err := rt.Version()

	if err != nil {
		log.Fatal("Error querying CANN version: ", err)
	}

	log.Printf("CANN Version: %d.%d.%d, SoC: %s\n",
		ver.Major, ver.Minor, ver.Patch, ver.SocName)

	// get model input and output numbers
	num, err := rt.QueryModelIONumber()

	if err != nil {
		log.Fatal("Error querying IO Numbers: ", err)
	}

	log.Printf("Model Input Number: %d, Output Number: %d\n",
		num.NumberInput, num.NumberOutput)

	log.Println("Input tensors:")

	for _, attr := range rt.InputAttrs() {
		log.Printf("  %s\n", attr.String())
	}

	log.Println("Output tensors:")

	for _, attr := range rt.OutputAttrs() {
		log.Printf("  %s\n", attr.String())
	}
}
