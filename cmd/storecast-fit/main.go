// Command storecast-fit builds the fitted feature state artifact from a
// historical corpus and a YAML fit plan
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"storecast/internal/adapters/dataset"
	"storecast/internal/core/featurestate"
	"storecast/internal/core/fit"
	"storecast/internal/core/pipeline"
	"storecast/internal/platform/blob"
)

// plan is the YAML fit plan. Paths are relative to the working directory;
// out accepts the same URIs the blob store does, with .sz for snappy
type plan struct {
	Train     string    `yaml:"train"`
	Store     string    `yaml:"store"`
	Out       string    `yaml:"out"`
	Selected  []string  `yaml:"selected"`
	TrainedAt time.Time `yaml:"trained_at"`

	S3 struct {
		Region    string `yaml:"region"`
		Endpoint  string `yaml:"endpoint"`
		PathStyle bool   `yaml:"path_style"`
	} `yaml:"s3"`
}

func must(err error) {
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func readPlan(path string) (plan, error) {
	var p plan
	b, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	if err := yaml.Unmarshal(b, &p); err != nil {
		return p, fmt.Errorf("decode %s: %w", path, err)
	}
	return p, nil
}

func main() {
	var (
		planPath = flag.String("plan", "fit.yaml", "path to the YAML fit plan")
		train    = flag.String("train", "", "training corpus csv, overrides the plan")
		store    = flag.String("store", "", "store metadata csv, overrides the plan")
		out      = flag.String("out", "", "artifact URI or '-' for stdout, overrides the plan")
		pretty   = flag.Bool("pretty", true, "pretty-print the artifact JSON")
	)
	flag.Parse()

	p, err := readPlan(*planPath)
	must(err)
	if *train != "" {
		p.Train = *train
	}
	if *store != "" {
		p.Store = *store
	}
	if *out != "" {
		p.Out = *out
	}
	if p.Train == "" || p.Store == "" {
		must(fmt.Errorf("plan %s needs train and store csv paths", *planPath))
	}
	if p.Out == "" {
		p.Out = "feature_state.json"
	}

	rows, err := dataset.ReadMerged(p.Train, p.Store)
	must(err)

	doc, err := fit.Fit(rows, fit.Options{
		TrainedAt: p.TrainedAt,
		Selected:  p.Selected,
	})
	must(err)

	var enc []byte
	if *pretty {
		enc, err = json.MarshalIndent(doc, "", "  ")
	} else {
		enc, err = json.Marshal(doc)
	}
	must(err)

	if p.Out == "-" {
		_, err = os.Stdout.Write(append(enc, '\n'))
		must(err)
		summary(rows, doc, p.Out, len(enc))
		return
	}

	var opts []blob.Option
	if p.S3.Region != "" {
		opts = append(opts, blob.WithRegion(p.S3.Region))
	}
	if p.S3.Endpoint != "" {
		opts = append(opts, blob.WithEndpoint(p.S3.Endpoint, p.S3.PathStyle))
	}
	must(blob.Write(context.Background(), p.Out, enc, opts...))
	summary(rows, doc, p.Out, len(enc))
}

// summary prints what the fit measured, one line per statistic
func summary(rows []pipeline.Row, doc *featurestate.Document, out string, size int) {
	fmt.Printf("read    %d rows\n", len(rows))
	if kept, ok := doc.Meta["rows"]; ok {
		fmt.Printf("kept    %v open rows with sales across %v stores (%v .. %v)\n",
			kept, doc.Meta["stores"], doc.Meta["from"], doc.Meta["to"])
	}
	for _, sc := range doc.Scalers {
		switch sc.Kind {
		case "robust":
			fmt.Printf("scaler  %-28s robust  median=%.4f iqr=%.4f\n", sc.Column, sc.Median, sc.IQR)
		case "minmax":
			fmt.Printf("scaler  %-28s minmax  min=%.4f max=%.4f\n", sc.Column, sc.Min, sc.Max)
		}
	}
	for field, vocab := range doc.Vocabs {
		fmt.Printf("vocab   %-28s %d categories\n", field, len(vocab))
	}
	for field, cats := range doc.Indicators {
		fmt.Printf("universe %-27s %v\n", field, cats)
	}
	fmt.Printf("select  %d features\n", len(doc.Selected))
	fmt.Printf("wrote   %s (%d bytes, trained_at %s)\n",
		out, size, doc.TrainedAt.UTC().Format(time.RFC3339))
}
