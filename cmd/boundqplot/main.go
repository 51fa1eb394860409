// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command boundqplot renders boundqbench JSON reports as bar charts of the
// median throughput of each implementation, one chart per workload layout.
//
// Usage:
//
//	boundqplot [-jsonfile file] [-out prefix] [-markdown]
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"code.hybscloud.com/boundq/internal/report"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(os.Args[1:], os.Stdout, os.Stderr, logger); err != nil {
		logger.Error("boundqplot failed", "err", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer, logger *slog.Logger) error {
	fs := flag.NewFlagSet("boundqplot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	jsonFile := fs.String("jsonfile", "test-results.json", "Path to JSON file containing test sessions")
	outPrefix := fs.String("out", "boundq_throughput", "Output graph image filename prefix")
	markdown := fs.Bool("markdown", false, "Print a markdown table of median throughput instead of drawing")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sessions, err := report.Load(*jsonFile)
	if err != nil {
		return err
	}
	groups := summarize(sessions)
	if len(groups) == 0 {
		return errors.New("no benchmark results in " + *jsonFile)
	}

	labels := make([]string, 0, len(groups))
	for label := range groups {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	if *markdown {
		writeMarkdown(stdout, labels, groups)
		return nil
	}

	for _, label := range labels {
		names, values := medians(groups[label])
		p, err := buildChart(label, names, values)
		if err != nil {
			return fmt.Errorf("%s: %w", label, err)
		}
		filename := fmt.Sprintf("%s_%s.png", *outPrefix, label)
		width := vg.Length(max(6, 1.5*float64(len(names)))) * vg.Inch
		if err := p.Save(width, 6*vg.Inch, filename); err != nil {
			return fmt.Errorf("save %s: %w", filename, err)
		}
		logger.Info("saved graph", "workload", label, "file", filepath.Clean(filename), "implementations", len(names))
	}
	return nil
}

// groupLabel names the workload layout of r, e.g. "p2c2" or "mixed_t32".
func groupLabel(r report.Result) string {
	if r.Workload == report.Mixed {
		return fmt.Sprintf("mixed_t%d", r.NumProducers)
	}
	return fmt.Sprintf("p%dc%d", r.NumProducers, r.NumConsumers)
}

// summarize groups throughputs by layout label and implementation. Runs
// that moved no items are skipped.
func summarize(sessions []report.Session) map[string]map[string][]float64 {
	groups := make(map[string]map[string][]float64)
	for _, s := range sessions {
		for _, r := range s.Benchmarks {
			if r.NumMessagesConsumed == 0 || r.Throughput <= 0 {
				continue
			}
			label := groupLabel(r)
			if groups[label] == nil {
				groups[label] = make(map[string][]float64)
			}
			groups[label][r.Implementation] = append(groups[label][r.Implementation], r.Throughput)
		}
	}
	return groups
}

// medians returns implementation names in alphabetical order with the
// median throughput of each.
func medians(byImpl map[string][]float64) ([]string, plotter.Values) {
	names := make([]string, 0, len(byImpl))
	for name := range byImpl {
		names = append(names, name)
	}
	sort.Strings(names)

	values := make(plotter.Values, len(names))
	for i, name := range names {
		vals := append([]float64(nil), byImpl[name]...)
		sort.Float64s(vals)
		values[i] = median(vals)
	}
	return names, values
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	mid := n / 2
	if n%2 == 1 {
		return sorted[mid]
	}
	return 0.5 * (sorted[mid-1] + sorted[mid])
}

func buildChart(label string, names []string, values plotter.Values) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Median throughput, " + label
	p.Y.Label.Text = "msgs/sec"
	p.Add(plotter.NewGrid())

	bars, err := plotter.NewBarChart(values, vg.Points(30))
	if err != nil {
		return nil, err
	}
	bars.Color = plotutil.SoftColors[0]
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(names...)
	return p, nil
}

func writeMarkdown(w io.Writer, labels []string, groups map[string]map[string][]float64) {
	fmt.Fprintln(w, "| Workload     | Implementation               | Runs | Median (msgs/sec) |")
	fmt.Fprintln(w, "|--------------|------------------------------|------|-------------------|")
	for _, label := range labels {
		names, values := medians(groups[label])
		for i, name := range names {
			fmt.Fprintf(w, "| %-12s | %-28s | %4d | %17.0f |\n",
				label, name, len(groups[label][name]), values[i])
		}
	}
}
