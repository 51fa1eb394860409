// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command boundqbench measures the throughput of every boundq reservation
// strategy, and of a buffered channel, under timed producer/consumer runs
// or the mixed two-adds-per-take workload.
//
// Usage:
//
//	boundqbench [-capacity n] [-duration d] [-iter n] [-small] [-mixed]
//	            [-high-concurrency] [-json] [-out file] [-progress]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"code.hybscloud.com/boundq"
	"code.hybscloud.com/boundq/internal/bench"
	"code.hybscloud.com/boundq/internal/report"
	"github.com/schollz/progressbar/v3"
)

// options are the parsed command-line flags.
type options struct {
	capacity   int
	duration   time.Duration
	iterations int
	small      bool
	mixed      bool
	threads    int
	mixedOps   int
	high       bool
	jsonExport bool
	out        string
	progress   bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("boundqbench", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&o.capacity, "capacity", 1024, "Queue capacity")
	fs.DurationVar(&o.duration, "duration", time.Second, "Length of each timed run")
	fs.IntVar(&o.iterations, "iter", 3, "Number of iterations per configuration")
	fs.BoolVar(&o.small, "small", false, "Use the small ring layout")
	fs.BoolVar(&o.mixed, "mixed", false, "Run the mixed workload (two adds per take) instead of timed runs")
	fs.IntVar(&o.threads, "threads", 32, "Goroutines for the mixed workload")
	fs.IntVar(&o.mixedOps, "ops", 1000000, "Operations per goroutine for the mixed workload")
	fs.BoolVar(&o.high, "high-concurrency", false, "Include high concurrency configurations")
	fs.BoolVar(&o.jsonExport, "json", false, "Append results as JSON to -out")
	fs.StringVar(&o.out, "out", "test-results.json", "JSON results file")
	fs.BoolVar(&o.progress, "progress", false, "Display a progress bar")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.capacity < 0 || o.capacity > boundq.MaxCapacity {
		return o, fmt.Errorf("-capacity must be in [0, %d], got %d", boundq.MaxCapacity, o.capacity)
	}
	if o.iterations < 1 {
		return o, fmt.Errorf("-iter must be positive, got %d", o.iterations)
	}
	if o.duration <= 0 {
		return o, fmt.Errorf("-duration must be positive, got %v", o.duration)
	}
	if o.mixed && (o.threads < 1 || o.mixedOps < 1) {
		return o, fmt.Errorf("-threads and -ops must be positive")
	}
	return o, nil
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(os.Args[1:], os.Stdout, os.Stderr, logger); err != nil {
		logger.Error("boundqbench failed", "err", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer, logger *slog.Logger) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	sysInfo := report.GatherSystemInfo()
	logger.Info("starting",
		"cpus", sysInfo.NumCPU,
		"gomaxprocs", sysInfo.GOMAXPROCS,
		"cpu_model", sysInfo.CPUModel,
		"capacity", o.capacity,
		"small", o.small,
		"mixed", o.mixed)

	impls := implementations(o.small)
	configs := concurrencyConfigs(o.high)
	total := len(impls) * o.iterations
	if !o.mixed {
		total *= len(configs)
	}

	var bar *progressbar.ProgressBar
	if o.progress {
		bar = progressbar.Default(int64(total), "benchmarking")
	}

	var results []report.Result
	record := func(r report.Result) {
		results = append(results, r)
		fmt.Fprintf(stdout, "    %s => produced=%d, consumed=%d, throughput=%.0f msg/s, took=%s\n",
			r.Implementation, r.NumMessages, r.NumMessagesConsumed, r.Throughput, r.ActualElapsed)
		if bar != nil {
			bar.Add(1)
		}
	}

	if o.mixed {
		fmt.Fprintf(stdout, "  [Mixed: threads=%d, ops=%d]\n", o.threads, o.mixedOps)
		for iteration := 1; iteration <= o.iterations; iteration++ {
			for _, impl := range impls {
				r, err := runMixed(impl, o)
				if err != nil {
					return err
				}
				record(r)
			}
		}
	} else {
		for _, cfg := range configs {
			fmt.Fprintf(stdout, "  [Concurrency: producers=%d, consumers=%d]\n", cfg.Producers, cfg.Consumers)
			for iteration := 1; iteration <= o.iterations; iteration++ {
				for _, impl := range impls {
					r, err := runTimed(impl, cfg, o)
					if err != nil {
						return err
					}
					record(r)
				}
			}
		}
	}
	if bar != nil {
		bar.Finish()
	}

	if !o.jsonExport {
		return nil
	}
	session := report.Session{
		SessionTime: time.Now().Format(time.RFC3339),
		SystemInfo:  sysInfo,
		Benchmarks:  results,
	}
	if err := report.Append(o.out, session); err != nil {
		return fmt.Errorf("write %s: %w", o.out, err)
	}
	logger.Info("wrote results", "file", o.out, "runs", len(results))
	return nil
}

func runTimed(impl implementation, cfg bench.Config, o options) (report.Result, error) {
	q, err := impl.newQueue(o.capacity)
	if err != nil {
		return report.Result{}, fmt.Errorf("%s: %w", impl.name, err)
	}
	runtime.GC()

	ctx, cancel := context.WithTimeout(context.Background(), o.duration)
	defer cancel()
	res := bench.RunTimed(ctx, q, cfg, func(i int) *int { return &i })

	return report.Result{
		Implementation:      impl.name,
		Workload:            report.Timed,
		NumProducers:        cfg.Producers,
		NumConsumers:        cfg.Consumers,
		Capacity:            o.capacity,
		NumMessages:         res.Produced,
		NumMessagesConsumed: res.Consumed,
		TestDuration:        o.duration.String(),
		ActualElapsed:       res.Elapsed.String(),
		Throughput:          res.Throughput(),
		Timestamp:           time.Now().Unix(),
		GoVersion:           runtime.Version(),
	}, nil
}

func runMixed(impl implementation, o options) (report.Result, error) {
	q, err := impl.newQueue(o.capacity)
	if err != nil {
		return report.Result{}, fmt.Errorf("%s: %w", impl.name, err)
	}
	runtime.GC()

	one := 1
	res := bench.RunMixed(q, o.threads, o.mixedOps, &one)

	var throughput float64
	if res.Elapsed > 0 {
		throughput = float64(res.Takes) / res.Elapsed.Seconds()
	}
	return report.Result{
		Implementation:      impl.name,
		Workload:            report.Mixed,
		NumProducers:        o.threads,
		NumConsumers:        o.threads,
		Capacity:            o.capacity,
		NumMessages:         res.Adds,
		NumMessagesConsumed: res.Takes,
		NumRejected:         res.Rejected,
		ActualElapsed:       res.Elapsed.String(),
		Throughput:          throughput,
		Timestamp:           time.Now().Unix(),
		GoVersion:           runtime.Version(),
	}, nil
}
