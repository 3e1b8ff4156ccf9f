// Package main provides the finsum demo driver: it solves a Lasso
// instance with one of the incremental solvers and reports progress.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gopkg.in/yaml.v3"

	"github.com/finsum-ml/finsum/problems"
	"github.com/finsum-ml/finsum/solver"
)

const version = "v0.1.0-dev"

// runConfig is the YAML run description.
type runConfig struct {
	Method     string  `yaml:"method"`
	MaxIter    int     `yaml:"maxit"`
	Tolerance  float64 `yaml:"tol"`
	Gamma      float64 `yaml:"gamma"`
	Sweeping   string  `yaml:"sweeping"`
	Batch      int     `yaml:"batch"`
	LowMemory  bool    `yaml:"low_memory"`
	Adaptive   bool    `yaml:"adaptive"`
	InnerSteps int     `yaml:"inner_steps"`
	Plus       bool    `yaml:"plus"`
	Seed       int64   `yaml:"seed"`
	Plot       string  `yaml:"plot"`

	Problem struct {
		Rows   int     `yaml:"rows"`
		Dim    int     `yaml:"dim"`
		Lambda float64 `yaml:"lambda"`
		Seed   uint64  `yaml:"seed"`
	} `yaml:"problem"`
}

func defaultConfig() runConfig {
	cfg := runConfig{
		Method:   "finito",
		MaxIter:  5000,
		Sweeping: "randomized",
	}
	cfg.Problem.Rows = 200
	cfg.Problem.Dim = 50
	cfg.Problem.Lambda = 0.1
	cfg.Problem.Seed = 1
	return cfg
}

func main() {
	configPath := flag.String("config", "", "YAML run configuration")
	plotPath := flag.String("plot", "", "write an objective-vs-iteration plot to this PNG")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("finsum %s\n", version)
		return
	}

	cfg := defaultConfig()
	if *configPath != "" {
		raw, err := os.ReadFile(*configPath)
		if err != nil {
			log.Fatalf("read config: %v", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			log.Fatalf("parse config: %v", err)
		}
	}
	if *plotPath != "" {
		cfg.Plot = *plotPath
	}

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg runConfig) error {
	opts, err := options(cfg)
	if err != nil {
		return err
	}
	comps, reg := problems.Random(cfg.Problem.Seed, cfg.Problem.Rows, cfg.Problem.Dim, cfg.Problem.Lambda)
	x0 := make([]float64, cfg.Problem.Dim)

	it, err := solver.NewIterator(x0, comps, reg, opts)
	if err != nil {
		return err
	}

	log.Printf("solving lasso: rows=%d dim=%d lambda=%g method=%s sweeping=%s batch=%d",
		cfg.Problem.Rows, cfg.Problem.Dim, cfg.Problem.Lambda, opts.Method, opts.Sweeping, max(opts.Batch, 1))

	trace := make(plotter.XYs, 0, opts.MaxIterations)
	var st solver.State[float64]
	steps := 0
	for k := 0; k < opts.MaxIterations; k++ {
		st, err = it.Next()
		if err != nil {
			return err
		}
		steps++
		if cfg.Plot != "" {
			trace = append(trace, plotter.XY{
				X: float64(k + 1),
				Y: solver.Objective(comps, reg, st.Solution()),
			})
		}
		if opts.Tolerance > 0 && st.Residual() < opts.Tolerance {
			break
		}
	}

	obj := solver.Objective(comps, reg, st.Solution())
	fmt.Printf("iterations: %d\n", steps)
	fmt.Printf("epochs:     %d\n", st.Epoch())
	fmt.Printf("residual:   %.3e\n", st.Residual())
	fmt.Printf("objective:  %.9f\n", obj)

	if cfg.Plot != "" {
		if err := writePlot(cfg.Plot, trace); err != nil {
			return fmt.Errorf("write plot: %w", err)
		}
		log.Printf("convergence plot written to %s", cfg.Plot)
	}
	return nil
}

func options(cfg runConfig) (solver.Options, error) {
	opts := solver.Options{
		MaxIterations: cfg.MaxIter,
		Tolerance:     cfg.Tolerance,
		Gamma:         cfg.Gamma,
		Batch:         cfg.Batch,
		LowMemory:     cfg.LowMemory,
		Adaptive:      cfg.Adaptive,
		InnerSteps:    cfg.InnerSteps,
		Plus:          cfg.Plus,
		Seed:          cfg.Seed,
	}
	if opts.MaxIterations == 0 {
		opts.MaxIterations = 5000
	}
	switch cfg.Method {
	case "", "finito":
		opts.Method = solver.Finito
	case "saga":
		opts.Method = solver.SAGA
	case "sag":
		opts.Method = solver.SAG
	case "svrg":
		opts.Method = solver.SVRG
	default:
		return opts, fmt.Errorf("unknown method %q", cfg.Method)
	}
	switch cfg.Sweeping {
	case "", "randomized":
		opts.Sweeping = solver.Randomized
	case "cyclic":
		opts.Sweeping = solver.Cyclic
	case "shuffled":
		opts.Sweeping = solver.Shuffled
	default:
		return opts, fmt.Errorf("unknown sweeping %q", cfg.Sweeping)
	}
	return opts, nil
}

func writePlot(path string, trace plotter.XYs) error {
	p := plot.New()
	p.Title.Text = "finsum convergence"
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "objective"
	p.Y.Scale = plot.LogScale{}

	line, err := plotter.NewLine(trace)
	if err != nil {
		return err
	}
	p.Add(line)
	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
