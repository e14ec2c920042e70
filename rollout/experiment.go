package rollout

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strconv"

	"github.com/zeu5/leanrl/env"
	"github.com/zeu5/leanrl/util"
	"golang.org/x/sync/errgroup"
)

type experimentRunConfig struct {
	CurrentRun int
	Episodes   int
	Horizon    int
	Context    context.Context

	// thresholds to abort the experiment
	ConsecutiveErrorsAbort int

	RecordTraces   bool
	ReportSavePath string
	// no progress line, set when experiments run in parallel
	Quiet bool

	LongestExpNameLen int
}

// Experiment pairs an environment with the plant it controls
type Experiment struct {
	Name  string
	env   *env.Env4x2
	plant Plant
}

func NewExperiment(name string, environment *env.Env4x2, plant Plant) *Experiment {
	return &Experiment{
		Name:  name,
		env:   environment,
		plant: plant,
	}
}

func (e *Experiment) recordTrace(rConfig *experimentRunConfig, trace *Trace) error {
	tracesFile := path.Join(rConfig.ReportSavePath, "traces", e.Name+"_"+strconv.Itoa(rConfig.CurrentRun)+".jsonl")
	bs, err := json.Marshal(trace)
	if err != nil {
		return err
	}
	return util.AppendToFile(tracesFile, string(bs))
}

// Run the experiment for the configured episodes on a clone of the environment,
// so every run starts from the same counters. Returns the traces of the episodes
// that started.
func (e *Experiment) Run(rConfig *experimentRunConfig) ([]*Trace, error) {
	traces := make([]*Trace, 0, rConfig.Episodes)
	agent := NewAgent(&AgentConfig{
		Episodes: rConfig.Episodes,
		Horizon:  rConfig.Horizon,
		Env:      e.env.Clone(),
		Plant:    e.plant,
	})

	totalWithError := 0
	consecutiveErrors := 0
	totalViolations := 0
	executedTimesteps := 0

	for episode := 0; episode < rConfig.Episodes; episode++ {
		select {
		case <-rConfig.Context.Done():
			return traces, rConfig.Context.Err()
		default:
		}

		trace, err := agent.RunEpisode(rConfig.Context, episode)
		traces = append(traces, trace)
		executedTimesteps += trace.Len()
		totalViolations += trace.Violations()

		if err != nil {
			totalWithError++
			consecutiveErrors++
		} else {
			consecutiveErrors = 0
		}

		if rConfig.RecordTraces {
			if err := e.recordTrace(rConfig, trace); err != nil {
				return traces, fmt.Errorf("recording trace of %s: %w", e.Name, err)
			}
		}

		if !rConfig.Quiet {
			fmt.Printf("\rExp:%*s, Eps:%*d/%d, TSteps:%7d, Err:%4d, Violations:%6d",
				rConfig.LongestExpNameLen, e.Name, len(strconv.Itoa(rConfig.Episodes)), episode+1, rConfig.Episodes,
				executedTimesteps, totalWithError, totalViolations)
		}

		if rConfig.ConsecutiveErrorsAbort > 0 && consecutiveErrors >= rConfig.ConsecutiveErrorsAbort {
			if !rConfig.Quiet {
				fmt.Println("")
			}
			return traces, fmt.Errorf("aborting experiment %s: %d consecutive errors: %w", e.Name, consecutiveErrors, err)
		}
	}
	if !rConfig.Quiet {
		fmt.Println("")
	}
	return traces, nil
}

// Generic Dataset that contains information after processing the traces
type DataSet interface{}

// Analyzer compresses the traces of one experiment run to a DataSet
// run, experiment name, traces
type Analyzer func(int, string, []*Trace) DataSet

// Comparator differentiates between different datasets with associated names
// run, experiment names, datasets
type Comparator func(int, []string, []DataSet)

func NoopComparator() Comparator {
	return func(int, []string, []DataSet) {}
}

// ComparisonConfig contains the configuration for the comparison
type ComparisonConfig struct {
	Runs     int // number of runs
	Episodes int // number of episodes
	Horizon  int // number of steps

	RecordPath   string // path to store the results
	RecordTraces bool
	// run the experiments of a run concurrently, experiments must not share a plant
	Parallel bool
	// 0 disables the abort
	ConsecutiveErrorsAbort int
}

func (c *ComparisonConfig) Printable() map[string]interface{} {
	out := make(map[string]interface{})
	out["runs"] = c.Runs
	out["episodes"] = c.Episodes
	out["horizon"] = c.Horizon
	out["record_traces"] = c.RecordTraces
	out["parallel"] = c.Parallel
	out["consecutive_errors_abort"] = c.ConsecutiveErrorsAbort
	return out
}

// Comparison contains the different experiments to compare
// The traces obtained from the experiments are analyzed
// The analyzed datasets are then compared
type Comparison struct {
	Experiments []*Experiment
	analyzers   map[string]Analyzer
	comparators map[string]Comparator
	cConfig     *ComparisonConfig
}

// NewComparison creates a comparison instance, clearing the record path
func NewComparison(config *ComparisonConfig) (*Comparison, error) {
	if _, err := os.Stat(config.RecordPath); err == nil {
		if err := RemoveContents(config.RecordPath); err != nil {
			return nil, err
		}
	}
	folders := []string{config.RecordPath}
	if config.RecordTraces {
		folders = append(folders, path.Join(config.RecordPath, "traces"))
	}
	for _, f := range folders {
		if err := os.MkdirAll(f, 0777); err != nil {
			return nil, err
		}
	}

	return &Comparison{
		Experiments: make([]*Experiment, 0),
		analyzers:   make(map[string]Analyzer),
		comparators: make(map[string]Comparator),
		cConfig:     config,
	}, nil
}

// AddAnalysis adds an analyzer and comparator to the comparison
func (c *Comparison) AddAnalysis(name string, analyzer Analyzer, comparator Comparator) {
	c.analyzers[name] = analyzer
	c.comparators[name] = comparator
}

func (c *Comparison) AddExperiment(e *Experiment) {
	c.Experiments = append(c.Experiments, e)
}

// record the configuration of the comparison
func (c *Comparison) recordConfig() error {
	out := c.cConfig.Printable()
	experiments := make([]string, 0)
	for _, e := range c.Experiments {
		experiments = append(experiments, e.Name)
	}
	out["experiments"] = experiments
	analyzers := make([]string, 0)
	for name := range c.analyzers {
		analyzers = append(analyzers, name)
	}
	out["analyzers"] = analyzers

	bs, err := json.Marshal(out)
	if err != nil {
		return err
	}
	return os.WriteFile(path.Join(c.cConfig.RecordPath, "comparison_config.json"), bs, 0644)
}

// Run the comparison
func (c *Comparison) Run(ctx context.Context) error {
	if err := c.recordConfig(); err != nil {
		return err
	}

	longestNameLen := 0
	names := make([]string, len(c.Experiments))
	for i, e := range c.Experiments {
		names[i] = e.Name
		if len(e.Name) > longestNameLen {
			longestNameLen = len(e.Name)
		}
	}

	for run := 0; run < c.cConfig.Runs; run++ {
		fmt.Printf("Run %d\n", run+1)
		traces := make([][]*Trace, len(c.Experiments))

		if c.cConfig.Parallel {
			g, gCtx := errgroup.WithContext(ctx)
			for i, e := range c.Experiments {
				rConfig := c.prepareRunConfig(gCtx, run, longestNameLen)
				rConfig.Quiet = true
				g.Go(func() error {
					t, err := e.Run(rConfig)
					traces[i] = t
					return err
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
		} else {
			for i, e := range c.Experiments {
				t, err := e.Run(c.prepareRunConfig(ctx, run, longestNameLen))
				traces[i] = t
				if err != nil {
					return err
				}
			}
		}

		for name, a := range c.analyzers {
			datasets := make([]DataSet, len(c.Experiments))
			for i := range c.Experiments {
				datasets[i] = a(run, names[i], traces[i])
			}
			c.comparators[name](run, names, datasets)
		}
	}
	return nil
}

func (c *Comparison) prepareRunConfig(ctx context.Context, run, longestExpNameLen int) *experimentRunConfig {
	return &experimentRunConfig{
		CurrentRun:             run,
		Episodes:               c.cConfig.Episodes,
		Horizon:                c.cConfig.Horizon,
		Context:                ctx,
		ConsecutiveErrorsAbort: c.cConfig.ConsecutiveErrorsAbort,
		RecordTraces:           c.cConfig.RecordTraces,
		ReportSavePath:         c.cConfig.RecordPath,
		LongestExpNameLen:      longestExpNameLen,
	}
}

// RemoveContents deletes everything in the directory
func RemoveContents(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	names, err := d.Readdirnames(-1)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := os.RemoveAll(path.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}
