package rollout

import (
	"fmt"
	"os"
	"path"
	"strconv"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// ReturnAnalyzer collects the return of every episode
func ReturnAnalyzer() Analyzer {
	return func(_ int, _ string, traces []*Trace) DataSet {
		returns := make([]float64, len(traces))
		for i, t := range traces {
			returns[i] = t.Return()
		}
		return returns
	}
}

// ViolationAnalyzer counts invariant violations cumulatively over episodes
func ViolationAnalyzer() Analyzer {
	return func(_ int, _ string, traces []*Trace) DataSet {
		cumulative := make([]int, len(traces))
		total := 0
		for i, t := range traces {
			total += t.Violations()
			cumulative[i] = total
		}
		return cumulative
	}
}

func ensureDir(p string) {
	if _, err := os.Stat(p); err != nil {
		os.MkdirAll(p, os.ModePerm)
	}
}

func linePlot(title, yLabel string, names []string, series []plotter.XYs, savePath string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Episode"
	p.Y.Label.Text = yLabel
	for i, points := range series {
		line, err := plotter.NewLine(points)
		if err != nil {
			continue
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(names[i], line)
	}
	return p.Save(8*vg.Inch, 8*vg.Inch, savePath)
}

// ReturnPlotter plots episode returns per experiment and prints their mean and deviation
func ReturnPlotter(plotPath string) Comparator {
	ensureDir(plotPath)
	return func(run int, names []string, ds []DataSet) {
		series := make([]plotter.XYs, len(names))
		for i := range names {
			returns := ds[i].([]float64)
			points := make(plotter.XYs, len(returns))
			for j, r := range returns {
				points[j] = plotter.XY{X: float64(j), Y: r}
			}
			series[i] = points
			if len(returns) > 0 {
				mean, std := stat.MeanStdDev(returns, nil)
				fmt.Printf("Mean return: %.4f (std %.4f) for experiment: %s\n", mean, std, names[i])
			}
		}
		if err := linePlot("Returns", "Return", names, series, path.Join(plotPath, strconv.Itoa(run)+"_returns.png")); err != nil {
			fmt.Printf("could not save returns plot: %s\n", err)
		}
	}
}

// ViolationPlotter plots the cumulative invariant violations per experiment
func ViolationPlotter(plotPath string) Comparator {
	ensureDir(plotPath)
	return func(run int, names []string, ds []DataSet) {
		series := make([]plotter.XYs, len(names))
		for i := range names {
			cumulative := ds[i].([]int)
			points := make(plotter.XYs, len(cumulative))
			for j, v := range cumulative {
				points[j] = plotter.XY{X: float64(j), Y: float64(v)}
			}
			series[i] = points
			if len(cumulative) > 0 {
				fmt.Printf("Invariant violations: %d for experiment: %s\n", cumulative[len(cumulative)-1], names[i])
			}
		}
		if err := linePlot("Invariant violations", "Violations", names, series, path.Join(plotPath, strconv.Itoa(run)+"_violations.png")); err != nil {
			fmt.Printf("could not save violations plot: %s\n", err)
		}
	}
}
