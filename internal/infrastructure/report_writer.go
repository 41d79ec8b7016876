package infrastructure

import (
	"fmt"
	"io"
	"text/tabwriter"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"schedbench/internal/domain"
)

// ConsoleReporter печатает таблицы результатов
type ConsoleReporter struct {
	logger *zap.Logger
	out    io.Writer
}

func NewConsoleReporter(logger *zap.Logger, out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{logger: logger, out: out}
}

// ReportRuns prints one row per run plus a throughput summary per policy.
// Speedup is relative to the first run of the same policy.
func (r *ConsoleReporter) ReportRuns(title string, runs []domain.RunResult) error {
	tw := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "%s\n", title)
	fmt.Fprintln(tw, "policy\tthreads\telapsed(s)\tunits/s\tspeedup\tclaims\tinside\tid")

	base := make(map[string]float64)
	byPolicy := make(map[string][]float64)
	var order []string

	for _, run := range runs {
		policy := run.Policy.String()
		tp := run.Throughput()
		if _, ok := base[policy]; !ok {
			base[policy] = run.Elapsed.Seconds()
			order = append(order, policy)
		}
		byPolicy[policy] = append(byPolicy[policy], tp)

		speedup := 0.0
		if s := run.Elapsed.Seconds(); s > 0 {
			speedup = base[policy] / s
		}
		fmt.Fprintf(tw, "%s\t%d\t%.6f\t%.4g\t%.2f\t%d\t%d\t%s\n",
			policy, run.Threads, run.Elapsed.Seconds(), tp, speedup, run.Claims, run.Inside, run.ID)
	}

	fmt.Fprintln(tw, "\npolicy\tmean units/s\tstddev\tbest units/s")
	for _, policy := range order {
		tps := byPolicy[policy]
		mean, std := stat.MeanStdDev(tps, nil)
		if len(tps) < 2 {
			std = 0
		}
		fmt.Fprintf(tw, "%s\t%.4g\t%.4g\t%.4g\n", policy, mean, std, floats.Max(tps))
	}
	fmt.Fprintln(tw)

	if err := tw.Flush(); err != nil {
		r.logger.Error("Failed to write report", zap.Error(err))
		return err
	}
	return nil
}

// ReportHistogram prints the bucket table of one run followed by a
// chi-square test against the uniform distribution.
func (r *ConsoleReporter) ReportHistogram(run domain.RunResult) error {
	fmt.Fprintf(r.out, "%s scheduling, threads: %d\n", run.Policy, run.Threads)

	obs := make([]float64, len(run.Buckets))
	for i, c := range run.Buckets {
		fmt.Fprintf(r.out, "%d:%d\n", i, c)
		obs[i] = float64(c)
	}

	total := floats.Sum(obs)
	fmt.Fprintf(r.out, "total:%d\n", int64(total))

	chi2, p := Uniformity(obs)
	_, err := fmt.Fprintf(r.out, "chi2:%.3f p:%.3f elapsed:%.6f\n", chi2, p, run.Elapsed.Seconds())
	return err
}

// Uniformity returns the chi-square statistic of obs against equal
// expected counts and its p-value.
func Uniformity(obs []float64) (chi2, p float64) {
	if len(obs) < 2 {
		return 0, 1
	}
	total := floats.Sum(obs)
	if total == 0 {
		return 0, 1
	}

	exp := make([]float64, len(obs))
	for i := range exp {
		exp[i] = total / float64(len(obs))
	}
	chi2 = stat.ChiSquare(obs, exp)
	p = distuv.ChiSquared{K: float64(len(obs) - 1)}.Survival(chi2)
	return chi2, p
}
