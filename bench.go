package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Sanity levels selecting benchmarks from the suite.
const (
	LevelGate      = "gate"
	LevelBenchmark = "benchmark"
)

const dacapoGroup = "DaCapo"

// BenchResult is the outcome of one benchmark run.
type BenchResult struct {
	Group   string             `json:"group" yaml:"group" toml:"group"`
	Name    string             `json:"name" yaml:"name" toml:"name"`
	Passed  bool               `json:"passed" yaml:"passed" toml:"passed"`
	Metrics map[string]float64 `json:"metrics,omitempty" yaml:"metrics,omitempty" toml:"metrics,omitempty"`
}

type BenchGroup struct {
	Name    string        `json:"name" yaml:"name" toml:"name"`
	Results []BenchResult `json:"results" yaml:"results" toml:"results"`
}

// BenchReport is the result schema printed by the bench command.
type BenchReport struct {
	Variant string       `json:"variant" yaml:"variant" toml:"variant"`
	Groups  []BenchGroup `json:"groups" yaml:"groups" toml:"groups"`
}

// Add files r under its group, keeping groups in first-seen order.
func (rep *BenchReport) Add(r BenchResult) {
	for i := range rep.Groups {
		if rep.Groups[i].Name == r.Group {
			rep.Groups[i].Results = append(rep.Groups[i].Results, r)
			return
		}
	}
	rep.Groups = append(rep.Groups, BenchGroup{Name: r.Group, Results: []BenchResult{r}})
}

// Failed returns "group name" for every failed result.
func (rep *BenchReport) Failed() []string {
	var out []string
	for _, g := range rep.Groups {
		for _, r := range g.Results {
			if !r.Passed {
				out = append(out, r.Group+" "+r.Name)
			}
		}
	}
	return out
}

func handleBench(ctx context.Context, s *Session, inv Invocation) error {
	format := strings.ToLower(inv.String("format"))
	if format == "" {
		format = "table"
	}
	if !validFormat(format) {
		return usageErrorf("unknown format %q (use table, json, yaml or toml)", format)
	}
	if _, err := s.Java(ctx); err != nil {
		return err
	}

	rep := BenchReport{Variant: string(s.vmVariant())}
	for _, b := range s.Suite.BenchmarksAt(LevelBenchmark) {
		out, passed, err := s.RunBenchmark(ctx, b, b.Levels[LevelBenchmark], nil, nil)
		if err != nil {
			return err
		}
		res := BenchResult{Group: b.Group, Name: b.Name, Passed: passed}
		if passed {
			if res.Metrics, err = scoreMetrics(b, out); err != nil {
				return err
			}
		}
		rep.Add(res)
	}
	if err := RenderBenchReport(s.out(), &rep, format); err != nil {
		return err
	}
	if failed := rep.Failed(); len(failed) > 0 {
		return Raise(StepFailed, fmt.Sprintf("benchmark failures: [%s]", strings.Join(failed, ", ")))
	}
	return nil
}

func validFormat(f string) bool {
	switch f {
	case "table", "json", "yaml", "toml":
		return true
	}
	return false
}

// RenderBenchReport writes rep in the given format.
func RenderBenchReport(w io.Writer, rep *BenchReport, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer func() { _ = enc.Close() }()
		return enc.Encode(rep)
	case "toml":
		return toml.NewEncoder(w).Encode(rep)
	case "table":
		return renderBenchTable(w, rep)
	default:
		return usageErrorf("unknown format %q", format)
	}
}

func renderBenchTable(w io.Writer, rep *BenchReport) error {
	fmt.Fprintf(w, "Benchmarks (%s VM):\n", rep.Variant)
	if len(rep.Groups) == 0 {
		fmt.Fprintln(w, "No benchmarks configured")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  GROUP\tNAME\tSTATUS\tMETRICS")
	for _, g := range rep.Groups {
		for _, r := range g.Results {
			status := "ok"
			if !r.Passed {
				status = "FAILED"
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", r.Group, r.Name, status, formatMetrics(r.Metrics))
		}
	}
	return tw.Flush()
}

func formatMetrics(m map[string]float64) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + strconv.FormatFloat(m[k], 'f', -1, 64)
	}
	return strings.Join(parts, " ")
}

// RunBenchmark runs b on the VM and reports its output and whether it
// passed: exit code 0, the success pattern matched and the failure pattern
// did not. In dry-run mode every benchmark passes.
func (s *Session) RunBenchmark(ctx context.Context, b Benchmark, iterations int, vmOpts, harness []string) (string, bool, error) {
	if iterations <= 0 {
		iterations = 1
	}
	vars := []string{"n", strconv.Itoa(iterations), "name", b.Name, "group", b.Group}
	args := append([]string{}, vmOpts...)
	args = append(args, s.Expand(b.VMArgs, vars...)...)
	args = append(args, s.Expand(b.Args, vars...)...)
	args = append(args, harness...)
	c, err := s.VMCmd(ctx, args)
	if err != nil {
		return "", false, err
	}
	s.Log.Info().Str("group", b.Group).Str("benchmark", b.Name).Int("iterations", iterations).Msg("running benchmark")
	out, code, err := s.Runner.Output(ctx, c)
	if err := fatalRunError(ctx, err); err != nil {
		return out, false, err
	}
	if s.DryRun {
		return out, true, nil
	}
	passed := code == 0
	if passed && b.Success != "" {
		re, err := regexp.Compile(b.Success)
		if err != nil {
			return "", false, configErrorf("benchmark %s: bad success pattern: %v", b.Name, err)
		}
		passed = re.MatchString(out)
	}
	if passed && b.Failure != "" {
		re, err := regexp.Compile(b.Failure)
		if err != nil {
			return "", false, configErrorf("benchmark %s: bad failure pattern: %v", b.Name, err)
		}
		passed = !re.MatchString(out)
	}
	if !passed {
		s.Log.Warn().Str("group", b.Group).Str("benchmark", b.Name).Int("code", code).Msg("benchmark failed")
		_, _ = io.WriteString(s.out(), out)
	}
	return out, passed, nil
}

// scoreMetrics extracts each configured score from out. The last match of
// a pattern wins so warmed-up iterations are reported.
func scoreMetrics(b Benchmark, out string) (map[string]float64, error) {
	if len(b.Scores) == 0 {
		return nil, nil
	}
	metrics := make(map[string]float64, len(b.Scores))
	for name, pattern := range b.Scores {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, configErrorf("benchmark %s: bad score pattern %s: %v", b.Name, name, err)
		}
		matches := re.FindAllStringSubmatch(out, -1)
		if len(matches) == 0 {
			continue
		}
		last := matches[len(matches)-1]
		raw := last[0]
		if len(last) > 1 {
			raw = last[1]
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			continue
		}
		metrics[name] = v
	}
	return metrics, nil
}

// Dacapos returns the DaCapo benchmarks enabled at level.
func (s *Suite) Dacapos(level string) []Benchmark {
	var out []Benchmark
	for _, b := range s.BenchmarksAt(level) {
		if strings.EqualFold(b.Group, dacapoGroup) {
			out = append(out, b)
		}
	}
	return out
}

type dacapoRun struct {
	bench      Benchmark
	iterations int
}

// parseDacapoArgs splits the dacapo command line into the benchmarks to
// run, VM options and harness (@-prefixed) options.
func parseDacapoArgs(suite *Suite, args []string) ([]dacapoRun, []string, []string, error) {
	var all []Benchmark
	levels := map[string]bool{}
	for _, b := range suite.Benchmarks {
		if strings.EqualFold(b.Group, dacapoGroup) {
			all = append(all, b)
			for l := range b.Levels {
				levels[l] = true
			}
		}
	}
	known := func() string {
		names := make([]string, len(all))
		for i, b := range all {
			names[i] = b.Name
		}
		return strings.Join(names, ", ")
	}

	var runs []dacapoRun
	if len(args) > 0 && levels[args[0]] {
		level := args[0]
		args = args[1:]
		for _, b := range all {
			if n := b.Levels[level]; n > 0 {
				runs = append(runs, dacapoRun{bench: b, iterations: n})
			}
		}
	} else {
		for len(args) > 0 && !strings.HasPrefix(args[0], "-") && !strings.HasPrefix(args[0], "@") {
			n := 1
			if v, err := strconv.Atoi(args[0]); err == nil {
				if len(args) < 2 || strings.HasPrefix(args[1], "-") || strings.HasPrefix(args[1], "@") {
					return nil, nil, nil, usageErrorf("iteration count %s must be followed by a benchmark name", args[0])
				}
				if _, err := strconv.Atoi(args[1]); err == nil {
					return nil, nil, nil, usageErrorf("iteration count %s must be followed by a benchmark name", args[0])
				}
				n = v
				args = args[1:]
			}
			name := args[0]
			args = args[1:]
			var found *Benchmark
			for i := range all {
				if all[i].Name == name {
					found = &all[i]
					break
				}
			}
			if found == nil {
				return nil, nil, nil, configErrorf("unknown benchmark: %s\nselect one of: %s", name, known())
			}
			runs = append(runs, dacapoRun{bench: *found, iterations: n})
		}
	}
	if len(runs) == 0 {
		for _, b := range all {
			runs = append(runs, dacapoRun{bench: b, iterations: 1})
		}
	}

	var vmOpts, harness []string
	for _, a := range args {
		if strings.HasPrefix(a, "@") {
			harness = append(harness, a[1:])
		} else {
			vmOpts = append(vmOpts, a)
		}
	}
	return runs, vmOpts, harness, nil
}

func handleDacapo(ctx context.Context, s *Session, inv Invocation) error {
	runs, vmOpts, harness, err := parseDacapoArgs(s.Suite, inv.Args)
	if err != nil {
		return err
	}
	if _, err := s.Java(ctx); err != nil {
		return err
	}
	var failed []string
	for _, r := range runs {
		_, passed, err := s.RunBenchmark(ctx, r.bench, r.iterations, vmOpts, harness)
		if err != nil {
			return err
		}
		if !passed {
			failed = append(failed, r.bench.Name)
		}
	}
	if len(failed) > 0 {
		return Raise(StepFailed, fmt.Sprintf("DaCapo failures: [%s]", strings.Join(failed, ", ")))
	}
	return nil
}
