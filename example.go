package main

import (
	"context"
	"sort"
	"strings"
)

func handleExample(ctx context.Context, s *Session, inv Invocation) error {
	return s.Examples(ctx, inv.Args, inv.Bool("verbose"))
}

// Examples runs the named examples, or all of them, first on the server
// compiler and then on Graal with and without extensions. Unknown names are
// reported and skipped.
func (s *Session) Examples(ctx context.Context, names []string, printCompilation bool) error {
	available := make([]string, 0, len(s.Suite.Examples))
	for name := range s.Suite.Examples {
		available = append(available, name)
	}
	sort.Strings(available)
	if len(names) == 0 {
		names = available
	}

	var failed []string
	for _, name := range names {
		e, ok := s.Suite.Examples[name]
		if !ok {
			s.Log.Warn().Str("example", name).Strs("available", available).Msg("unknown example")
			continue
		}
		ok, err := s.runExample(ctx, name, e, printCompilation)
		if err != nil {
			return err
		}
		if !ok {
			failed = append(failed, name)
		}
	}
	if len(failed) > 0 {
		return Raise(StepFailed, "examples failed: "+strings.Join(failed, ", "))
	}
	return nil
}

func (s *Session) runExample(ctx context.Context, name string, e Example, printCompilation bool) (bool, error) {
	p := s.Suite.Project(e.Project)
	if p == nil {
		return false, configErrorf("example %s refers to unknown project %q", name, e.Project)
	}
	cp, err := s.Suite.Classpath(s.Home, p)
	if err != nil {
		return false, err
	}
	shared := []string{"-Xcomp", "-XX:CompileOnly=Main", e.MainClass}
	hotspotPrint, graalPrint := "-XX:-PrintCompilation", "-G:-PrintCompilation"
	if printCompilation {
		hotspotPrint, graalPrint = "-XX:+PrintCompilation", "-G:+PrintCompilation"
	}
	runs := []struct {
		label string
		mode  string
		args  []string
	}{
		{"server", "-server", []string{"-cp", cp, hotspotPrint}},
		{"graal", "-graal", []string{"-cp", cp, graalPrint, "-G:-Extend", "-G:-Inline"}},
		{"graal with extensions", "-graal", []string{"-cp", cp, graalPrint, "-G:+Extend", "-G:-Inline"}},
	}

	ok := true
	for _, r := range runs {
		s.Log.Info().Str("example", name).Str("vm", r.label).Msg("running example")
		c, err := s.launchCmd(ctx, r.mode, append(r.args, shared...))
		if err != nil {
			return false, err
		}
		if _, err := s.Runner.Run(ctx, c); err != nil {
			if err := fatalRunError(ctx, err); err != nil {
				return false, err
			}
			s.Log.Warn().Err(err).Str("example", name).Str("vm", r.label).Msg("example failed")
			ok = false
		}
	}
	return ok, nil
}
