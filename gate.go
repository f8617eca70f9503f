package main

import (
	"context"
	"fmt"
)

const gateTitle = "Gate"

// handleGate runs the checks used to validate a push. A nil return means
// the tree is in a state that may be integrated.
func handleGate(ctx context.Context, s *Session, inv Invocation) error {
	if _, err := s.Java(ctx); err != nil {
		return err
	}
	var variants []Variant
	for _, name := range s.Suite.GateVariants {
		v, err := ParseVariant(name)
		if err != nil {
			return err
		}
		variants = append(variants, v)
	}

	res, err := s.Tasks().Run(ctx, gateTitle, s.GateChecks(variants))
	if path := inv.String("history"); path != "" {
		if herr := recordGate(resolve(s.Home, path), res); herr != nil {
			s.Log.Warn().Err(herr).Str("db", path).Msg("cannot record gate result")
		}
	}
	return err
}

// GateChecks lists the gate steps in execution order. Variant dependent
// steps are repeated for each variant.
func (s *Session) GateChecks(variants []Variant) []Check {
	checks := []Check{
		{Label: "Checkstyle", Run: func(ctx context.Context) error {
			return s.externalCheck(ctx, "checkstyle", s.Suite.Checks.Checkstyle, "Checkstyle warnings were found")
		}},
		{Label: "Canonicalization Check", Run: func(ctx context.Context) error {
			s.Log.Info().Msg("ensuring project files are canonicalized")
			return s.externalCheck(ctx, "canonicalize", s.Suite.Checks.Canonicalize,
				"Rerun the canonicalization tool and check in the modified project files.")
		}},
		{Label: "BuildJava", Run: func(ctx context.Context) error {
			return s.BuildJava(ctx, "")
		}},
	}
	for _, v := range variants {
		vs := s.WithVariant(v)
		suffix := ":" + string(v)
		checks = append(checks,
			Check{Label: "BuildHotSpot" + suffix, Run: func(ctx context.Context) error {
				return vs.Build(ctx, BuildOptions{Native: true, Variants: []Variant{v}})
			}},
			Check{Label: "BootstrapWithSystemAssertions" + suffix, Run: func(ctx context.Context) error {
				return vs.VM(ctx, []string{"-esa", "-version"})
			}},
			Check{Label: "UnitTests" + suffix, Run: func(ctx context.Context) error {
				return vs.UnitTests(ctx, nil)
			}},
			Check{Label: "DaCapoBenchmarks" + suffix, Run: func(ctx context.Context) error {
				for _, b := range vs.Suite.Dacapos(LevelGate) {
					_, passed, err := vs.RunBenchmark(ctx, b, b.Levels[LevelGate], nil, nil)
					if err != nil {
						return err
					}
					if !passed {
						return Raise(StepFailed, b.Group+" "+b.Name+" Failed")
					}
				}
				return nil
			}},
		)
	}
	return checks
}

// externalCheck runs a configured check command in the home directory.
// An unconfigured check is skipped.
func (s *Session) externalCheck(ctx context.Context, name string, argv []string, failure string) error {
	if len(argv) == 0 {
		s.Log.Warn().Str("check", name).Msg("no command configured, skipping")
		return nil
	}
	if _, err := s.Runner.Run(ctx, Cmd{Argv: s.Expand(argv), Dir: s.Home}); err != nil {
		return fmt.Errorf("%s (%w)", failure, err)
	}
	return nil
}
