package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

func handleClean(ctx context.Context, s *Session, inv Invocation) error {
	if !inv.Bool("no-java") {
		for i := range s.Suite.Projects {
			p := &s.Suite.Projects[i]
			if p.Native {
				continue
			}
			out := p.OutputDir(s.Home)
			if !exists(out) {
				continue
			}
			if s.DryRun {
				fmt.Fprintf(s.out(), "  [DRY RUN] Would remove: %s\n", out)
				continue
			}
			s.Log.Info().Str("project", p.Name).Str("dir", out).Msg("removing class output")
			if err := os.RemoveAll(out); err != nil {
				return err
			}
		}
	}
	if inv.Bool("no-native") || !s.NativeSourcesAvailable() {
		return nil
	}
	_, err := s.Runner.Run(ctx, Cmd{
		Argv: []string{gmake(), "clean"},
		Dir:  filepath.Join(s.Home, "make"),
		Env:  []string{"ARCH_DATA_MODEL=64", "LANG=C", "HOTSPOT_BUILD_JOBS=16"},
	})
	return err
}
