package main

import "context"

func handleCopyrightCheck(ctx context.Context, s *Session, inv Invocation) error {
	return s.CopyrightCheck(ctx, inv.Args)
}

// CopyrightCheck runs the configured copyright tool over the tracked
// sources. Extra args are appended to the suite's arguments.
func (s *Session) CopyrightCheck(ctx context.Context, args []string) error {
	cc := s.Suite.Checks.Copyright
	if cc.Project == "" {
		return configErrorf("no copyright check configured (checks.copyright)")
	}
	p := s.Suite.Project(cc.Project)
	if p == nil {
		return configErrorf("copyright check refers to unknown project %q", cc.Project)
	}
	cp, err := s.Suite.Classpath(s.Home, p)
	if err != nil {
		return err
	}
	argv := []string{s.javaTool("java"), "-cp", cp, cc.MainClass}
	argv = append(argv, s.Expand(cc.Args, "project_dir", p.Path(s.Home))...)
	argv = append(argv, args...)
	code, err := s.Runner.Run(ctx, Cmd{Argv: argv, Dir: s.Home})
	s.Log.Info().Int("result", code).Msg("copyright check finished")
	return err
}
