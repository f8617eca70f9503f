package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Settings are the global options parsed before dispatch.
type Settings struct {
	Home      string
	SuiteFile string
	Variant   Variant
	DryRun    bool
	Verbose   bool
}

// Session is the per-invocation state threaded through every handler.
type Session struct {
	Home    string
	Variant Variant
	DryRun  bool
	Verbose bool
	Suite   *Suite
	Runner  Runner
	Log     zerolog.Logger
	Out     io.Writer
	// Exe is the vmx binary, re-run inside export staging directories.
	Exe string

	java *JavaInfo
}

// NewSession loads the suite under st.Home and wires a host process runner.
func NewSession(st Settings, log zerolog.Logger) (*Session, error) {
	home, err := filepath.Abs(st.Home)
	if err != nil {
		return nil, configErrorf("invalid home %s: %v", st.Home, err)
	}
	if info, err := os.Stat(home); err != nil || !info.IsDir() {
		return nil, configErrorf("home directory %s does not exist", home)
	}
	suite, err := LoadSuite(home, st.SuiteFile)
	if err != nil {
		return nil, err
	}
	variant := st.Variant
	if variant == "" {
		variant = Product
	}
	exe, err := os.Executable()
	if err != nil {
		exe = "vmx"
	}
	return &Session{
		Home:    home,
		Variant: variant,
		DryRun:  st.DryRun,
		Verbose: st.Verbose,
		Suite:   suite,
		Runner:  NewProcessRunner(log, st.DryRun, st.Verbose),
		Log:     log,
		Out:     os.Stdout,
		Exe:     exe,
	}, nil
}

// NativeSourcesAvailable reports whether the native VM sources are checked
// out next to the Java projects.
func (s *Session) NativeSourcesAvailable() bool {
	return nativeSources(s.Home)
}

func nativeSources(home string) bool {
	return isDir(filepath.Join(home, "make")) && isDir(filepath.Join(home, "src"))
}

// Vars returns the expansion variables for suite commands, extended with
// extra key/value pairs.
func (s *Session) Vars(extra ...string) map[string]string {
	vars := map[string]string{
		"home":      s.Home,
		"variant":   string(s.Variant),
		"java_home": s.Suite.Java.Home,
	}
	for i := 0; i+1 < len(extra); i += 2 {
		vars[extra[i]] = extra[i+1]
	}
	return vars
}

// Expand expands suite variables in argv, warning about unknown ones.
func (s *Session) Expand(argv []string, extra ...string) []string {
	return ExpandArgv(argv, s.Vars(extra...), func(name string) {
		s.Log.Warn().Str("var", name).Msg("undefined variable")
	})
}

func (s *Session) Tasks() *Tasks {
	return NewTasks(s.Log)
}

func (s *Session) out() io.Writer {
	if s.Out == nil {
		return os.Stdout
	}
	return s.Out
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
