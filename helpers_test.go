package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

const testJavaVersion = "1.7.0_40"

// fakeRunner records every command and answers from respond.
type fakeRunner struct {
	mu      sync.Mutex
	calls   []Cmd
	respond func(c Cmd) (string, int)
	// startErr, when set, makes non-probe commands fail as if they could
	// not be started.
	startErr error
	// javaVersion overrides the reported `java -version` output.
	javaVersion string
}

func (f *fakeRunner) Run(ctx context.Context, c Cmd) (int, error) {
	_, code, err := f.Output(ctx, c)
	return code, err
}

func (f *fakeRunner) Output(_ context.Context, c Cmd) (string, int, error) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
	out, code := "", 0
	switch {
	case c.Probe:
		version := f.javaVersion
		if version == "" {
			version = testJavaVersion
		}
		out = `java version "` + version + `"` + "\n"
	case f.startErr != nil:
		return "", 1, &ProcessError{Argv: c.Argv, Code: 1, Err: f.startErr}
	case f.respond != nil:
		out, code = f.respond(c)
	}
	if code != 0 {
		return out, code, &ProcessError{Argv: c.Argv, Code: code}
	}
	return out, 0, nil
}

// commands returns the recorded argv lines, excluding java version probes.
func (f *fakeRunner) commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if c.Probe {
			continue
		}
		out = append(out, c.String())
	}
	return out
}

// testSuite applies the suite defaults without picking up the host JDK.
func testSuite(suite *Suite) *Suite {
	suite.applyDefaults()
	suite.Java.Home = ""
	return suite
}

func newTestSession(t *testing.T, suite *Suite) (*Session, *fakeRunner) {
	t.Helper()
	if suite == nil {
		suite = &Suite{}
	}
	testSuite(suite)
	if err := suite.validate(); err != nil {
		t.Fatalf("invalid test suite: %v", err)
	}
	runner := &fakeRunner{}
	return &Session{
		Home:    t.TempDir(),
		Variant: Product,
		Suite:   suite,
		Runner:  runner,
		Log:     zerolog.Nop(),
		Out:     &bytes.Buffer{},
		Exe:     "vmx",
	}, runner
}

// makeJDK creates a managed JDK layout under home with a jvm.cfg.
func makeJDK(t *testing.T, dir string) string {
	t.Helper()
	for _, d := range jdkDirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	cfg := filepath.Join(dir, "jre", "lib", "amd64", "jvm.cfg")
	writeFile(t, cfg, "-server KNOWN\n-client IGNORE\n")
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func sessionOutput(s *Session) string {
	return s.Out.(*bytes.Buffer).String()
}
