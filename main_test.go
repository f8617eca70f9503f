package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// ===== GLOBAL OPTION TESTS =====

func TestParseGlobals(t *testing.T) {
	t.Setenv(EnvHome, "")
	tests := []struct {
		name     string
		args     []string
		expected Settings
		rest     string
		wantErr  bool
	}{
		{name: "defaults", args: []string{"build"}, expected: Settings{Home: "."}, rest: "build"},
		{name: "home and suite", args: []string{"-H", "/g", "--suite=s.toml", "gate"},
			expected: Settings{Home: "/g", SuiteFile: "s.toml"}, rest: "gate"},
		{name: "inline home", args: []string{"--home=/x", "vm", "-version"}, expected: Settings{Home: "/x"}, rest: "vm -version"},
		{name: "variant and switches", args: []string{"--fastdebug", "-n", "-v", "build", "--no-java"},
			expected: Settings{Home: ".", Variant: FastDebug, DryRun: true, Verbose: true}, rest: "build --no-java"},
		{name: "command options untouched", args: []string{"vm", "--debug"}, expected: Settings{Home: "."}, rest: "vm --debug"},
		{name: "double dash", args: []string{"--", "-weird"}, expected: Settings{Home: "."}, rest: "-weird"},
		{name: "help", args: []string{"-v", "--help"}, expected: Settings{Home: ".", Verbose: true}, rest: "--help"},
		{name: "empty", args: nil, expected: Settings{Home: "."}, rest: ""},
		{name: "missing value", args: []string{"--home"}, wantErr: true},
		{name: "unknown option", args: []string{"--frobnicate", "build"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, rest, err := parseGlobals(tt.args)
			if tt.wantErr {
				if ExitCode(err) != 2 {
					t.Fatalf("expected usage error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if st != tt.expected {
				t.Errorf("settings = %+v, want %+v", st, tt.expected)
			}
			if strings.Join(rest, " ") != tt.rest {
				t.Errorf("rest = %q, want %q", rest, tt.rest)
			}
		})
	}
}

func TestParseGlobalsHomeFromEnv(t *testing.T) {
	t.Setenv(EnvHome, "/from/env")
	st, _, err := parseGlobals([]string{"gate"})
	if err != nil || st.Home != "/from/env" {
		t.Errorf("home = %q (%v)", st.Home, err)
	}
}

// ===== EXIT CODE TESTS =====

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", errors.New("x"), 1},
		{"step failure", Raise(StepFailed, "x"), 1},
		{"usage", usageErrorf("x"), 2},
		{"config", configErrorf("x"), 3},
		{"wrapped config", fmt.Errorf("loading: %w", configErrorf("x")), 3},
		{"process", &ProcessError{Argv: []string{"make"}, Code: 42}, 42},
		{"process without code", &ProcessError{Argv: []string{"make"}, Err: errors.New("not found")}, 1},
		{"abort wraps process", &AbortError{Label: "Gate", Reason: &ProcessError{Code: 5}}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExceptionMessages(t *testing.T) {
	if got := configErrorf("bad %s", "suite").Error(); got != "configuration error: bad suite" {
		t.Errorf("config message = %q", got)
	}
	if got := usageErrorf("nope").Error(); got != "usage error: nope" {
		t.Errorf("usage message = %q", got)
	}
	if got := Raise(StepFailed, "DaCapo fop Failed").Error(); got != "DaCapo fop Failed" {
		t.Errorf("step message = %q", got)
	}
}

// ===== DISPATCH TESTS =====

func TestRunExitCodes(t *testing.T) {
	home := t.TempDir()
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no command", []string{"--home", home}, 2},
		{"help", []string{"--home", home, "help"}, 0},
		{"command help", []string{"--home", home, "help", "gate"}, 0},
		{"help unknown command", []string{"--home", home, "help", "nosuch"}, 2},
		{"version", []string{"--version"}, 0},
		{"unknown command", []string{"--home", home, "nosuch"}, 2},
		{"export needs native sources", []string{"--home", home, "export"}, 2},
		{"missing home", []string{"--home", filepath.Join(home, "absent"), "gate"}, 3},
		{"bad suite", []string{"--home", home, "--suite", filepath.Join(home, "none.yaml"), "gate"}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(context.Background(), tt.args); got != tt.want {
				t.Errorf("run(%v) = %d, want %d", tt.args, got, tt.want)
			}
		})
	}
}

func TestDispatchPassthrough(t *testing.T) {
	s, runner := newTestSession(t, nil)
	makeJDK(t, filepath.Join(s.Home, "jdk"+testJavaVersion))
	reg := NewCommandTable(false)

	if err := dispatch(context.Background(), s, reg, []string{"vm", "--debug", "-Xint", "Hello"}); err != nil {
		t.Fatal(err)
	}
	cmds := runner.commands()
	if len(cmds) != 1 || !strings.HasSuffix(cmds[0], "-graal --debug -Xint Hello") {
		t.Errorf("commands = %v", cmds)
	}
}

func TestDispatchThroughOrpheus(t *testing.T) {
	s, _ := newTestSession(t, nil)
	reg := NewCommandTable(false)
	err := dispatch(context.Background(), s, reg, []string{"bench", "--format", "xml"})
	if ExitCode(err) != 2 {
		t.Errorf("exit code = %d (%v), want 2", ExitCode(err), err)
	}
}

func TestDispatchSeparatesFlagsFromArguments(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		setup func(t *testing.T, s *Session)
		check func(t *testing.T, s *Session, cmds []string)
	}{
		{
			name: "build flag before variant",
			args: []string{"build", "--no-java", "product"},
			check: func(t *testing.T, s *Session, cmds []string) {
				if len(cmds) != 1 || !strings.HasSuffix(cmds[0], " productgraal") {
					t.Errorf("commands = %v", cmds)
				}
			},
		},
		{
			name: "build explicit bool value",
			args: []string{"build", "--no-java=true", "fastdebug"},
			check: func(t *testing.T, s *Session, cmds []string) {
				if len(cmds) != 1 || !strings.HasSuffix(cmds[0], " fastdebuggraal") {
					t.Errorf("commands = %v", cmds)
				}
			},
		},
		{
			name: "build flag after variant",
			args: []string{"build", "fastdebug", "--no-native"},
			setup: func(t *testing.T, s *Session) {
				s.Suite = testSuite(&Suite{Projects: []Project{{Name: "p"}}})
				writeFile(t, filepath.Join(s.Home, "p", "src", "A.java"), "class A {}\n")
			},
			check: func(t *testing.T, s *Session, cmds []string) {
				if len(cmds) != 1 || !strings.HasPrefix(cmds[0], "javac ") {
					t.Errorf("commands = %v", cmds)
				}
			},
		},
		{
			name:  "export zip after flag",
			args:  []string{"export", "--omit-vm-build", "out.zip"},
			setup: func(t *testing.T, s *Session) { s.DryRun = true },
			check: func(t *testing.T, s *Session, cmds []string) {
				if len(cmds) != 1 || !strings.HasPrefix(cmds[0], "hg archive") {
					t.Errorf("commands = %v", cmds)
				}
				if want := "Would write " + filepath.Join(s.Home, "out.zip"); !strings.Contains(sessionOutput(s), want) {
					t.Errorf("output %q lacks %q", sessionOutput(s), want)
				}
			},
		},
		{
			name:  "export default zip",
			args:  []string{"export", "--omit-vm-build"},
			setup: func(t *testing.T, s *Session) { s.DryRun = true },
			check: func(t *testing.T, s *Session, cmds []string) {
				want := "Would write " + filepath.Join(s.Home, "graalvm-"+runtime.GOOS+".zip")
				if !strings.Contains(sessionOutput(s), want) {
					t.Errorf("output %q lacks %q", sessionOutput(s), want)
				}
			},
		},
		{
			name: "clean java only",
			args: []string{"clean", "--no-native"},
			setup: func(t *testing.T, s *Session) {
				s.Suite = testSuite(&Suite{Projects: []Project{{Name: "p"}}})
				writeFile(t, filepath.Join(s.Home, "p", "bin", "A.class"), "x")
			},
			check: func(t *testing.T, s *Session, cmds []string) {
				if len(cmds) != 0 {
					t.Errorf("commands = %v", cmds)
				}
				if exists(filepath.Join(s.Home, "p", "bin")) {
					t.Error("class output not removed")
				}
			},
		},
		{
			name: "example verbose",
			args: []string{"example", "-v", "safeadd"},
			setup: func(t *testing.T, s *Session) {
				s.Suite = testSuite(&Suite{
					Projects: []Project{{Name: "examples"}},
					Examples: map[string]Example{"safeadd": {Project: "examples", MainClass: "safeadd.Main"}},
				})
			},
			check: func(t *testing.T, s *Session, cmds []string) {
				if len(cmds) != 3 || !strings.Contains(cmds[1], "-G:+PrintCompilation") {
					t.Errorf("commands = %v", cmds)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, runner := nativeSession(t)
			if tt.setup != nil {
				tt.setup(t, s)
			}
			if err := dispatch(context.Background(), s, NewCommandTable(true), tt.args); err != nil {
				t.Fatalf("dispatch(%v) = %v", tt.args, err)
			}
			tt.check(t, s, runner.commands())
		})
	}
}

func TestDispatchChecksJavaVersion(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"build", []string{"build", "--no-native"}, 3},
		{"passthrough", []string{"vm", "-version"}, 3},
		{"history needs no java", []string{"history"}, 0},
		{"command help", []string{"build", "--help"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, runner := newTestSession(t, nil)
			runner.javaVersion = "1.6.0_45"
			err := dispatch(context.Background(), s, NewCommandTable(false), tt.args)
			if ExitCode(err) != tt.want {
				t.Errorf("exit code = %d (%v), want %d", ExitCode(err), err, tt.want)
			}
			if cmds := runner.commands(); len(cmds) != 0 {
				t.Errorf("commands ran: %v", cmds)
			}
		})
	}
}

func TestDispatchUnknown(t *testing.T) {
	s, _ := newTestSession(t, nil)
	err := dispatch(context.Background(), s, NewCommandTable(false), []string{"exprot"})
	if !IsKind(err, UsageInvalid) {
		t.Errorf("expected usage error, got %v", err)
	}
}

func TestCommandHelp(t *testing.T) {
	c, _ := NewCommandTable(false).Lookup("bench")
	help := commandHelp(c)
	for _, want := range []string{"usage: vmx bench", "-f, --format VALUE", "output format"} {
		if !strings.Contains(help, want) {
			t.Errorf("help lacks %q:\n%s", want, help)
		}
	}
}
