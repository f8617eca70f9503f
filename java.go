package main

import (
	"context"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
)

// MinJavaMajor is the oldest host Java release vmx can drive.
const MinJavaMajor = 7

// JavaInfo describes the host JDK.
type JavaInfo struct {
	Home    string
	Version string
	Major   int
}

var javaVersionPattern = regexp.MustCompile(`version "([^"]+)"`)

// parseJavaVersion extracts the version string and major release from
// `java -version` output. Legacy 1.N versions report N as the major.
func parseJavaVersion(out string) (string, int, error) {
	m := javaVersionPattern.FindStringSubmatch(out)
	if m == nil {
		return "", 0, configErrorf("cannot determine Java version from %q", strings.TrimSpace(out))
	}
	version := m[1]
	parts := strings.FieldsFunc(version, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(parts) == 0 {
		return "", 0, configErrorf("malformed Java version %q", version)
	}
	first := parts[0]
	if first == "1" {
		if len(parts) < 2 {
			return "", 0, configErrorf("malformed Java version %q", version)
		}
		first = parts[1]
	}
	major, err := strconv.Atoi(first)
	if err != nil {
		return "", 0, configErrorf("malformed Java version %q", version)
	}
	return version, major, nil
}

func exeSuffix(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

// javaTool returns the path of a tool from the configured JDK, or the bare
// tool name when no JDK home is configured. Paths are returned unchanged.
func (s *Session) javaTool(name string) string {
	if strings.ContainsRune(name, filepath.Separator) {
		return name
	}
	if s.Suite.Java.Home == "" {
		return exeSuffix(name)
	}
	return filepath.Join(s.Suite.Java.Home, "bin", exeSuffix(name))
}

// Java probes the host JDK once per session and enforces MinJavaMajor.
func (s *Session) Java(ctx context.Context) (*JavaInfo, error) {
	if s.java != nil {
		return s.java, nil
	}
	out, _, err := s.Runner.Output(ctx, Cmd{Argv: []string{s.javaTool("java"), "-version"}, Probe: true})
	if err != nil {
		return nil, configErrorf("cannot run %s -version: %v", s.javaTool("java"), err)
	}
	version, major, err := parseJavaVersion(out)
	if err != nil {
		return nil, err
	}
	if major < MinJavaMajor {
		return nil, configErrorf("requires Java version 1.%d or greater, got version %s", MinJavaMajor, version)
	}
	s.java = &JavaInfo{Home: s.Suite.Java.Home, Version: version, Major: major}
	return s.java, nil
}
