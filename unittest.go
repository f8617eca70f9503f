package main

import (
	"bufio"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var pkgDecl = regexp.MustCompile(`^package\s+([a-zA-Z_][\w.]*)\s*;$`)

func handleUnitTest(ctx context.Context, s *Session, inv Invocation) error {
	return s.UnitTests(ctx, inv.Args)
}

// UnitTests runs the unit-test classes of every configured project through
// JUnitCore on the VM. Classes are kept when they contain any positive
// filter and none of the negative (-prefixed) filters.
func (s *Session) UnitTests(ctx context.Context, filters []string) error {
	for _, name := range s.Suite.UnitTestProjects() {
		p := s.Suite.Project(name)
		var classes []string
		for _, dir := range p.SourceDirs {
			found, err := findTestClasses(filepath.Join(p.Path(s.Home), dir), s.Suite.UnitTests[name])
			if err != nil {
				return err
			}
			classes = append(classes, found...)
		}
		classes = filterClasses(classes, filters)
		if len(classes) == 0 {
			s.Log.Info().Str("project", name).Msg("no unit tests selected")
			continue
		}
		cp, err := s.Suite.Classpath(s.Home, p)
		if err != nil {
			return err
		}
		s.Log.Info().Str("project", name).Int("classes", len(classes)).Msg("running unit tests")
		args := []string{"-XX:-BootstrapGraal", "-esa", "-Xbootclasspath/a:" + cp, "org.junit.runner.JUnitCore"}
		if err := s.VM(ctx, append(args, classes...)); err != nil {
			return err
		}
	}
	return nil
}

// findTestClasses returns the fully qualified names of the classes under
// srcDir that declare a @Test method and belong to one of pkgs (or any
// package when pkgs is empty).
func findTestClasses(srcDir string, pkgs []string) ([]string, error) {
	if !isDir(srcDir) {
		return nil, nil
	}
	var classes []string
	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() || !strings.HasSuffix(name, ".java") || name == "package-info.java" {
			return nil
		}
		pkg, hasTest, err := scanTestSource(path)
		if err != nil {
			return err
		}
		if !hasTest {
			return nil
		}
		if pkg == "" {
			return configErrorf("%s declares tests but no package", path)
		}
		if inPackages(pkg, pkgs) {
			classes = append(classes, pkg+"."+strings.TrimSuffix(name, ".java"))
		}
		return nil
	})
	sort.Strings(classes)
	return classes, err
}

func scanTestSource(path string) (pkg string, hasTest bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", false, err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "package ") {
			if m := pkgDecl.FindStringSubmatch(strings.TrimRight(line, " \t\r")); m != nil {
				pkg = m[1]
			}
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(line), "@Test") {
			return pkg, true, nil
		}
	}
	return pkg, false, sc.Err()
}

func inPackages(pkg string, pkgs []string) bool {
	if len(pkgs) == 0 {
		return true
	}
	for _, p := range pkgs {
		if pkg == p || strings.HasPrefix(pkg, p+".") {
			return true
		}
	}
	return false
}

func filterClasses(classes, filters []string) []string {
	var pos, neg []string
	for _, f := range filters {
		switch {
		case f == "" || f == "-":
		case strings.HasPrefix(f, "-"):
			neg = append(neg, f[1:])
		default:
			pos = append(pos, f)
		}
	}
	var out []string
	for _, c := range classes {
		if len(pos) > 0 && !containsAny(c, pos) {
			continue
		}
		if len(neg) > 0 && containsAny(c, neg) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
