package main

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// suiteFiles are probed in order when no suite file is given.
var suiteFiles = []string{"vmx.yaml", "vmx.yml", "vmx.toml"}

// LoadSuite reads the suite file at path, or the first of suiteFiles found
// in home when path is empty. A home without a suite file yields an empty
// suite with defaults applied.
func LoadSuite(home, path string) (*Suite, error) {
	if path == "" {
		for _, name := range suiteFiles {
			candidate := filepath.Join(home, name)
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	s := &Suite{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, configErrorf("cannot read suite %s: %v", path, err)
		}
		if err := decodeSuite(path, data, s); err != nil {
			return nil, err
		}
	}
	s.applyDefaults()
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func decodeSuite(path string, data []byte, s *Suite) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(s); err != nil {
			return configErrorf("invalid suite %s: %v", path, err)
		}
	default:
		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}
		if err := yaml.Unmarshal(data, s); err != nil {
			return configErrorf("invalid suite %s: %v", path, err)
		}
	}
	return nil
}

func (s *Suite) applyDefaults() {
	if s.Java.Home == "" {
		s.Java.Home = os.Getenv("JAVA_HOME")
	}
	if s.Java.Compiler == "" {
		s.Java.Compiler = "javac"
	}
	if s.Java.Source == "" {
		s.Java.Source = "1.7"
	}
	if s.Eclipse.SettingsDir == "" {
		s.Eclipse.SettingsDir = "mx"
	}
	if s.Eclipse.CheckstyleName == "" {
		s.Eclipse.CheckstyleName = "Graal Checks"
	}
	if len(s.Archive) == 0 {
		s.Archive = []string{"graal", "mx", "mxtool", "mx.sh"}
	}
	if len(s.GateVariants) == 0 {
		s.GateVariants = []string{string(Product), string(FastDebug)}
	}
	for i := range s.Projects {
		p := &s.Projects[i]
		if p.Dir == "" {
			p.Dir = p.Name
		}
		if len(p.SourceDirs) == 0 {
			p.SourceDirs = []string{"src"}
		}
		if p.EclipseOutput == "" {
			p.EclipseOutput = "bin"
		}
		if p.Checkstyle == "" {
			p.Checkstyle = p.Name
		}
	}
}

func (s *Suite) validate() error {
	seen := map[string]bool{}
	for _, p := range s.Projects {
		if strings.TrimSpace(p.Name) == "" {
			return configErrorf("project without a name")
		}
		if seen[p.Name] {
			return configErrorf("duplicate project or library %q", p.Name)
		}
		seen[p.Name] = true
	}
	for _, l := range s.Libraries {
		if strings.TrimSpace(l.Name) == "" {
			return configErrorf("library without a name")
		}
		if seen[l.Name] {
			return configErrorf("duplicate project or library %q", l.Name)
		}
		seen[l.Name] = true
	}
	for _, v := range s.GateVariants {
		if _, err := ParseVariant(v); err != nil {
			return err
		}
	}
	for proj := range s.UnitTests {
		if s.Project(proj) == nil {
			return configErrorf("unittests refer to unknown project %q", proj)
		}
	}
	if cc := s.Checks.Copyright; cc.Project != "" || cc.MainClass != "" {
		if s.Project(cc.Project) == nil {
			return configErrorf("copyright check refers to unknown project %q", cc.Project)
		}
		if cc.MainClass == "" {
			return configErrorf("copyright check has no main class")
		}
	}
	for name, e := range s.Examples {
		if s.Project(e.Project) == nil {
			return configErrorf("example %s refers to unknown project %q", name, e.Project)
		}
		if e.MainClass == "" {
			return configErrorf("example %s has no main class", name)
		}
	}
	return nil
}

// Project returns the named project or nil.
func (s *Suite) Project(name string) *Project {
	for i := range s.Projects {
		if s.Projects[i].Name == name {
			return &s.Projects[i]
		}
	}
	return nil
}

// Library returns the named library or nil.
func (s *Suite) Library(name string) *Library {
	for i := range s.Libraries {
		if s.Libraries[i].Name == name {
			return &s.Libraries[i]
		}
	}
	return nil
}

// Benchmark returns the named benchmark or nil.
func (s *Suite) Benchmark(name string) *Benchmark {
	for i := range s.Benchmarks {
		if s.Benchmarks[i].Name == name {
			return &s.Benchmarks[i]
		}
	}
	return nil
}

// BenchmarksAt returns the benchmarks enabled at level, in suite order.
func (s *Suite) BenchmarksAt(level string) []Benchmark {
	var out []Benchmark
	for _, b := range s.Benchmarks {
		if b.Levels[level] > 0 {
			out = append(out, b)
		}
	}
	return out
}

// AllDeps returns the transitive dependencies of p, dependencies first,
// excluding p itself.
func (s *Suite) AllDeps(p *Project) ([]Dependency, error) {
	var out []Dependency
	state := map[string]int{} // 1 visiting, 2 done
	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		switch state[name] {
		case 1:
			return configErrorf("dependency cycle: %s", strings.Join(append(path, name), " -> "))
		case 2:
			return nil
		}
		if lib := s.Library(name); lib != nil {
			state[name] = 2
			out = append(out, Dependency{Library: lib})
			return nil
		}
		proj := s.Project(name)
		if proj == nil {
			return configErrorf("project %s depends on unknown %q", p.Name, name)
		}
		state[name] = 1
		for _, d := range proj.Dependencies {
			if err := visit(d, append(path, name)); err != nil {
				return err
			}
		}
		state[name] = 2
		out = append(out, Dependency{Project: proj})
		return nil
	}
	if err := visit(p.Name, nil); err != nil {
		return nil, err
	}
	return out[:len(out)-1], nil
}

// BuildOrder returns the non-native projects so that every project follows
// its project dependencies. Ties keep suite order.
func (s *Suite) BuildOrder() ([]*Project, error) {
	var order []*Project
	placed := map[string]bool{}
	for i := range s.Projects {
		p := &s.Projects[i]
		deps, err := s.AllDeps(p)
		if err != nil {
			return nil, err
		}
		for _, d := range append(deps, Dependency{Project: p}) {
			if d.Project == nil || d.Project.Native || placed[d.Project.Name] {
				continue
			}
			placed[d.Project.Name] = true
			order = append(order, d.Project)
		}
	}
	return order, nil
}

// UnitTestProjects returns the project names of the unit-test table, sorted.
func (s *Suite) UnitTestProjects() []string {
	names := make([]string, 0, len(s.UnitTests))
	for name := range s.UnitTests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Path returns the absolute project directory.
func (p *Project) Path(home string) string {
	return resolve(home, p.Dir)
}

// OutputDir returns the absolute class output directory.
func (p *Project) OutputDir(home string) string {
	return filepath.Join(p.Path(home), p.EclipseOutput)
}

// Classpath returns the class path needed to compile or run p.
func (s *Suite) Classpath(home string, p *Project) (string, error) {
	deps, err := s.AllDeps(p)
	if err != nil {
		return "", err
	}
	entries := []string{p.OutputDir(home)}
	for _, d := range deps {
		if d.Project != nil {
			if !d.Project.Native {
				entries = append(entries, d.Project.OutputDir(home))
			}
			continue
		}
		entries = append(entries, resolve(home, d.Library.Path))
	}
	return strings.Join(entries, string(os.PathListSeparator)), nil
}

func resolve(home, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(home, path)
}
