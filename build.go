package main

import (
	"context"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

var buildFlags = []Flag{
	{Name: "no-java", Bool: true, Help: "do not compile the Java projects"},
	{Name: "no-native", Bool: true, Help: "do not build the native VM"},
	{Name: "source", Default: "", Help: "Java source level (default from the suite)"},
}

func handleBuild(ctx context.Context, s *Session, inv Invocation) error {
	var variants []Variant
	for _, a := range inv.Args {
		v, err := ParseVariant(a)
		if err != nil {
			return err
		}
		variants = append(variants, v)
	}
	if len(variants) == 0 {
		variants = []Variant{s.Variant}
	}
	return s.Build(ctx, BuildOptions{
		Java:     !inv.Bool("no-java"),
		Native:   !inv.Bool("no-native"),
		Source:   inv.String("source"),
		Variants: variants,
	})
}

type BuildOptions struct {
	Java     bool
	Native   bool
	Source   string
	Variants []Variant
}

// Build compiles the Java projects and then, when the native sources are
// present, the VM for each requested variant.
func (s *Session) Build(ctx context.Context, opts BuildOptions) error {
	if opts.Java {
		if err := s.BuildJava(ctx, opts.Source); err != nil {
			return err
		}
	}
	if !opts.Native || !s.NativeSourcesAvailable() {
		return nil
	}
	for _, v := range opts.Variants {
		if err := s.BuildNative(ctx, v); err != nil {
			return err
		}
	}
	return nil
}

// BuildJava compiles every non-native project in dependency order.
func (s *Session) BuildJava(ctx context.Context, source string) error {
	if source == "" {
		source = s.Suite.Java.Source
	}
	order, err := s.Suite.BuildOrder()
	if err != nil {
		return err
	}
	for _, p := range order {
		var sources []string
		for _, dir := range p.SourceDirs {
			found, err := javaSources(filepath.Join(p.Path(s.Home), dir))
			if err != nil {
				return err
			}
			sources = append(sources, found...)
		}
		if len(sources) == 0 {
			s.Log.Debug().Str("project", p.Name).Msg("no Java sources")
			continue
		}
		out := p.OutputDir(s.Home)
		if err := os.MkdirAll(out, 0o755); err != nil {
			return err
		}
		cp, err := s.Suite.Classpath(s.Home, p)
		if err != nil {
			return err
		}
		s.Log.Info().Str("project", p.Name).Int("sources", len(sources)).Msg("compiling")
		argv := []string{s.javaTool(s.Suite.Java.Compiler), "-source", source, "-d", out, "-cp", cp}
		if _, err := s.Runner.Run(ctx, Cmd{Argv: append(argv, sources...), Dir: p.Path(s.Home)}); err != nil {
			return err
		}
	}
	return nil
}

// BuildNative runs the native make for variant v against its managed JDK.
func (s *Session) BuildNative(ctx context.Context, v Variant) error {
	jdk, err := s.JDK(ctx, v, true)
	if err != nil {
		return err
	}
	graalDir := filepath.Join(jdk, "jre", "lib", "amd64", "graal")
	if !exists(graalDir) {
		s.Log.Info().Str("dir", graalDir).Msg("creating Graal directory in JDK")
		if err := os.MkdirAll(graalDir, 0o755); err != nil {
			return err
		}
	}
	env := envDefaults(
		"ARCH_DATA_MODEL", "64",
		"LANG", "C",
		"HOTSPOT_BUILD_JOBS", "3",
		"ALT_BOOTDIR", jdk,
		"INSTALL", "y",
	)
	s.Log.Info().Str("variant", string(v)).Str("target", v.MakeTarget()).Msg("building VM")
	_, err = s.Runner.Run(ctx, Cmd{
		Argv: []string{gmake(), v.MakeTarget()},
		Dir:  filepath.Join(s.Home, "make"),
		Env:  env,
		Stderr: func(line string) bool {
			return !strings.Contains(line, "Xusage.txt")
		},
	})
	return err
}

// gmake prefers GNU make under its gmake name where it is installed so.
func gmake() string {
	if _, err := exec.LookPath("gmake"); err == nil {
		return "gmake"
	}
	return "make"
}

// javaSources lists the .java files under dir, sorted. A missing dir has
// no sources.
func javaSources(dir string) ([]string, error) {
	if !isDir(dir) {
		return nil, nil
	}
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".java") {
			out = append(out, path)
		}
		return nil
	})
	sort.Strings(out)
	return out, err
}
