package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// eclipsePrefs are copied verbatim from the suite settings directory into
// every project's .settings directory.
var eclipsePrefs = []string{"org.eclipse.jdt.core.prefs", "org.eclipse.jdt.ui.prefs"}

func handleIdeInit(_ context.Context, s *Session, _ Invocation) error {
	updated := 0
	for i := range s.Suite.Projects {
		p := &s.Suite.Projects[i]
		if p.Native {
			continue
		}
		n, err := s.eclipseProject(p)
		if err != nil {
			return err
		}
		updated += n
	}
	s.Log.Info().Int("updated", updated).Msg("Eclipse configurations generated")
	return nil
}

// eclipseProject writes the Eclipse files of p and returns how many changed.
func (s *Session) eclipseProject(p *Project) (int, error) {
	dir := p.Path(s.Home)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}
	files := map[string][]byte{}

	classpath, err := s.eclipseClasspath(p)
	if err != nil {
		return 0, err
	}
	files[filepath.Join(dir, ".classpath")] = classpath

	csProject := s.Suite.Project(p.Checkstyle)
	if csProject == nil {
		return 0, configErrorf("project %s: unknown checkstyle project %q", p.Name, p.Checkstyle)
	}
	csConfig := filepath.Join(csProject.Path(s.Home), ".checkstyle_checks.xml")
	checkstyle := exists(csConfig)
	if checkstyle {
		data, err := s.eclipseCheckstyle(p)
		if err != nil {
			return 0, err
		}
		files[filepath.Join(dir, ".checkstyle")] = data
	}
	files[filepath.Join(dir, ".project")] = eclipseProjectFile(p.Name, checkstyle)

	settings := resolve(s.Home, s.Suite.Eclipse.SettingsDir)
	for _, name := range eclipsePrefs {
		data, err := os.ReadFile(filepath.Join(settings, name))
		if err != nil {
			s.Log.Debug().Str("file", name).Err(err).Msg("no Eclipse preferences template")
			continue
		}
		files[filepath.Join(dir, ".settings", name)] = data
	}

	changed := 0
	for path, data := range files {
		ok, err := UpdateFile(path, data)
		if err != nil {
			return changed, err
		}
		if ok {
			s.Log.Debug().Str("file", path).Msg("updated")
			changed++
		}
	}
	return changed, nil
}

func (s *Session) eclipseClasspath(p *Project) ([]byte, error) {
	var out bytes.Buffer
	println := func(format string, args ...any) {
		fmt.Fprintf(&out, format+"\n", args...)
	}
	println(`<?xml version="1.0" encoding="UTF-8"?>`)
	println(`<classpath>`)
	for _, src := range p.SourceDirs {
		if err := os.MkdirAll(filepath.Join(p.Path(s.Home), src), 0o755); err != nil {
			return nil, err
		}
		println("\t"+`<classpathentry kind="src" path="%s"/>`, attr(src))
	}
	println("\t" + `<classpathentry kind="con" path="org.eclipse.jdt.launching.JRE_CONTAINER"/>`)

	deps, err := s.Suite.AllDeps(p)
	if err != nil {
		return nil, err
	}
	for _, dep := range deps {
		if dep.Project != nil {
			println("\t"+`<classpathentry combineaccessrules="false" exported="true" kind="src" path="/%s"/>`, attr(dep.Project.Name))
			continue
		}
		lib := dep.Library
		switch {
		case lib.EclipseContainer != "":
			println("\t"+`<classpathentry exported="true" kind="con" path="%s"/>`, attr(lib.EclipseContainer))
		case lib.EclipseProject != "":
			println("\t"+`<classpathentry combineaccessrules="false" exported="true" kind="src" path="/%s"/>`, attr(lib.EclipseProject))
		case !lib.Optional:
			path := lib.Path
			if !filepath.IsAbs(path) {
				path = "/" + path
			}
			println("\t"+`<classpathentry exported="true" kind="lib" path="%s"/>`, attr(path))
		}
	}
	println("\t"+`<classpathentry kind="output" path="%s"/>`, attr(p.EclipseOutput))
	println(`</classpath>`)
	return out.Bytes(), nil
}

func (s *Session) eclipseCheckstyle(p *Project) ([]byte, error) {
	var out bytes.Buffer
	println := func(format string, args ...any) {
		fmt.Fprintf(&out, format+"\n", args...)
	}
	name := attr(s.Suite.Eclipse.CheckstyleName)
	println(`<?xml version="1.0" encoding="UTF-8"?>`)
	println(`<fileset-config file-format-version="1.2.0" simple-config="true">`)
	println("\t"+`<local-check-config name="%s" location="/%s/.checkstyle_checks.xml" type="project" description="">`, name, attr(p.Checkstyle))
	println("\t\t" + `<additional-data name="protect-config-file" value="false"/>`)
	println("\t" + `</local-check-config>`)
	println("\t"+`<fileset name="all" enabled="true" check-config-name="%s" local="true">`, name)
	println("\t\t" + `<file-match-pattern match-pattern="." include-pattern="true"/>`)
	println("\t" + `</fileset>`)
	println("\t" + `<filter name="FileTypesFilter" enabled="true">`)
	println("\t\t" + `<filter-data value="java"/>`)
	println("\t" + `</filter>`)

	exclude := filepath.Join(p.Path(s.Home), ".checkstyle.exclude")
	if exists(exclude) {
		dirs, err := readExcludes(p.Path(s.Home), exclude)
		if err != nil {
			return nil, err
		}
		println("\t" + `<filter name="FilesFromPackage" enabled="true">`)
		for _, d := range dirs {
			println("\t\t"+`<filter-data value="%s"/>`, attr(d))
		}
		println("\t" + `</filter>`)
	}
	println(`</fileset-config>`)
	return out.Bytes(), nil
}

// readExcludes returns the source directories listed in a checkstyle
// exclude file. Every listed entry must be an existing directory.
func readExcludes(projectDir, path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var dirs []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !isDir(filepath.Join(projectDir, line)) {
			return nil, configErrorf("excluded source directory listed in %s does not exist or is not a directory: %s", path, filepath.Join(projectDir, line))
		}
		dirs = append(dirs, line)
	}
	return dirs, sc.Err()
}

func eclipseProjectFile(name string, checkstyle bool) []byte {
	var out bytes.Buffer
	println := func(line string) {
		out.WriteString(line + "\n")
	}
	println(`<?xml version="1.0" encoding="UTF-8"?>`)
	println(`<projectDescription>`)
	println("\t<name>" + attr(name) + "</name>")
	println("\t<comment></comment>")
	println("\t<projects>")
	println("\t</projects>")
	println("\t<buildSpec>")
	println("\t\t<buildCommand>")
	println("\t\t\t<name>org.eclipse.jdt.core.javabuilder</name>")
	println("\t\t\t<arguments>")
	println("\t\t\t</arguments>")
	println("\t\t</buildCommand>")
	if checkstyle {
		println("\t\t<buildCommand>")
		println("\t\t\t<name>net.sf.eclipsecs.core.CheckstyleBuilder</name>")
		println("\t\t\t<arguments>")
		println("\t\t\t</arguments>")
		println("\t\t</buildCommand>")
	}
	println("\t</buildSpec>")
	println("\t<natures>")
	println("\t\t<nature>org.eclipse.jdt.core.javanature</nature>")
	if checkstyle {
		println("\t\t<nature>net.sf.eclipsecs.core.CheckstyleNature</nature>")
	}
	println("\t</natures>")
	println(`</projectDescription>`)
	return out.Bytes()
}

func attr(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
