package main

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"
)

func TestZipDir(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "mx", "commands.py"), "print('x')\n")
	writeFile(t, filepath.Join(src, "graal", "README"), "graal\n")
	dst := filepath.Join(t.TempDir(), "out", "dist.zip")

	if err := zipDir(src, dst); err != nil {
		t.Fatal(err)
	}
	zr, err := zip.OpenReader(dst)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
		if f.Name == "mx/commands.py" {
			rc, err := f.Open()
			if err != nil {
				t.Fatal(err)
			}
			data, _ := io.ReadAll(rc)
			rc.Close()
			if string(data) != "print('x')\n" {
				t.Errorf("content = %q", data)
			}
		}
	}
	sort.Strings(names)
	want := "graal/,graal/README,mx/,mx/commands.py"
	if strings.Join(names, ",") != want {
		t.Errorf("entries = %v, want %s", names, want)
	}
}

func TestExportDryRun(t *testing.T) {
	s, runner := newTestSession(t, nil)
	s.DryRun = true

	err := handleExport(context.Background(), s, Invocation{Flags: map[string]string{"omit-vm-build": "true"}})
	if err != nil {
		t.Fatal(err)
	}
	cmds := runner.commands()
	if len(cmds) != 1 || !strings.HasPrefix(cmds[0], "hg archive -I graal -I mx -I mxtool -I mx.sh "+filepath.Join(s.Home, "tmp")) {
		t.Errorf("commands = %v", cmds)
	}
	want := filepath.Join(s.Home, "graalvm-"+runtime.GOOS+".zip")
	if !strings.Contains(sessionOutput(s), want) {
		t.Errorf("output %q does not name %s", sessionOutput(s), want)
	}
	entries, _ := os.ReadDir(s.Home)
	if len(entries) != 0 {
		t.Errorf("staging directory left behind: %v", entries)
	}
}

func TestExportStagesDistribution(t *testing.T) {
	s, runner := newTestSession(t, nil)
	makeJDK(t, filepath.Join(s.Home, "jdk"+testJavaVersion))
	writeFile(t, filepath.Join(s.Home, "jdk"+testJavaVersion, "bin", "java"), "java\n")
	runner.respond = func(c Cmd) (string, int) {
		if c.Argv[0] == "hg" {
			writeFile(t, filepath.Join(c.Argv[len(c.Argv)-1], "mx", "projects"), "project@x\n")
		}
		return "", 0
	}

	err := handleExport(context.Background(), s, Invocation{
		Args:  []string{"dist/graal.zip"},
		Flags: map[string]string{"omit-vm-build": "true"},
	})
	if err != nil {
		t.Fatal(err)
	}

	cmds := runner.commands()
	if len(cmds) != 3 || !strings.HasSuffix(cmds[1], " build") || !strings.HasSuffix(cmds[2], " ideinit") {
		t.Errorf("commands = %v", cmds)
	}
	zr, err := zip.OpenReader(filepath.Join(s.Home, "dist", "graal.zip"))
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()
	found := map[string]bool{}
	for _, f := range zr.File {
		found[f.Name] = true
	}
	if !found["mx/projects"] || !found["jdk"+testJavaVersion+"/bin/java"] {
		t.Errorf("zip entries = %v", found)
	}
}

func TestExportRejectsExtraArguments(t *testing.T) {
	s, _ := newTestSession(t, nil)
	err := handleExport(context.Background(), s, Invocation{Args: []string{"a.zip", "b.zip"}})
	if ExitCode(err) != 2 {
		t.Errorf("exit code = %d (%v)", ExitCode(err), err)
	}
}
