package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ===== JDK PROVISIONING TESTS =====

func TestJDKCopiesHostJDK(t *testing.T) {
	s, _ := newTestSession(t, nil)
	host := makeJDK(t, filepath.Join(t.TempDir(), "host"))
	writeFile(t, filepath.Join(host, "bin", "java"), "#!/bin/sh\n")
	if err := os.Symlink("java", filepath.Join(host, "bin", "java-link")); err != nil {
		t.Fatal(err)
	}
	s.Suite.Java.Home = host

	jdk, err := s.JDK(context.Background(), Product, false)
	if err != nil {
		t.Fatalf("JDK failed: %v", err)
	}
	if jdk != filepath.Join(s.Home, "jdk"+testJavaVersion) {
		t.Errorf("jdk = %s", jdk)
	}
	if got := readFile(t, filepath.Join(jdk, "bin", "java")); got != "#!/bin/sh\n" {
		t.Errorf("copied java = %q", got)
	}
	if link, err := os.Readlink(filepath.Join(jdk, "bin", "java-link")); err != nil || link != "java" {
		t.Errorf("symlink not preserved: %q %v", link, err)
	}
	cfg := readFile(t, filepath.Join(jdk, "jre", "lib", "amd64", "jvm.cfg"))
	if !strings.HasSuffix(cfg, graalKnownLine+"\n") {
		t.Errorf("jvm.cfg lacks %q:\n%s", graalKnownLine, cfg)
	}
	if cfg := readFile(t, filepath.Join(host, "jre", "lib", "amd64", "jvm.cfg")); strings.Contains(cfg, graalKnownLine) {
		t.Error("host jvm.cfg was modified")
	}
}

func TestJDKAppendsGraalLineOnce(t *testing.T) {
	s, _ := newTestSession(t, nil)
	jdk := makeJDK(t, filepath.Join(s.Home, "jdk"+testJavaVersion))
	for i := 0; i < 3; i++ {
		if _, err := s.JDK(context.Background(), Product, false); err != nil {
			t.Fatal(err)
		}
	}
	cfg := readFile(t, filepath.Join(jdk, "jre", "lib", "amd64", "jvm.cfg"))
	if n := strings.Count(cfg, graalKnownLine); n != 1 {
		t.Errorf("%q appears %d times:\n%s", graalKnownLine, n, cfg)
	}
}

func TestJDKErrors(t *testing.T) {
	t.Run("no java home", func(t *testing.T) {
		s, _ := newTestSession(t, nil)
		if _, err := s.JDK(context.Background(), Product, false); !IsKind(err, ConfigInvalid) {
			t.Errorf("expected config error, got %v", err)
		}
	})
	t.Run("incomplete host jdk", func(t *testing.T) {
		s, _ := newTestSession(t, nil)
		host := makeJDK(t, filepath.Join(t.TempDir(), "host"))
		if err := os.RemoveAll(filepath.Join(host, "man")); err != nil {
			t.Fatal(err)
		}
		s.Suite.Java.Home = host
		_, err := s.JDK(context.Background(), Product, false)
		if !IsKind(err, ConfigInvalid) || !strings.Contains(err.Error(), "man") {
			t.Errorf("expected missing man directory error, got %v", err)
		}
	})
	t.Run("missing jvm.cfg", func(t *testing.T) {
		s, _ := newTestSession(t, nil)
		jdk := makeJDK(t, filepath.Join(s.Home, "jdk"+testJavaVersion))
		if err := os.Remove(filepath.Join(jdk, "jre", "lib", "amd64", "jvm.cfg")); err != nil {
			t.Fatal(err)
		}
		if _, err := s.JDK(context.Background(), Product, false); !IsKind(err, ConfigInvalid) {
			t.Errorf("expected config error, got %v", err)
		}
	})
}

func TestJDKVariants(t *testing.T) {
	s, _ := newTestSession(t, nil)
	jdk := makeJDK(t, filepath.Join(s.Home, "jdk"+testJavaVersion))

	_, err := s.JDK(context.Background(), FastDebug, false)
	if !IsKind(err, ConfigInvalid) || !strings.Contains(err.Error(), "vmx build fastdebug") {
		t.Fatalf("uncreated variant: %v", err)
	}

	res, err := s.JDK(context.Background(), FastDebug, true)
	if err != nil {
		t.Fatal(err)
	}
	if res != filepath.Join(jdk, "fastdebug") || !isDir(filepath.Join(res, "jre", "lib")) {
		t.Errorf("variant jdk = %s", res)
	}
	if again, err := s.JDK(context.Background(), FastDebug, false); err != nil || again != res {
		t.Errorf("existing variant: %s %v", again, err)
	}
}
