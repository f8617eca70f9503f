package main

import (
	"bufio"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// jdkDirs are copied from the host JDK into the managed JDK.
var jdkDirs = []string{"bin", "db", "include", "jre", "lib", "man"}

const graalKnownLine = "-graal KNOWN"

// JDK returns the managed JDK for variant v, creating it from the host JDK
// when missing. Non-product variants live in a subdirectory that is only
// created when create is true.
func (s *Session) JDK(ctx context.Context, v Variant, create bool) (string, error) {
	java, err := s.Java(ctx)
	if err != nil {
		return "", err
	}
	jdk := filepath.Join(s.Home, "jdk"+java.Version)
	if !exists(jdk) {
		src := s.Suite.Java.Home
		if src == "" {
			return "", configErrorf("java.home is not set (configure it in the suite or export JAVA_HOME)")
		}
		s.Log.Info().Str("jdk", jdk).Str("from", src).Msg("creating JDK")
		if err := copyJDK(src, jdk); err != nil {
			return "", err
		}
	}

	jvmCfg := filepath.Join(jdk, "jre", "lib", "amd64", "jvm.cfg")
	if !exists(jvmCfg) {
		return "", configErrorf("%s does not exist", jvmCfg)
	}
	added, err := ensureLine(jvmCfg, graalKnownLine)
	if err != nil {
		return "", err
	}
	if added {
		s.Log.Info().Str("file", jvmCfg).Msgf("appended %q", graalKnownLine)
	}

	if v == Product {
		return jdk, nil
	}
	res := filepath.Join(jdk, string(v))
	if !exists(res) {
		if !create {
			return "", configErrorf("the %s VM has not been created - run 'vmx clean; vmx build %s'", v, v)
		}
		s.Log.Info().Str("jdk", res).Msg("creating variant JDK")
		if err := copyJDK(jdk, res); err != nil {
			return "", err
		}
	}
	return res, nil
}

func copyJDK(src, dst string) error {
	for _, d := range jdkDirs {
		if !isDir(filepath.Join(src, d)) {
			return configErrorf("host JDK directory is missing: %s", filepath.Join(src, d))
		}
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}
	for _, d := range jdkDirs {
		if err := copyTree(filepath.Join(src, d), filepath.Join(dst, d)); err != nil {
			return err
		}
	}
	return nil
}

// ensureLine appends line to path unless a line already contains it.
func ensureLine(path, line string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if strings.Contains(sc.Text(), line) {
			_ = f.Close()
			return false, nil
		}
	}
	_ = f.Close()
	if err := sc.Err(); err != nil {
		return false, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	out, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		return false, err
	}
	defer out.Close()
	prefix := ""
	if len(data) > 0 && data[len(data)-1] != '\n' {
		prefix = "\n"
	}
	_, err = out.WriteString(prefix + line + "\n")
	return err == nil, err
}

// copyTree copies a directory tree, preserving file modes and symlinks.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		info, err := d.Info()
		if err != nil {
			return err
		}
		switch {
		case d.IsDir():
			return os.MkdirAll(target, info.Mode().Perm()|0o700)
		case info.Mode()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		default:
			return copyFile(path, target, info.Mode().Perm())
		}
	})
}

func copyFile(src, dst string, mode fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
