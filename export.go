package main

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
)

func handleExport(ctx context.Context, s *Session, inv Invocation) error {
	java, err := s.Java(ctx)
	if err != nil {
		return err
	}
	if len(inv.Args) > 1 {
		return usageErrorf("export takes at most one zip file, got %d arguments", len(inv.Args))
	}
	zipfile := filepath.Join(s.Home, "graalvm-"+runtime.GOOS+".zip")
	if len(inv.Args) == 1 {
		zipfile = resolve(s.Home, inv.Args[0])
	}

	if !inv.Bool("omit-vm-build") {
		err := s.WithVariant(Product).Build(ctx, BuildOptions{Java: true, Native: true, Variants: []Variant{Product}})
		if err != nil {
			return err
		}
	}

	tmp, err := os.MkdirTemp(s.Home, "tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err := os.RemoveAll(tmp); err != nil {
			s.Log.Warn().Err(err).Str("dir", tmp).Msg("cannot remove staging directory")
		}
	}()

	argv := []string{"hg", "archive"}
	for _, inc := range s.Suite.Archive {
		argv = append(argv, "-I", inc)
	}
	s.Log.Info().Str("dir", tmp).Msg("archiving tracked sources")
	if _, err := s.Runner.Run(ctx, Cmd{Argv: append(argv, tmp), Dir: s.Home}); err != nil {
		return err
	}
	if s.DryRun {
		fmt.Fprintf(s.out(), "  [DRY RUN] Would write %s\n", zipfile)
		return nil
	}

	jdk, err := s.JDK(ctx, Product, false)
	if err != nil {
		return err
	}
	staged := filepath.Join(tmp, "jdk"+java.Version)
	s.Log.Info().Str("jdk", jdk).Msg("copying product JDK")
	if err := copyTree(jdk, staged); err != nil {
		return err
	}

	if !inv.Bool("omit-dist-init") {
		for _, cmd := range []string{"build", "ideinit"} {
			c := Cmd{Argv: []string{s.Exe, "--home", tmp, cmd}, Dir: tmp}
			if _, err := s.Runner.Run(ctx, c); err != nil {
				return err
			}
		}
	}

	s.Log.Info().Str("zip", zipfile).Msg("writing distribution")
	return zipDir(tmp, zipfile)
}

// zipDir writes the contents of dir into a new zip file at dst. Entry names
// are relative to dir and use forward slashes.
func zipDir(dir, dst string) (err error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	zw := zip.NewWriter(f)
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil || rel == "." {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		hdr, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if d.IsDir() {
			hdr.Name += "/"
			_, err = zw.CreateHeader(hdr)
			return err
		}
		hdr.Method = zip.Deflate
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			_, err = io.WriteString(w, link)
			return err
		}
		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()
		_, err = io.Copy(w, in)
		return err
	})
	if err != nil {
		_ = zw.Close()
		return err
	}
	return zw.Close()
}
