package main

import (
	"context"
	"path/filepath"
)

var jdwpArgs = []string{"-Xdebug", "-Xrunjdwp:transport=dt_socket,server=y,suspend=y,address=8000"}

func handleVM(ctx context.Context, s *Session, inv Invocation) error {
	return s.VM(ctx, inv.Args)
}

// vmVariant is the selected variant, or product when only the Java sources
// are checked out.
func (s *Session) vmVariant() Variant {
	if s.NativeSourcesAvailable() {
		return s.Variant
	}
	return Product
}

// WithVariant returns a copy of the session selecting variant v.
func (s *Session) WithVariant(v Variant) *Session {
	c := *s
	c.Variant = v
	return &c
}

// VMCmd builds the command line launching the VM with args.
func (s *Session) VMCmd(ctx context.Context, args []string) (Cmd, error) {
	return s.launchCmd(ctx, "-graal", args)
}

// launchCmd runs the variant JDK with the compiler selected by mode,
// -graal or -server.
func (s *Session) launchCmd(ctx context.Context, mode string, args []string) (Cmd, error) {
	jdk, err := s.JDK(ctx, s.vmVariant(), false)
	if err != nil {
		return Cmd{}, err
	}
	argv := []string{filepath.Join(jdk, "bin", exeSuffix("java")), mode}
	if s.Suite.Java.Debug {
		argv = append(argv, jdwpArgs...)
	}
	return Cmd{Argv: append(argv, args...)}, nil
}

// VM runs the VM and fails on a non-zero exit.
func (s *Session) VM(ctx context.Context, args []string) error {
	c, err := s.VMCmd(ctx, args)
	if err != nil {
		return err
	}
	_, err = s.Runner.Run(ctx, c)
	return err
}
