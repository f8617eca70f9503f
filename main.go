package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/agilira/orpheus/pkg/orpheus"
)

const version = "0.9.0"

// EnvHome overrides the default home directory.
const EnvHome = "VMX_HOME"

var globalHelp = [][2]string{
	{"-H, --home DIR", "suite home directory (default $" + EnvHome + " or .)"},
	{"--suite FILE", "suite file (default vmx.yaml, vmx.yml or vmx.toml in home)"},
	{"--product", "select the product VM (default)"},
	{"--debug", "select the debug VM"},
	{"--fastdebug", "select the fastdebug VM"},
	{"--optimized", "select the optimized VM"},
	{"-n, --dry-run", "print external commands instead of running them"},
	{"-v, --verbose", "echo commands and enable debug logging"},
	{"-h, --help", "show this help"},
	{"--version", "print the vmx version"},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string) int {
	st, rest, err := parseGlobals(args)
	if err != nil {
		return fail(err)
	}

	if len(rest) == 0 || isHelp(rest[0]) {
		reg := NewCommandTable(nativeSources(st.Home))
		if len(rest) > 1 {
			c, err := reg.Lookup(rest[1])
			if err != nil {
				return fail(err)
			}
			fmt.Print(commandHelp(c))
			return 0
		}
		fmt.Print(reg.Usage())
		if len(rest) == 0 {
			return int(UsageInvalid)
		}
		return 0
	}
	if rest[0] == "--version" || rest[0] == "version" {
		fmt.Printf("vmx %s\n", version)
		return 0
	}

	log := NewLogger(os.Stderr, st.Verbose)
	s, err := NewSession(st, log)
	if err != nil {
		return fail(err)
	}
	reg := NewCommandTable(s.NativeSourcesAvailable())
	if err := dispatch(ctx, s, reg, rest); err != nil {
		return fail(err)
	}
	return 0
}

func fail(err error) int {
	fmt.Fprintf(os.Stderr, "vmx: %v\n", err)
	return ExitCode(err)
}

func isHelp(arg string) bool {
	return arg == "help" || arg == "-h" || arg == "--help"
}

// wantsHelp mirrors orpheus, which answers -h or --help anywhere in the
// command arguments.
func wantsHelp(args []string) bool {
	for _, a := range args {
		if a == "-h" || a == "--help" {
			return true
		}
	}
	return false
}

// parseGlobals consumes the global options in front of the command name and
// returns the remaining arguments, command first.
func parseGlobals(args []string) (Settings, []string, error) {
	st := Settings{Home: os.Getenv(EnvHome)}
	if st.Home == "" {
		st.Home = "."
	}
	i := 0
	value := func(name string) (string, error) {
		if i+1 >= len(args) || args[i+1] == "" {
			return "", usageErrorf("option %s requires a value", name)
		}
		i++
		return args[i], nil
	}
	for ; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			break
		}
		if arg == "--" {
			i++
			break
		}
		name, inline, hasInline := strings.Cut(arg, "=")
		var err error
		switch name {
		case "-H", "--home":
			if hasInline {
				st.Home = inline
			} else {
				st.Home, err = value(name)
			}
		case "--suite":
			if hasInline {
				st.SuiteFile = inline
			} else {
				st.SuiteFile, err = value(name)
			}
		case "--product", "--debug", "--fastdebug", "--optimized":
			st.Variant = Variant(strings.TrimPrefix(name, "--"))
		case "-n", "--dry-run":
			st.DryRun = true
		case "-v", "--verbose":
			st.Verbose = true
		case "-h", "--help", "--version":
			return st, args[i:], nil
		default:
			return st, nil, usageErrorf("unknown global option %s", arg)
		}
		if err != nil {
			return st, nil, err
		}
	}
	return st, args[i:], nil
}

// dispatch runs the command named by args[0] after checking the host Java.
// Passthrough commands get their arguments untouched; the others are parsed
// by orpheus.
func dispatch(ctx context.Context, s *Session, reg *Registry, args []string) error {
	c, err := reg.Lookup(args[0])
	if err != nil {
		return err
	}
	skipJava := c.NoJava || !c.Passthrough && wantsHelp(args[1:])
	if !skipJava {
		if _, err := s.Java(ctx); err != nil {
			return err
		}
	}
	if c.Passthrough {
		return c.Handler(ctx, s, Invocation{Args: args[1:], Flags: map[string]string{}})
	}
	return runApp(ctx, s, reg, args)
}

func runApp(ctx context.Context, s *Session, reg *Registry, args []string) error {
	var result error
	app := orpheus.New("vmx").
		SetDescription("build and test driver for the Graal VM").
		SetVersion(version)
	for _, c := range reg.Commands() {
		if c.Passthrough {
			continue
		}
		cmd := orpheus.NewCommand(c.Name, c.Description).
			SetHandler(orpheusHandler(ctx, s, c, &result))
		for _, f := range c.Flags {
			if f.Bool {
				cmd.AddBoolFlag(f.Name, f.Short, false, f.Help)
			} else {
				cmd.AddFlag(f.Name, f.Short, f.Default, f.Help)
			}
		}
		app.AddCommand(cmd)
	}
	if err := app.Run(args); err != nil {
		if result != nil {
			return result
		}
		return usageErrorf("%s: %v", args[0], err)
	}
	return result
}

// orpheusHandler adapts a registered handler to orpheus. The handler error
// is also stored in result so its exit code survives orpheus.
func orpheusHandler(ctx context.Context, s *Session, c Registration, result *error) func(*orpheus.Context) error {
	return func(oc *orpheus.Context) error {
		// oc.Args still holds the flags; the parsed set keeps the positionals.
		inv := Invocation{Args: oc.Flags.Args(), Flags: make(map[string]string, len(c.Flags))}
		for _, f := range c.Flags {
			if f.Bool {
				inv.Flags[f.Name] = strconv.FormatBool(oc.GetFlagBool(f.Name))
			} else {
				inv.Flags[f.Name] = oc.GetFlagString(f.Name)
			}
		}
		err := c.Handler(ctx, s, inv)
		if err == nil {
			return nil
		}
		var coded interface{ ExitCode() int }
		if !errors.As(err, &coded) {
			err = orpheus.ExecutionError(c.Name, err.Error())
		}
		*result = err
		return err
	}
}

func commandHelp(c Registration) string {
	var b strings.Builder
	fmt.Fprintf(&b, "usage: vmx %s\n\n%s\n", strings.TrimSpace(c.Name+" "+c.Usage), c.Description)
	if len(c.Flags) > 0 {
		b.WriteString("\noptions:\n")
		for _, f := range c.Flags {
			name := "--" + f.Name
			if f.Short != "" {
				name = "-" + f.Short + ", " + name
			}
			if !f.Bool {
				name += " VALUE"
			}
			fmt.Fprintf(&b, "  %-22s %s\n", name, f.Help)
		}
	}
	return b.String()
}
