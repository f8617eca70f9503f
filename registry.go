package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Handler runs one command invocation.
type Handler func(ctx context.Context, s *Session, inv Invocation) error

// Flag declares a command-specific option.
type Flag struct {
	Name    string
	Short   string
	Default string
	Help    string
	Bool    bool
}

// Registration is one entry of the command table.
type Registration struct {
	Name        string
	Usage       string
	Description string
	Handler     Handler
	Flags       []Flag
	// Passthrough commands receive their arguments verbatim; they are JVM
	// options the flag parser must not see.
	Passthrough bool
	// NoJava commands run without the host Java version check.
	NoJava bool
}

// Invocation is the parsed command line handed to a Handler.
type Invocation struct {
	Args  []string
	Flags map[string]string
}

func (i Invocation) String(name string) string {
	return i.Flags[name]
}

func (i Invocation) Bool(name string) bool {
	b, _ := strconv.ParseBool(i.Flags[name])
	return b
}

// Registry maps command names to registrations.
type Registry struct {
	commands map[string]Registration
}

func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Registration)}
}

// Register adds reg. It panics if the name is empty, already taken, or the
// handler is missing.
func (r *Registry) Register(reg Registration) {
	if strings.TrimSpace(reg.Name) == "" || reg.Handler == nil {
		panic(fmt.Sprintf("invalid command registration %q", reg.Name))
	}
	if _, exists := r.commands[reg.Name]; exists {
		panic(fmt.Sprintf("command %s already registered", reg.Name))
	}
	r.commands[reg.Name] = reg
}

// Replace swaps the registration of an existing command. It panics if the
// command was never registered.
func (r *Registry) Replace(reg Registration) {
	if _, exists := r.commands[reg.Name]; !exists || reg.Handler == nil {
		panic(fmt.Sprintf("cannot replace command %q", reg.Name))
	}
	r.commands[reg.Name] = reg
}

// Lookup returns the registration for name, or a usage error naming the
// available commands.
func (r *Registry) Lookup(name string) (Registration, error) {
	if reg, ok := r.commands[name]; ok {
		return reg, nil
	}
	return Registration{}, usageErrorf("unknown command '%s' (available: %s)", name, strings.Join(r.Names(), ", "))
}

// Names returns the registered command names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Commands returns the registrations sorted by name.
func (r *Registry) Commands() []Registration {
	out := make([]Registration, 0, len(r.commands))
	for _, name := range r.Names() {
		out = append(out, r.commands[name])
	}
	return out
}

// Usage renders the command table.
func (r *Registry) Usage() string {
	var b strings.Builder
	b.WriteString("usage: vmx [global options] <command> [args...]\n\n")
	b.WriteString("global options:\n")
	for _, g := range globalHelp {
		fmt.Fprintf(&b, "  %-22s %s\n", g[0], g[1])
	}
	b.WriteString("\ncommands:\n")
	width := 0
	for _, c := range r.Commands() {
		if n := len(c.Name) + len(c.Usage) + 1; n > width {
			width = n
		}
	}
	for _, c := range r.Commands() {
		synopsis := strings.TrimSpace(c.Name + " " + c.Usage)
		fmt.Fprintf(&b, "  %-*s  %s\n", width, synopsis, c.Description)
	}
	return b.String()
}
