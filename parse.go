package main

import (
	"regexp"
	"strings"
)

var varPattern = regexp.MustCompile(`\$\w+|\$\{[^}]+\}`)

// ExpandVars replaces $var and ${var} references in text. Unknown variables
// are left untouched and reported through warn, when non-nil.
func ExpandVars(text string, vars map[string]string, warn func(name string)) string {
	return varPattern.ReplaceAllStringFunc(text, func(m string) string {
		name := strings.Trim(strings.TrimPrefix(m, "$"), "{}")
		if val, ok := GetVar(name, vars); ok {
			return val
		}
		if warn != nil {
			warn(m)
		}
		return m
	})
}

// ExpandArgv expands every element of argv.
func ExpandArgv(argv []string, vars map[string]string, warn func(name string)) []string {
	out := make([]string, len(argv))
	for i, a := range argv {
		out[i] = ExpandVars(a, vars, warn)
	}
	return out
}
