package main

import (
	"os"
	"time"
)

// GetVar resolves a variable: builtins first, then vars, then the environment.
func GetVar(name string, vars map[string]string) (string, bool) {
	switch name {
	case "TIMESTAMP":
		return time.Now().Format("2006-01-02 15:04:05"), true
	case "cwd":
		path, err := os.Getwd()
		return path, err == nil
	}
	if v, ok := vars[name]; ok {
		return v, true
	}
	return os.LookupEnv(name)
}
