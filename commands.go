package main

// NewCommandTable registers every vmx command. Commands that need the
// native VM sources are only offered when native is true.
func NewCommandTable(native bool) *Registry {
	r := NewRegistry()
	r.Register(Registration{
		Name:        "build",
		Usage:       "[-options]",
		Description: "compile the Java projects and build the VM binary",
		Handler:     handleBuild,
		Flags:       buildFlags,
	})
	r.Register(Registration{
		Name:        "clean",
		Usage:       "[-options]",
		Description: "remove Java class output and native build products",
		Handler:     handleClean,
		Flags: []Flag{
			{Name: "no-java", Bool: true, Help: "keep Java class output"},
			{Name: "no-native", Bool: true, Help: "skip the native clean"},
		},
	})
	r.Register(Registration{
		Name:        "gate",
		Description: "run the checks used to validate a push",
		Handler:     handleGate,
		Flags: []Flag{
			{Name: "history", Help: "append the gate result to this sqlite database"},
		},
	})
	r.Register(Registration{
		Name:        "history",
		Usage:       "[-options]",
		Description: "list recorded gate runs",
		Handler:     handleHistory,
		NoJava:      true,
		Flags: []Flag{
			{Name: "db", Help: "gate history database (default <home>/" + defaultHistoryDB + ")"},
			{Name: "limit", Default: "10", Help: "number of runs to show"},
		},
	})
	r.Register(Registration{
		Name:        "bench",
		Usage:       "[-options]",
		Description: "run the benchmark suite and print the results",
		Handler:     handleBench,
		Flags: []Flag{
			{Name: "format", Short: "f", Default: "table", Help: "output format: table, json, yaml or toml"},
		},
	})
	r.Register(Registration{
		Name:        "dacapo",
		Usage:       "[level | [n] benchmark...] [VM options|@harness options]",
		Description: "run one or all DaCapo benchmarks",
		Handler:     handleDacapo,
		Passthrough: true,
	})
	r.Register(Registration{
		Name:        "unittest",
		Usage:       "[filters...]",
		Description: "run the compiler unit tests on the VM",
		Handler:     handleUnitTest,
		Passthrough: true,
	})
	r.Register(Registration{
		Name:        "vm",
		Usage:       "[-options] class [args...]",
		Description: "run the VM",
		Handler:     handleVM,
		Passthrough: true,
	})
	r.Register(Registration{
		Name:        "copyrightcheck",
		Usage:       "[tool options...]",
		Description: "run the copyright check on the tracked source files",
		Handler:     handleCopyrightCheck,
		Passthrough: true,
	})
	r.Register(Registration{
		Name:        "example",
		Usage:       "[-options] [name...]",
		Description: "run some or all of the configured examples",
		Handler:     handleExample,
		Flags: []Flag{
			{Name: "verbose", Short: "v", Bool: true, Help: "print compilations"},
		},
	})
	r.Register(Registration{
		Name:        "ideinit",
		Description: "(re)generate Eclipse project configurations",
		Handler:     handleIdeInit,
	})

	if native {
		r.Register(Registration{
			Name:        "export",
			Usage:       "[-options] [zipfile]",
			Description: "create a zip file for distribution",
			Handler:     handleExport,
			Flags: []Flag{
				{Name: "omit-vm-build", Bool: true, Help: "omit the VM build step"},
				{Name: "omit-dist-init", Bool: true, Help: "omit class files and IDE configurations from the distribution"},
			},
		})
		r.Replace(Registration{
			Name:        "build",
			Usage:       "[-options] [product|debug|fastdebug|optimized]...",
			Description: "compile the Java projects and build the VM binary",
			Handler:     handleBuild,
			Flags:       buildFlags,
		})
	}
	return r
}
