/*
Package main implements vmx, the build, test and packaging driver for a
Graal-enabled Java VM checkout.

vmx reads a suite file from the home directory (vmx.yaml, vmx.yml or
vmx.toml) describing the Java projects, libraries, unit-test packages and
benchmarks of the checkout, and dispatches one subcommand per invocation.

# Commands

Build Operations:
  - build: compile the Java projects in dependency order and, when the
    native sources are checked out, build the VM for each requested variant
  - clean: remove class output and native build products
  - export: create a distribution zip (only with native sources)
  - ideinit: regenerate Eclipse project files

Test Operations:
  - gate: run the checks that must pass before a push
  - unittest: run the JUnit tests of the configured projects on the VM
  - dacapo: run DaCapo benchmarks as pass/fail tests
  - bench: run the benchmark suite and report scores
  - history: list gate runs recorded with gate --history
  - copyrightcheck: run the configured copyright tool on the sources

VM:
  - vm: launch the selected VM variant with the given options
  - example: run configured examples on the server and Graal compilers

# Variants

The VM is built in four variants: product (default), debug, fastdebug and
optimized. Select one with the matching global option:

	vmx --fastdebug build
	vmx --debug vm -version

# Gate

The gate runs its steps in a fixed order and stops at the first failure.
Every step logs BEGIN, END or ABORT with its elapsed time:

	vmx gate --history .vmx/gate-history.db

# Suite File

	java:
	  home: /usr/lib/jvm/java-7
	projects:
	  - name: com.oracle.graal.api
	  - name: com.oracle.graal.compiler
	    dependencies: [com.oracle.graal.api, JUNIT]
	libraries:
	  - name: JUNIT
	    path: lib/junit-4.8.jar
	unittests:
	  com.oracle.graal.compiler: [com.oracle.graal.compiler.test]
	checks:
	  checkstyle: [java, -jar, $home/lib/checkstyle.jar, -c, $home/checks.xml]
	  copyright:
	    project: com.oracle.graal.api
	    main_class: com.sun.max.tools.CheckCopyright
	    args: ["-cfp=${project_dir}/.copyright.regex"]
	examples:
	  safeadd:
	    project: com.oracle.graal.examples
	    main_class: com.oracle.graal.examples.safeadd.Main

Command arguments in the suite support $var and ${var} expansion.

Every command except history first checks that the host Java is 1.7 or
newer.

# Exit Status

0 on success, 1 when a step or external process fails, 2 on usage errors
and 3 on configuration errors. The exit code of a failing child process is
propagated.

# Logging

Logs go to stderr through zerolog. VMX_LOG_LEVEL selects the level and
VMX_LOG_FORMAT=json switches to JSON lines.
*/
package main
