package main

// Suite is the project description loaded from vmx.yaml or vmx.toml.
type Suite struct {
	Name         string              `yaml:"name" toml:"name"`
	Java         JavaSettings        `yaml:"java" toml:"java"`
	Projects     []Project           `yaml:"projects" toml:"projects"`
	Libraries    []Library           `yaml:"libraries" toml:"libraries"`
	UnitTests    map[string][]string `yaml:"unittests" toml:"unittests"`
	Benchmarks   []Benchmark         `yaml:"benchmarks" toml:"benchmarks"`
	Checks       Checks              `yaml:"checks" toml:"checks"`
	Eclipse      EclipseSettings     `yaml:"eclipse" toml:"eclipse"`
	Examples     map[string]Example  `yaml:"examples" toml:"examples"`
	Archive      []string            `yaml:"archive" toml:"archive"`
	GateVariants []string            `yaml:"gate_variants" toml:"gate_variants"`
}

type JavaSettings struct {
	Home     string `yaml:"home" toml:"home"`
	Compiler string `yaml:"compiler" toml:"compiler"`
	Source   string `yaml:"source" toml:"source"`
	Debug    bool   `yaml:"debug" toml:"debug"`
}

// Checks holds the argv of the external style and canonicalization checks.
type Checks struct {
	Checkstyle   []string       `yaml:"checkstyle" toml:"checkstyle"`
	Canonicalize []string       `yaml:"canonicalize" toml:"canonicalize"`
	Copyright    CopyrightCheck `yaml:"copyright" toml:"copyright"`
}

// CopyrightCheck is a Java tool run on the class path of Project.
type CopyrightCheck struct {
	Project   string   `yaml:"project" toml:"project"`
	MainClass string   `yaml:"main_class" toml:"main_class"`
	Args      []string `yaml:"args" toml:"args"`
}

// Example is a demo program compiled under the server and Graal compilers.
type Example struct {
	Project   string `yaml:"project" toml:"project"`
	MainClass string `yaml:"main_class" toml:"main_class"`
}

type EclipseSettings struct {
	SettingsDir    string `yaml:"settings_dir" toml:"settings_dir"`
	CheckstyleName string `yaml:"checkstyle_name" toml:"checkstyle_name"`
}

type Project struct {
	Name          string   `yaml:"name" toml:"name"`
	Dir           string   `yaml:"dir" toml:"dir"`
	SourceDirs    []string `yaml:"source_dirs" toml:"source_dirs"`
	Dependencies  []string `yaml:"dependencies" toml:"dependencies"`
	Native        bool     `yaml:"native" toml:"native"`
	Checkstyle    string   `yaml:"checkstyle" toml:"checkstyle"`
	EclipseOutput string   `yaml:"eclipse_output" toml:"eclipse_output"`
}

type Library struct {
	Name             string `yaml:"name" toml:"name"`
	Path             string `yaml:"path" toml:"path"`
	Optional         bool   `yaml:"optional" toml:"optional"`
	EclipseContainer string `yaml:"eclipse_container" toml:"eclipse_container"`
	EclipseProject   string `yaml:"eclipse_project" toml:"eclipse_project"`
}

// Benchmark is one harness run. Levels maps a sanity level (gate, benchmark,
// or any user-defined name) to the iteration count used at that level; a
// missing or zero entry excludes the benchmark from the level.
type Benchmark struct {
	Group   string            `yaml:"group" toml:"group"`
	Name    string            `yaml:"name" toml:"name"`
	VMArgs  []string          `yaml:"vm_args" toml:"vm_args"`
	Args    []string          `yaml:"args" toml:"args"`
	Levels  map[string]int    `yaml:"levels" toml:"levels"`
	Success string            `yaml:"success" toml:"success"`
	Failure string            `yaml:"failure" toml:"failure"`
	Scores  map[string]string `yaml:"scores" toml:"scores"`
}

// Dependency is either a project or a library.
type Dependency struct {
	Project *Project
	Library *Library
}

func (d Dependency) Name() string {
	if d.Project != nil {
		return d.Project.Name
	}
	return d.Library.Name
}
