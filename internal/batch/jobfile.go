// Package batch loads job files: named ask and plot calls over CSV data,
// optionally chained through earlier job results.
package batch

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Job kinds.
const (
	KindAsk  = "ask"
	KindPlot = "plot"
)

type JobFile struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Jobs        []Job  `yaml:"jobs"`
}

// Job is one call. Data is a CSV path, or "$<job id>" to use that job's
// result. Column selects a single series from the table.
type Job struct {
	ID        string   `yaml:"id"`
	Kind      string   `yaml:"kind"`
	Goal      string   `yaml:"goal"`
	Data      string   `yaml:"data"`
	Column    string   `yaml:"column"`
	Args      []any    `yaml:"args"`
	Mutable   *bool    `yaml:"mutable"`
	DependsOn []string `yaml:"depends_on"`
}

// Reference returns the job id named by a "$id" data source.
func (j Job) Reference() (string, bool) {
	if strings.HasPrefix(j.Data, "$") {
		return strings.TrimPrefix(j.Data, "$"), true
	}
	return "", false
}

// Dependencies lists depends_on plus the data reference, if any.
func (j Job) Dependencies() []string {
	deps := append([]string(nil), j.DependsOn...)
	if ref, ok := j.Reference(); ok {
		deps = append(deps, ref)
	}
	return deps
}

// JobFileLoader defines an interface for loading a JobFile from a source.
type JobFileLoader interface {
	Load(source string) (*JobFile, error)
	Format() string // e.g., "yaml"
}

var loaderRegistry = make(map[string]JobFileLoader)

// RegisterJobFileLoader registers a loader for its format name.
func RegisterJobFileLoader(loader JobFileLoader) {
	loaderRegistry[loader.Format()] = loader
}

// GetJobFileLoader retrieves a loader by format name.
func GetJobFileLoader(format string) (JobFileLoader, bool) {
	loader, ok := loaderRegistry[format]
	return loader, ok
}

// YAMLLoader implements JobFileLoader for YAML files.
type YAMLLoader struct{}

func (YAMLLoader) Load(path string) (*JobFile, error) {
	return LoadJobFile(path)
}

func (YAMLLoader) Format() string { return "yaml" }

func init() {
	RegisterJobFileLoader(YAMLLoader{})
}

// LoadJobFile parses a YAML job file.
func LoadJobFile(path string) (*JobFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open job file: %w", err)
	}
	defer f.Close()

	var jf JobFile
	if err := yaml.NewDecoder(f).Decode(&jf); err != nil {
		return nil, fmt.Errorf("failed to parse job YAML: %w", err)
	}
	return &jf, nil
}

// Validate checks for missing fields, duplicate IDs, unknown dependencies and cycles.
func (jf *JobFile) Validate() error {
	idSet := make(map[string]struct{}, len(jf.Jobs))
	for i, j := range jf.Jobs {
		if j.ID == "" {
			return fmt.Errorf("job %d has no id", i)
		}
		if _, exists := idSet[j.ID]; exists {
			return fmt.Errorf("duplicate job ID found: %s", j.ID)
		}
		idSet[j.ID] = struct{}{}

		if j.Kind != KindAsk && j.Kind != KindPlot {
			return fmt.Errorf("job '%s' has unknown kind %q", j.ID, j.Kind)
		}
		if strings.TrimSpace(j.Goal) == "" {
			return fmt.Errorf("job '%s' has no goal", j.ID)
		}
		if j.Data == "" {
			return fmt.Errorf("job '%s' has no data", j.ID)
		}
	}

	for _, j := range jf.Jobs {
		for _, dep := range j.Dependencies() {
			if _, exists := idSet[dep]; !exists {
				return fmt.Errorf("job '%s' depends on missing job '%s'", j.ID, dep)
			}
		}
	}

	visited := make(map[string]bool, len(jf.Jobs))
	stack := make(map[string]bool, len(jf.Jobs))
	var hasCycle func(id string) bool
	hasCycle = func(id string) bool {
		if stack[id] {
			return true
		}
		if visited[id] {
			return false
		}
		visited[id] = true
		stack[id] = true
		if job := jf.job(id); job != nil {
			for _, dep := range job.Dependencies() {
				if hasCycle(dep) {
					return true
				}
			}
		}
		stack[id] = false
		return false
	}
	for _, j := range jf.Jobs {
		if hasCycle(j.ID) {
			return fmt.Errorf("cycle detected in jobs at '%s'", j.ID)
		}
	}
	return nil
}

// Stages groups jobs so that every job comes after all of its dependencies.
// Jobs within a stage are independent. Validate must pass first.
func (jf *JobFile) Stages() [][]Job {
	level := make(map[string]int, len(jf.Jobs))
	var depth func(id string) int
	depth = func(id string) int {
		if d, ok := level[id]; ok {
			return d
		}
		d := 0
		if job := jf.job(id); job != nil {
			for _, dep := range job.Dependencies() {
				if dd := depth(dep) + 1; dd > d {
					d = dd
				}
			}
		}
		level[id] = d
		return d
	}

	var stages [][]Job
	for _, j := range jf.Jobs {
		d := depth(j.ID)
		for len(stages) <= d {
			stages = append(stages, nil)
		}
		stages[d] = append(stages[d], j)
	}
	return stages
}

func (jf *JobFile) job(id string) *Job {
	for i := range jf.Jobs {
		if jf.Jobs[i].ID == id {
			return &jf.Jobs[i]
		}
	}
	return nil
}

// LoadAndValidate loads a job file with the YAML loader and validates it.
func LoadAndValidate(path string) (*JobFile, error) {
	loader, ok := GetJobFileLoader("yaml")
	if !ok {
		return nil, fmt.Errorf("no YAML job loader registered")
	}

	jf, err := loader.Load(path)
	if err != nil {
		return nil, err
	}
	if err := jf.Validate(); err != nil {
		return nil, err
	}
	return jf, nil
}
