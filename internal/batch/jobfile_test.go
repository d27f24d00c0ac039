package batch

import (
	"os"
	"path/filepath"
	"testing"
)

func TestJobFile_Validate_TableDriven(t *testing.T) {
	ask := func(id, data string, deps ...string) Job {
		return Job{ID: id, Kind: KindAsk, Goal: "g", Data: data, DependsOn: deps}
	}
	tests := []struct {
		name    string
		jf      JobFile
		wantErr bool
	}{
		{"valid", JobFile{Jobs: []Job{ask("a", "sales.csv"), ask("b", "$a")}}, false},
		{"missing id", JobFile{Jobs: []Job{ask("", "x.csv")}}, true},
		{"duplicate id", JobFile{Jobs: []Job{ask("a", "x.csv"), ask("a", "x.csv")}}, true},
		{"unknown kind", JobFile{Jobs: []Job{{ID: "a", Kind: "sql", Goal: "g", Data: "x.csv"}}}, true},
		{"no goal", JobFile{Jobs: []Job{{ID: "a", Kind: KindAsk, Data: "x.csv"}}}, true},
		{"no data", JobFile{Jobs: []Job{{ID: "a", Kind: KindPlot, Goal: "g"}}}, true},
		{"missing reference", JobFile{Jobs: []Job{ask("a", "$b")}}, true},
		{"missing dependency", JobFile{Jobs: []Job{ask("a", "x.csv", "b")}}, true},
		{"cycle", JobFile{Jobs: []Job{ask("a", "$b"), ask("b", "x.csv", "a")}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.jf.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestJobFile_Stages(t *testing.T) {
	jf := JobFile{Jobs: []Job{
		{ID: "total", Kind: KindAsk, Goal: "g", Data: "sales.csv"},
		{ID: "count", Kind: KindAsk, Goal: "g", Data: "sales.csv"},
		{ID: "chart", Kind: KindPlot, Goal: "g", Data: "$total"},
		{ID: "summary", Kind: KindAsk, Goal: "g", Data: "$total", DependsOn: []string{"chart"}},
	}}
	if err := jf.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	stages := jf.Stages()
	if len(stages) != 3 {
		t.Fatalf("expected 3 stages, got %d", len(stages))
	}
	if len(stages[0]) != 2 || stages[0][0].ID != "total" || stages[0][1].ID != "count" {
		t.Errorf("unexpected first stage: %+v", stages[0])
	}
	if stages[1][0].ID != "chart" || stages[2][0].ID != "summary" {
		t.Errorf("unexpected ordering: %+v", stages)
	}
}

func TestLoadAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	content := `
name: sales
jobs:
  - id: total
    kind: ask
    goal: add a column total = a + b
    data: sales.csv
  - id: top
    kind: ask
    goal: return the country with the largest total
    data: $total
    args: [3]
    mutable: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	jf, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate failed: %v", err)
	}
	if jf.Name != "sales" || len(jf.Jobs) != 2 {
		t.Fatalf("unexpected job file: %+v", jf)
	}
	top := jf.Jobs[1]
	if ref, ok := top.Reference(); !ok || ref != "total" {
		t.Errorf("expected reference to total, got %q", ref)
	}
	if top.Mutable == nil || !*top.Mutable {
		t.Errorf("expected mutable override")
	}
	if len(top.Args) != 1 || top.Args[0] != 3 {
		t.Errorf("unexpected args: %v", top.Args)
	}

	if _, err := LoadAndValidate(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
