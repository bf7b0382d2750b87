package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kiosk404/symbiont/internal/engine"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestManifestDirDiscoversYAMLAndJSON(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "db", "plugin.yaml"), `
name: db
version: 1.2.0
description: database access layer
`)
	writeFile(t, filepath.Join(dir, "tasks", "plugin.json"),
		`{"name": "tasks", "depends": ["db"], "optional_depends": ["metrics"]}`)
	writeFile(t, filepath.Join(dir, "db", "README.md"), "not a manifest")

	factories := NewInTree()
	factories.MustRegister(Entry{Name: "db", Factory: noopFactory})
	factories.MustRegister(Entry{Name: "tasks", Factory: noopFactory})

	src := &ManifestDir{Dir: dir, Factories: factories}
	records, err := src.Discover()
	r.NoError(err)
	r.Len(records, 2)

	byName := make(map[string]*engine.Record)
	for _, rec := range records {
		byName[rec.Name] = rec
	}
	r.Contains(byName, "db")
	r.Equal([]string{"db"}, byName["tasks"].Depends)
	r.Equal([]string{"metrics"}, byName["tasks"].OptionalDepends)
	r.NotNil(byName["db"].Registrant)
}

func TestManifestWithoutFactoryFailsAtRegistration(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "ghost", "plugin.yaml"), "name: ghost\n")

	src := &ManifestDir{Dir: dir, Factories: NewInTree()}
	records, err := src.Discover()
	r.NoError(err)
	r.Len(records, 1)
	r.Nil(records[0].Registrant)

	report, err := engine.Run(records)
	r.NoError(err)
	row, _ := report.Lookup("ghost")
	r.Equal("Failed", row.State)
	r.Equal(engine.KindContractViolation, row.Error.Kind)
}

func TestManifestDeclaringDepBothWaysIsContractViolation(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "confused", "plugin.yaml"), `
name: confused
depends: [db]
optional_depends: [db]
`)
	writeFile(t, filepath.Join(dir, "db", "plugin.yaml"), "name: db\n")

	factories := NewInTree()
	factories.MustRegister(Entry{Name: "confused", Factory: noopFactory})
	factories.MustRegister(Entry{Name: "db", Factory: noopFactory})

	records, err := (&ManifestDir{Dir: dir, Factories: factories}).Discover()
	r.NoError(err)

	report, err := engine.Run(records)
	r.NoError(err)
	row, _ := report.Lookup("confused")
	r.Equal("Failed", row.State)
	r.Equal(engine.KindContractViolation, row.Error.Kind)

	var rec *engine.Record
	for _, candidate := range records {
		if candidate.Name == "confused" {
			rec = candidate
		}
	}
	var contract *engine.ContractError
	r.True(errors.As(rec.Err, &contract))
	r.Contains(contract.Reason, "both required and optional")
}

func TestManifestMissingNameIsAnError(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "anon", "plugin.yaml"), "version: 1.0.0\n")

	_, err := (&ManifestDir{Dir: dir}).Discover()
	r.Error(err)
	r.Contains(err.Error(), "name")
}

func TestFilterAllowDeny(t *testing.T) {
	r := require.New(t)

	records := []*engine.Record{
		engine.NewRecord("db", nil, nil, noopFactory()),
		engine.NewRecord("tasks", nil, nil, noopFactory()),
		engine.NewRecord("debugger", nil, nil, noopFactory()),
	}

	kept := Filter{Deny: []string{"debugger"}}.Apply(records)
	r.Len(kept, 2)

	kept = Filter{Allow: []string{"db"}, Deny: []string{"db"}}.Apply(records)
	r.Empty(kept, "deny wins over allow")

	kept = Filter{}.Apply(records)
	r.Len(kept, 3, "an empty policy admits everything")

	kept = Filter{Allow: []string{"tasks", "db"}}.Apply(records)
	r.Len(kept, 2)
	r.Equal("db", kept[0].Name, "discovery order is preserved")
}

func TestFilteredDependencyOrphansDependent(t *testing.T) {
	r := require.New(t)

	records := []*engine.Record{
		engine.NewRecord("db", nil, nil, noopFactory()),
		engine.NewRecord("tasks", []string{"db"}, nil, noopFactory()),
	}

	kept := Filter{Deny: []string{"db"}}.Apply(records)
	report, err := engine.Run(kept)
	r.NoError(err)

	row, _ := report.Lookup("tasks")
	r.Equal("Orphaned", row.State,
		"a denied dependency looks exactly like one that was never discovered")
}
