package loader

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"gopkg.in/yaml.v3"

	"github.com/kiosk404/symbiont/internal/engine"
	"github.com/kiosk404/symbiont/pkg/logger"
)

// Manifest is a plugin declaration read from a plugin.yaml / plugin.json
// file in the plugin directory.
type Manifest struct {
	Name            string   `json:"name" yaml:"name"`
	Version         string   `json:"version,omitempty" yaml:"version,omitempty"`
	Description     string   `json:"description,omitempty" yaml:"description,omitempty"`
	Depends         []string `json:"depends,omitempty" yaml:"depends,omitempty"`
	OptionalDepends []string `json:"optional_depends,omitempty" yaml:"optional_depends,omitempty"`
}

var manifestNames = map[string]struct{}{
	"plugin.yaml": {},
	"plugin.yml":  {},
	"plugin.json": {},
}

// ManifestDir discovers plugins by scanning a directory tree for manifest
// files. The manifest supplies the metadata; the entry point comes from the
// paired in-tree registry, looked up by plugin name. A manifest without a
// matching entry point still produces a record, so the engine can report
// the contract violation instead of the plugin silently vanishing.
type ManifestDir struct {
	Dir       string
	Factories *InTree
}

func (m *ManifestDir) Discover() ([]*engine.Record, error) {
	var records []*engine.Record

	err := filepath.WalkDir(m.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := manifestNames[d.Name()]; !ok {
			return nil
		}

		manifest, err := readManifest(path)
		if err != nil {
			return fmt.Errorf("reading plugin manifest %s: %w", path, err)
		}
		records = append(records, m.toRecord(manifest))
		logger.Debug("[Loader] discovered plugin %q from %s", manifest.Name, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("[Loader] discovered %d plugins under %s", len(records), m.Dir)
	return records, nil
}

func (m *ManifestDir) toRecord(manifest *Manifest) *engine.Record {
	registrant := m.registrantFor(manifest)
	if reason := validateManifest(manifest); reason != "" {
		registrant = engine.RegistrantFunc(func() error {
			return &engine.ContractError{Plugin: manifest.Name, Reason: reason}
		})
	}
	return engine.NewRecord(manifest.Name, manifest.Depends, manifest.OptionalDepends, registrant)
}

// registrantFor resolves the entry point for a manifest plugin from the
// in-tree registry. Missing registry or missing entry yields nil, which the
// engine turns into a contract violation.
func (m *ManifestDir) registrantFor(manifest *Manifest) engine.Registrant {
	if m.Factories == nil {
		return nil
	}
	entry, ok := m.Factories.Lookup(manifest.Name)
	if !ok || entry.Factory == nil {
		return nil
	}
	return entry.Factory()
}

// validateManifest checks the structural contract of a manifest beyond
// what parsing enforces. An empty return means the manifest is valid.
func validateManifest(manifest *Manifest) string {
	required := make(map[string]struct{}, len(manifest.Depends))
	for _, dep := range manifest.Depends {
		required[dep] = struct{}{}
	}
	for _, dep := range manifest.OptionalDepends {
		if _, ok := required[dep]; ok {
			return fmt.Sprintf("dependency %q is declared both required and optional", dep)
		}
	}
	return ""
}

func readManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var manifest Manifest
	if strings.HasSuffix(path, ".json") {
		err = sonic.Unmarshal(data, &manifest)
	} else {
		err = yaml.Unmarshal(data, &manifest)
	}
	if err != nil {
		return nil, err
	}
	if manifest.Name == "" {
		return nil, fmt.Errorf("manifest is missing the required name field")
	}
	return &manifest, nil
}
