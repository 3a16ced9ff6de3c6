package servicepath

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/strogmv/websubc/compiler/project"
)

// SnapshotVersion is the current snapshot format version.
const SnapshotVersion = 1

type snapshot struct {
	Version   int                `yaml:"version"`
	Documents []snapshotDocument `yaml:"documents"`
}

type snapshotDocument struct {
	Module   project.ModuleID   `yaml:"module"`
	Document project.DocumentID `yaml:"document"`
	Services []Info             `yaml:"services"`
}

// WriteYAML writes the store contents in deterministic order.
func (s *Store) WriteYAML(w io.Writer) error {
	snap := snapshot{Version: SnapshotVersion}
	for _, k := range s.Documents() {
		infos, _ := s.Lookup(k.Module, k.Document)
		snap.Documents = append(snap.Documents, snapshotDocument{Module: k.Module, Document: k.Document, Services: infos})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode service paths: %w", err)
	}
	return enc.Close()
}

// ReadYAML decodes a snapshot written by WriteYAML into a new store.
func ReadYAML(r io.Reader) (*Store, error) {
	var snap snapshot
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode service paths: %w", err)
	}
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported service path snapshot version %d", snap.Version)
	}
	store := NewStore()
	for _, d := range snap.Documents {
		if err := store.Put(d.Module, d.Document, d.Services); err != nil {
			return nil, fmt.Errorf("document %s/%s: %w", d.Module, d.Document, err)
		}
	}
	return store, nil
}
