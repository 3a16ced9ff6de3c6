// Package servicepath computes generated service paths and publishes them in a
// store keyed by module and document, for later rewriting passes to consume.
package servicepath

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/strogmv/websubc/compiler/project"
	"github.com/strogmv/websubc/compiler/semantic"
)

// ErrInvalidInfo is returned by Store.Put for entries that fail validation.
var ErrInvalidInfo = errors.New("servicepath: invalid entry")

// Info is the generated path of one service.
type Info struct {
	ServiceID   semantic.SymbolID `yaml:"service_id"`
	ServicePath string            `yaml:"service_path" validate:"required,startswith=/"`
}

// DocumentKey addresses one document of a package.
type DocumentKey struct {
	Module   project.ModuleID
	Document project.DocumentID
}

// Store maps documents to the generated paths of their services. It is
// populated once per compilation and read concurrently afterwards.
type Store struct {
	mu       sync.RWMutex
	docs     map[DocumentKey][]Info
	validate *validator.Validate
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		docs:     make(map[DocumentKey][]Info),
		validate: validator.New(),
	}
}

// Put replaces the entries of a document. Every entry must belong to that
// document and carry a path starting with "/".
func (s *Store) Put(mod project.ModuleID, doc project.DocumentID, infos []Info) error {
	for _, info := range infos {
		if info.ServiceID.IsZero() {
			return fmt.Errorf("%w: missing service id", ErrInvalidInfo)
		}
		if info.ServiceID.Module != mod || info.ServiceID.Document != doc {
			return fmt.Errorf("%w: service %s does not belong to %s/%s", ErrInvalidInfo, info.ServiceID, mod, doc)
		}
		if err := s.validate.Struct(info); err != nil {
			return fmt.Errorf("%w: service %s: %v", ErrInvalidInfo, info.ServiceID, err)
		}
	}
	cp := make([]Info, len(infos))
	copy(cp, infos)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[DocumentKey{mod, doc}] = cp
	return nil
}

// Lookup returns a copy of the entries for a document.
func (s *Store) Lookup(mod project.ModuleID, doc project.DocumentID) ([]Info, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	infos, ok := s.docs[DocumentKey{mod, doc}]
	if !ok {
		return nil, false
	}
	cp := make([]Info, len(infos))
	copy(cp, infos)
	return cp, true
}

// Len is the number of documents with entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Services is the total number of entries across documents.
func (s *Store) Services() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, infos := range s.docs {
		n += len(infos)
	}
	return n
}

// Documents lists the documents with entries, ordered by module then document.
func (s *Store) Documents() []DocumentKey {
	s.mu.RLock()
	keys := make([]DocumentKey, 0, len(s.docs))
	for k := range s.docs {
		keys = append(keys, k)
	}
	s.mu.RUnlock()
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Module != keys[j].Module {
			return keys[i].Module < keys[j].Module
		}
		return keys[i].Document < keys[j].Document
	})
	return keys
}

// Reset drops all entries.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[DocumentKey][]Info)
}
