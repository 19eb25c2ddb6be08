// Package registry caches schema and type-set builds per grammar identity.
// Grammars are few and stable, so entries live for the life of the process;
// eviction, if a deployment needs it, is a policy layered on top.
package registry

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/treeschema/treeschema/nodetype"
	"github.com/treeschema/treeschema/synth"
)

// Entry pairs a loaded schema with its synthesized type set. Both are
// immutable, so a cached entry is served to concurrent readers without
// further synchronization.
type Entry struct {
	Schema *nodetype.Schema
	Types  *synth.TypeSet
}

// Registry is a single-flight memoizing map keyed by grammar identity.
type Registry struct {
	group   singleflight.Group
	mu      sync.RWMutex
	entries map[string]*Entry
}

func New() *Registry {
	return &Registry{entries: map[string]*Entry{}}
}

// Default is the process-wide registry.
var Default = New()

// GetOrBuild returns the entry for the given grammar identity, building it
// with build on first use. Concurrent first calls for the same identity
// coalesce into one build; everyone receives the same entry. A failed build
// caches nothing, so a later call retries.
func (r *Registry) GetOrBuild(identity string, build func() (*Entry, error)) (*Entry, error) {
	r.mu.RLock()
	e, has := r.entries[identity]
	r.mu.RUnlock()
	if has {
		return e, nil
	}

	v, err, _ := r.group.Do(identity, func() (interface{}, error) {
		// A previous flight may have settled while this caller waited.
		r.mu.RLock()
		e, has := r.entries[identity]
		r.mu.RUnlock()
		if has {
			return e, nil
		}

		start := time.Now()
		built, err := build()
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.entries[identity] = built
		r.mu.Unlock()

		logrus.WithFields(logrus.Fields{
			"identity": identity,
			"elapsed":  time.Since(start),
		}).Debug("built grammar type set")
		return built, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Entry), nil
}

// Build loads a JSON grammar description and synthesizes its type set,
// memoized under the given identity.
func (r *Registry) Build(identity string, doc []byte) (*Entry, error) {
	return r.GetOrBuild(identity, func() (*Entry, error) {
		s, err := nodetype.Load(doc)
		if err != nil {
			return nil, err
		}
		ts, err := synth.Synthesize(s)
		if err != nil {
			return nil, err
		}
		return &Entry{Schema: s, Types: ts}, nil
	})
}
