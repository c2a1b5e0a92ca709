// Package registry holds the in-memory document list for the reader
// session: insertion-ordered, keyed by id, with the lifecycle status
// modelled as an explicit state machine.
package registry

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("document not found")

// Registry is the single shared mutable structure of the reader core.
// All mutation is replace-by-id; callers never hold references into it.
type Registry struct {
	mu    sync.RWMutex
	order []uuid.UUID
	docs  map[uuid.UUID]Document
}

func New() *Registry {
	return &Registry{docs: make(map[uuid.UUID]Document)}
}

// Add appends a document. Ids are generated to be unique; a collision is
// a programming defect, not a runtime condition.
func (r *Registry) Add(doc Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[doc.ID]; ok {
		panic(fmt.Sprintf("registry: duplicate document id %s", doc.ID))
	}
	r.docs[doc.ID] = doc
	r.order = append(r.order, doc.ID)
}

// Get returns a copy of the document with the given id.
func (r *Registry) Get(id uuid.UUID) (Document, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[id]
	return doc, ok
}

// List returns documents in insertion order.
func (r *Registry) List() []Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Document, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.docs[id])
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Update applies patch to the document with the given id and stores the
// result. A missing id is a no-op (the document was deleted concurrently)
// and returns false.
func (r *Registry) Update(id uuid.UUID, patch func(*Document)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return false
	}
	patch(&doc)
	doc.ID = id // the id is the map key and must not be patched
	r.docs[id] = doc
	return true
}

// SetStatus transitions the document to next, enforcing lifecycle
// legality. Reason is kept only for failed states. Returns ErrNotFound
// for a concurrently deleted document and an error for an illegal step.
func (r *Registry) SetStatus(id uuid.UUID, next Status, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return ErrNotFound
	}
	if !doc.Status.CanTransition(next) {
		return fmt.Errorf("illegal transition %s -> %s for %s", doc.Status, next, doc.Name)
	}
	doc.Status = next
	doc.StatusReason = ""
	if next == StatusSaveFailed || next == StatusIngestFailed {
		doc.StatusReason = reason
	}
	r.docs[id] = doc
	return nil
}

// Remove deletes the entry; removing an absent id is a no-op.
func (r *Registry) Remove(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return false
	}
	delete(r.docs, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// FindByName resolves a citation file name to a document: exact match
// first, then substring in either direction. The loose fallback tolerates
// path-prefixed names reported by the retrieval backend; it can mismatch
// on names that are substrings of each other, which is accepted. First
// registry entry wins.
func (r *Registry) FindByName(name string) (Document, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		if r.docs[id].Name == name {
			return r.docs[id], true
		}
	}
	for _, id := range r.order {
		doc := r.docs[id]
		if strings.Contains(doc.Name, name) || strings.Contains(name, doc.Name) {
			return doc, true
		}
	}
	return Document{}, false
}
