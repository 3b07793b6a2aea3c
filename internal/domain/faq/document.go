package faq

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrDocumentNotFound is returned when the source has no FAQ document to offer.
	ErrDocumentNotFound = errors.New("faq document not found")
	// ErrDocumentAlreadyLoaded guards the write-once holder.
	ErrDocumentAlreadyLoaded = errors.New("faq document already loaded")
)

// Document is the flat FAQ text as fetched at startup. A question line is
// expected to be immediately followed by its answer line; nothing validates that.
type Document struct {
	Name     string
	SourceID string
	Content  string
	LoadedAt time.Time
}

// DocumentSource fetches the FAQ document. found is false when the source is
// reachable but holds no FAQ document.
type DocumentSource interface {
	Load(ctx context.Context) (doc Document, found bool, err error)
}

// DocumentHolder owns the loaded document. It accepts exactly one Set and is
// read-only afterwards, so readers need no coordination beyond the lock.
type DocumentHolder struct {
	mu     sync.RWMutex
	doc    Document
	loaded bool
}

// NewDocumentHolder returns an empty holder.
func NewDocumentHolder() *DocumentHolder {
	return &DocumentHolder{}
}

// Set stores the document. Only the first call succeeds.
func (h *DocumentHolder) Set(doc Document) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.loaded {
		return ErrDocumentAlreadyLoaded
	}
	h.doc = doc
	h.loaded = true
	return nil
}

// Get returns the document and whether one has been loaded.
func (h *DocumentHolder) Get() (Document, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.doc, h.loaded
}
