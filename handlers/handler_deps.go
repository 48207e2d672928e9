package handlers

import (
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"decoupage/api-gateway/internal/dragdrop"
	"decoupage/api-gateway/internal/imagecache"
	"decoupage/api-gateway/internal/preview"
	"decoupage/api-gateway/internal/scriptstore"
	"decoupage/api-gateway/internal/transcriber"
	"decoupage/api-gateway/internal/worker"
)

// cardThumbHeight is the display height of a card thumbnail; the cache stores
// an oversampled copy so the same entry serves screens and PDF export.
const cardThumbHeight = 90

// ApplicationHandler holds shared dependencies for handlers.
type ApplicationHandler struct {
	Logger      *logrus.Logger
	Store       *scriptstore.Store
	Cache       *imagecache.Cache
	Preview     *preview.Generator
	Transcriber *transcriber.Client
	Dispatcher  *worker.Dispatcher
	Validate    *validator.Validate
	MediaBase   string

	mu      sync.Mutex
	engines map[string]*dragdrop.Engine
	busy    map[string]bool
}

// NewApplicationHandler creates an ApplicationHandler with the given
// dependencies.
func NewApplicationHandler(store *scriptstore.Store, cache *imagecache.Cache, prev *preview.Generator,
	trans *transcriber.Client, dispatcher *worker.Dispatcher, logger *logrus.Logger, mediaBase string) *ApplicationHandler {
	return &ApplicationHandler{
		Logger:      logger,
		Store:       store,
		Cache:       cache,
		Preview:     prev,
		Transcriber: trans,
		Dispatcher:  dispatcher,
		Validate:    validator.New(),
		MediaBase:   mediaBase,
		engines:     make(map[string]*dragdrop.Engine),
		busy:        make(map[string]bool),
	}
}

// engine returns the drag engine owned by a project, creating it on first use.
func (h *ApplicationHandler) engine(project string) *dragdrop.Engine {
	h.mu.Lock()
	defer h.mu.Unlock()
	eng, ok := h.engines[project]
	if !ok {
		eng = dragdrop.NewEngine()
		h.engines[project] = eng
	}
	return eng
}

// acquire serializes structural mutations per project. Returns false when a
// previous round-trip is still outstanding; callers answer 409.
func (h *ApplicationHandler) acquire(project string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.busy[project] {
		return false
	}
	h.busy[project] = true
	return true
}

func (h *ApplicationHandler) release(project string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.busy, project)
}
