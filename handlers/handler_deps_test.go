package handlers

import (
	"testing"

	"decoupage/api-gateway/internal/dragdrop"
)

func TestAcquireRelease(t *testing.T) {
	h := &ApplicationHandler{busy: make(map[string]bool)}

	if !h.acquire("p1") {
		t.Fatalf("first acquire failed")
	}
	if h.acquire("p1") {
		t.Fatalf("second acquire succeeded while busy")
	}
	if !h.acquire("p2") {
		t.Fatalf("other project blocked")
	}

	h.release("p1")
	if !h.acquire("p1") {
		t.Fatalf("acquire after release failed")
	}
}

func TestEngineRegistry_OnePerProject(t *testing.T) {
	h := &ApplicationHandler{engines: make(map[string]*dragdrop.Engine)}

	first := h.engine("p1")
	if first == nil {
		t.Fatalf("no engine created")
	}
	if h.engine("p1") != first {
		t.Fatalf("same project produced a second engine")
	}
	if h.engine("p2") == first {
		t.Fatalf("projects share an engine")
	}
}
