// Package dragdrop implements the drag gesture state machine that relocates
// timecode cards between the pool and scene columns, together with the pure
// geometry used to preview insertion points. It is decoupled from any input
// technology: callers feed it container references, card rectangles and
// pointer positions, and it answers with insertion indexes, scroll steps and
// validated document mutations.
package dragdrop

import (
	"errors"
	"sync"

	"decoupage/api-gateway/internal/decoupage"
	"decoupage/api-gateway/models"
)

// State is the engine's position in a single drag gesture.
type State int

const (
	StateIdle State = iota
	StateDragging
	StateHovering
	StateDropped
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	case StateHovering:
		return "hovering"
	case StateDropped:
		return "dropped"
	case StateCancelled:
		return "cancelled"
	}
	return "unknown"
}

// ErrBusy is returned when a new gesture starts while a previous commit's
// persistence round-trip is still outstanding.
var ErrBusy = errors.New("a previous move is still being persisted")

// HoverResult is the feedback for one pointer-move over a droppable container:
// where the placeholder goes and how far the container should auto-scroll.
type HoverResult struct {
	Target      decoupage.ContainerRef `json:"target"`
	InsertIndex int                    `json:"insertIndex"` // -1 means append
	ScrollStep  int                    `json:"scrollStep"`
}

// Engine drives one drag gesture at a time. A gesture captures the dragged
// item by identity at pick-up; document refreshes that land mid-drag do not
// disturb it, and a drop whose item has meanwhile disappeared is a no-op.
type Engine struct {
	mu      sync.Mutex
	state   State
	itemID  string
	origin  decoupage.ContainerRef
	pending bool
}

// NewEngine returns an engine in the Idle state.
func NewEngine() *Engine {
	return &Engine{state: StateIdle}
}

// State returns the current gesture state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Start captures the dragged item and its origin container. It fails with
// ErrBusy while another gesture is in progress or a previous commit is
// pending, and with a stale-reference no-op error when the item is not
// present in the document. One gesture at a time: a second Start must never
// overwrite the captured item of a drag that has not reached Drop or Cancel.
func (e *Engine) Start(doc models.Document, itemID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pending || e.state == StateDragging || e.state == StateHovering {
		return ErrBusy
	}
	origin, _, ok := decoupage.Find(doc, itemID)
	if !ok {
		return errors.New("dragged item not found")
	}
	e.state = StateDragging
	e.itemID = itemID
	e.origin = origin
	return nil
}

// Hover handles one pointer-move over target: computes the placeholder index
// from the container's card geometry and the auto-scroll step from proximity
// to the viewport edges. Only meaningful mid-gesture; outside a gesture it
// returns a zero result.
func (e *Engine) Hover(target decoupage.ContainerRef, cards []Rect, viewport Rect, p Point) HoverResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateDragging && e.state != StateHovering {
		return HoverResult{InsertIndex: -1}
	}
	e.state = StateHovering
	return HoverResult{
		Target:      target,
		InsertIndex: DropPosition(cards, p),
		ScrollStep:  AutoScroll(viewport, p),
	}
}

// Drop validates and applies the relocation into target at index. On success
// the engine enters Dropped with a pending commit; the caller persists the
// returned document and calls Settle once the server-confirmed state is back.
// A *MoveError return means the drop was rejected and nothing changed. A
// stale item reference also changes nothing but is reported as success, since
// the next refresh re-synchronizes the snapshot anyway.
func (e *Engine) Drop(doc models.Document, target decoupage.ContainerRef, index int) (models.Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateDragging && e.state != StateHovering {
		return doc, errors.New("no drag gesture in progress")
	}

	if !target.Valid(doc) {
		e.reset(StateCancelled)
		return doc, nil
	}

	origin, pos, ok := decoupage.Find(doc, e.itemID)
	if !ok || origin != e.origin {
		// The snapshot moved under the gesture. Drop silently.
		e.reset(StateCancelled)
		return doc, nil
	}
	item := decoupage.Container(doc, origin)[pos]

	if err := CheckMove(doc, item, origin, target); err != nil {
		e.reset(StateIdle)
		return doc, err
	}

	updated, moved := decoupage.Move(doc, e.itemID, origin, target, index)
	if !moved {
		e.reset(StateCancelled)
		return doc, nil
	}

	e.state = StateDropped
	e.pending = true
	return updated, nil
}

// Cancel aborts the gesture: released outside any droppable container, or the
// drag was interrupted. No mutation happens.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateDragging || e.state == StateHovering {
		e.reset(StateCancelled)
	}
}

// Settle marks the commit round-trip finished, allowing new gestures.
func (e *Engine) Settle() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = false
	e.state = StateIdle
}

// Pending reports whether a persistence round-trip is outstanding.
func (e *Engine) Pending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending
}

// reset ends the gesture in the given terminal state. The next Start moves
// the engine on regardless, so Cancelled is observable but never sticky.
func (e *Engine) reset(final State) {
	e.state = final
	e.itemID = ""
	e.origin = decoupage.ContainerRef{}
}
