package dragdrop

// Point is a pointer position in viewport coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned bounding box in viewport coordinates.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Auto-scroll edge band and speed tiers. Closer to the edge scrolls faster.
const (
	scrollBand = 140
	fastZone   = 40
	slowZone   = 90

	fastSpeed   = 9
	mediumSpeed = 5
	slowSpeed   = 3
)

// DropPosition computes the insertion index for a pointer hovering over a
// container: the index of the first card whose bounding box the pointer has
// not yet passed (bottom edge below the pointer and right edge to its right).
// Returns -1 when the pointer is past every card, meaning append.
func DropPosition(cards []Rect, p Point) int {
	for i, r := range cards {
		if p.Y < r.Bottom && p.X < r.Right {
			return i
		}
	}
	return -1
}

func tierSpeed(dist float64) int {
	switch {
	case dist < fastZone:
		return fastSpeed
	case dist < slowZone:
		return mediumSpeed
	default:
		return slowSpeed
	}
}

// AutoScroll returns the signed scroll step for a pointer inside the edge
// band of a scrollable viewport: negative near the top, positive near the
// bottom, zero elsewhere.
func AutoScroll(viewport Rect, p Point) int {
	if p.Y < viewport.Top+scrollBand {
		return -tierSpeed(p.Y - viewport.Top)
	}
	if p.Y > viewport.Bottom-scrollBand {
		return tierSpeed(viewport.Bottom - p.Y)
	}
	return 0
}
