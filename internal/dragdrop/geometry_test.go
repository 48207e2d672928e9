package dragdrop

import "testing"

func cardColumn(n int) []Rect {
	cards := make([]Rect, n)
	for i := range cards {
		top := float64(i * 100)
		cards[i] = Rect{Left: 0, Top: top, Right: 200, Bottom: top + 90}
	}
	return cards
}

func TestDropPosition(t *testing.T) {
	cards := cardColumn(3)

	tests := []struct {
		name string
		p    Point
		want int
	}{
		{"above first card", Point{X: 50, Y: 10}, 0},
		{"between first and second", Point{X: 50, Y: 120}, 1},
		{"inside last card", Point{X: 50, Y: 250}, 2},
		{"past every card", Point{X: 50, Y: 400}, -1},
		{"right of every card", Point{X: 500, Y: 10}, -1},
	}
	for _, tt := range tests {
		if got := DropPosition(cards, tt.p); got != tt.want {
			t.Fatalf("%s: DropPosition = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestDropPosition_EmptyContainerAppends(t *testing.T) {
	if got := DropPosition(nil, Point{X: 10, Y: 10}); got != -1 {
		t.Fatalf("DropPosition(empty) = %d, want -1", got)
	}
}

func TestAutoScroll_SpeedTiers(t *testing.T) {
	viewport := Rect{Top: 0, Bottom: 800, Left: 0, Right: 400}

	tests := []struct {
		name string
		y    float64
		want int
	}{
		{"deep in top band", 10, -9},
		{"middle of top band", 60, -5},
		{"edge of top band", 120, -3},
		{"outside both bands", 400, 0},
		{"edge of bottom band", 680, 3},
		{"middle of bottom band", 740, 5},
		{"deep in bottom band", 790, 9},
	}
	for _, tt := range tests {
		if got := AutoScroll(viewport, Point{X: 100, Y: tt.y}); got != tt.want {
			t.Fatalf("%s: AutoScroll(y=%v) = %d, want %d", tt.name, tt.y, got, tt.want)
		}
	}
}
