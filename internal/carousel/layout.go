// Package carousel computes the rotating featured-books layout shown on the
// home page and advances it on a timer.
package carousel

import "github.com/hallowedlibrary/shelf/internal/entities"

const (
	// VisibleRange is the largest |offset| still rendered: center plus two
	// on each side.
	VisibleRange = 2
	// Spacing is the horizontal distance in pixels between neighbours.
	Spacing = 300
)

// Style is the visual transform of one card.
type Style struct {
	TranslateX int     `json:"translateX"`
	Scale      float64 `json:"scale"`
	Opacity    float64 `json:"opacity"`
	Filter     string  `json:"filter"`
	ZIndex     int     `json:"zIndex"`
}

// Card is a visible item with its circular offset from the center.
type Card struct {
	Book   entities.Book `json:"book"`
	Offset int           `json:"offset"`
	Style  Style         `json:"style"`
}

// Offset returns the circular distance of position i from center in a ring
// of n items. The result takes n distinct values: [-n/2, n/2] for odd n and
// (-n/2, n/2] for even n.
func Offset(i, center, n int) int {
	if n <= 0 {
		return 0
	}
	raw := i - center
	half := n / 2
	if raw > half {
		raw -= n
	}
	if raw < -half {
		raw += n
	}
	if n%2 == 0 && raw == -half {
		raw = half
	}
	return raw
}

// Visible reports whether a card at offset is rendered.
func Visible(offset int) bool {
	return abs(offset) <= VisibleRange
}

// StyleFor maps an offset to its transform. Offsets beyond VisibleRange get
// the outermost style.
func StyleFor(offset int) Style {
	d := abs(offset)
	s := Style{
		TranslateX: offset * Spacing,
		Filter:     "none",
		ZIndex:     100 - d,
	}
	switch d {
	case 0:
		s.Scale, s.Opacity = 1.25, 1
	case 1:
		s.Scale, s.Opacity = 1.05, 0.9
	default:
		s.Scale, s.Opacity = 0.85, 0.45
		s.Filter = "blur(2px) saturate(0.7)"
	}
	return s
}

// Layout returns the visible cards for items around center, in item order.
// An empty slice yields no cards.
func Layout(items []entities.Book, center int) []Card {
	n := len(items)
	if n == 0 {
		return nil
	}
	center = ((center % n) + n) % n

	cards := make([]Card, 0, 2*VisibleRange+1)
	for i, book := range items {
		offset := Offset(i, center, n)
		if !Visible(offset) {
			continue
		}
		cards = append(cards, Card{Book: book, Offset: offset, Style: StyleFor(offset)})
	}
	return cards
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
