package carousel

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hallowedlibrary/shelf/internal/entities"
)

func books(ids ...string) []entities.Book {
	out := make([]entities.Book, len(ids))
	for i, id := range ids {
		out[i] = entities.Book{ID: id, Title: id}
	}
	return out
}

func TestOffset_Range(t *testing.T) {
	for n := 1; n <= 12; n++ {
		half := n / 2
		for c := 0; c < n; c++ {
			seen := make(map[int]bool)
			for i := 0; i < n; i++ {
				o := Offset(i, c, n)
				assert.LessOrEqual(t, o, half, "n=%d c=%d i=%d", n, c, i)
				if n%2 == 0 {
					assert.Greater(t, o, -half, "n=%d c=%d i=%d", n, c, i)
				} else {
					assert.GreaterOrEqual(t, o, -half, "n=%d c=%d i=%d", n, c, i)
				}
				seen[o] = true
			}
			assert.Len(t, seen, n, "offsets must be distinct for n=%d c=%d", n, c)
		}
	}
}

func TestOffset_Wraps(t *testing.T) {
	assert.Equal(t, 0, Offset(3, 3, 10))
	assert.Equal(t, -1, Offset(9, 0, 10))
	assert.Equal(t, 1, Offset(0, 9, 10))
	assert.Equal(t, 5, Offset(5, 0, 10))
	assert.Equal(t, 5, Offset(0, 5, 10))
	assert.Equal(t, 0, Offset(0, 0, 0))
}

func TestLayout_VisibleCount(t *testing.T) {
	for n := 0; n <= 12; n++ {
		items := make([]entities.Book, n)
		for c := 0; c < max(n, 1); c++ {
			cards := Layout(items, c)
			assert.Len(t, cards, min(n, 5), "n=%d c=%d", n, c)
		}
	}
}

func TestLayout_SymmetricAroundCenter(t *testing.T) {
	for n := 5; n <= 11; n++ {
		items := make([]entities.Book, n)
		for i := range items {
			items[i].ID = fmt.Sprint(i)
		}
		for c := 0; c < n; c++ {
			offsets := make(map[int]string)
			for _, card := range Layout(items, c) {
				offsets[card.Offset] = card.Book.ID
			}
			for d := 1; d <= VisibleRange; d++ {
				assert.Equal(t, fmt.Sprint((c+d)%n), offsets[d])
				assert.Equal(t, fmt.Sprint((c-d+n)%n), offsets[-d])
			}
		}
	}
}

func TestLayout_FiveItemsCenterTwo(t *testing.T) {
	cards := Layout(books("A", "B", "C", "D", "E"), 2)
	require.Len(t, cards, 5)

	var center Card
	for _, card := range cards {
		if card.Offset == 0 {
			center = card
		}
		assert.LessOrEqual(t, card.Style.Scale, 1.25)
		assert.LessOrEqual(t, card.Style.Opacity, 1.0)
	}

	assert.Equal(t, "C", center.Book.ID)
	assert.Equal(t, 1.25, center.Style.Scale)
	assert.Equal(t, 1.0, center.Style.Opacity)
	assert.Equal(t, 100, center.Style.ZIndex)
	assert.Equal(t, []int{-2, -1, 0, 1, 2}, []int{cards[0].Offset, cards[1].Offset, cards[2].Offset, cards[3].Offset, cards[4].Offset})
}

func TestLayout_Empty(t *testing.T) {
	assert.Empty(t, Layout(nil, 0))
}

func TestStyleFor(t *testing.T) {
	tests := []struct {
		offset int
		want   Style
	}{
		{0, Style{TranslateX: 0, Scale: 1.25, Opacity: 1, Filter: "none", ZIndex: 100}},
		{-1, Style{TranslateX: -300, Scale: 1.05, Opacity: 0.9, Filter: "none", ZIndex: 99}},
		{1, Style{TranslateX: 300, Scale: 1.05, Opacity: 0.9, Filter: "none", ZIndex: 99}},
		{2, Style{TranslateX: 600, Scale: 0.85, Opacity: 0.45, Filter: "blur(2px) saturate(0.7)", ZIndex: 98}},
		{-2, Style{TranslateX: -600, Scale: 0.85, Opacity: 0.45, Filter: "blur(2px) saturate(0.7)", ZIndex: 98}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.offset), func(t *testing.T) {
			assert.Equal(t, tt.want, StyleFor(tt.offset))
		})
	}
}

func TestVisible(t *testing.T) {
	assert.True(t, Visible(-2))
	assert.True(t, Visible(2))
	assert.False(t, Visible(3))
	assert.False(t, Visible(-3))
}
