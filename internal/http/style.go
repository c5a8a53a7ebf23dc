package http

import (
	"errors"
	"fmt"

	"github.com/hallowedlibrary/shelf/internal/carousel"
)

// cardCSS renders a carousel card transform as an inline style.
func cardCSS(s carousel.Style) string {
	return fmt.Sprintf(
		"transform: translateX(calc(-50%% + %dpx)) scale(%.2f); opacity: %.2f; filter: %s; z-index: %d;",
		s.TranslateX, s.Scale, s.Opacity, s.Filter, s.ZIndex,
	)
}

// dict builds a map from alternating keys and values so templates can pass
// several values to a sub-template.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("dict needs an even number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict key %v is not a string", pairs[i])
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}
