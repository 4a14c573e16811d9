package tables

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/milk9111/tokencam/ecs"
	"github.com/milk9111/tokencam/ecs/component"
)

// Spawn creates one entity per token in the world.
func Spawn(w *ecs.World, t *Table) error {
	if w == nil || t == nil {
		return fmt.Errorf("nil world or table")
	}
	for _, tok := range t.Tokens {
		c, err := parseColor(tok.Color)
		if err != nil {
			return fmt.Errorf("token %s: %w", tok.ID, err)
		}
		e := ecs.CreateEntity(w)
		ecs.Add(w, e, component.TransformComponent, component.Transform{X: tok.X, Y: tok.Y})
		ecs.Add(w, e, component.TokenComponent, component.Token{
			ID:        tok.ID,
			Name:      tok.Name,
			OwnerID:   tok.Owner,
			Radius:    tok.Radius,
			Elevation: tok.Elevation,
			Color:     c,
		})
	}
	return nil
}

// parseColor accepts #rgb, #rrggbb, or empty (defaults to white).
func parseColor(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if s == "" {
		return color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, nil
	}
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.NRGBA{}, fmt.Errorf("bad color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("bad color %q: %w", s, err)
	}
	return color.NRGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xff,
	}, nil
}
