// Package color provides basic color definitions for a chess game
package color

import "fmt"

// Color represent a chess color
type Color string

// Possible color variations in a chess game. None marks "no color", e.g. a paused clock.
const (
	None  Color = ""
	White Color = "white"
	Black Color = "black"
)

// Opp returns the opposite color for the given color.
func (c Color) Opp() Color {
	if c == White {
		return Black
	}

	return White
}

// Valid reports whether c is white or black.
func (c Color) Valid() bool {
	return c == White || c == Black
}

func (c Color) String() string {
	if c == None {
		return "none"
	}
	return string(c)
}

// Parse accepts the long and the single-letter forms.
func Parse(s string) (Color, error) {
	switch s {
	case "white", "w":
		return White, nil
	case "black", "b":
		return Black, nil
	}
	return None, fmt.Errorf("unknown color %q", s)
}
