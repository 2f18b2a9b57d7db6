// internal/models/card.go
package models

import (
	"fmt"
	"strings"
)

// Color is one of the four suit colors, or Wild for color-less cards.
type Color string

const (
	Red    Color = "red"
	Blue   Color = "blue"
	Green  Color = "green"
	Yellow Color = "yellow"
	Wild   Color = "wild"
)

// Colors lists the four playable suit colors in deck-build order.
var Colors = []Color{Red, Blue, Green, Yellow}

// Face is the value printed on a card: a digit or an action.
type Face string

const (
	FaceSkip         Face = "skip"
	FaceReverse      Face = "reverse"
	FaceDraw2        Face = "draw2"
	FaceWild         Face = "wild"
	FaceWildDrawFour Face = "wild_draw4"
)

// NumberFace returns the face for digit n (0-9).
func NumberFace(n int) Face {
	return Face(fmt.Sprintf("%d", n))
}

// IsNumber reports whether f is one of the digit faces.
func (f Face) IsNumber() bool {
	return len(f) == 1 && f[0] >= '0' && f[0] <= '9'
}

// Card is an immutable color/face pair. Cards with equal fields are interchangeable.
type Card struct {
	Color Color
	Face  Face
}

// String renders the card as its wire token, e.g. "red_7", "blue_skip", "wild_draw4".
func (c Card) String() string {
	if c.Color == Wild {
		if c.Face == FaceWildDrawFour {
			return "wild_draw4"
		}
		return "wild"
	}
	return string(c.Color) + "_" + string(c.Face)
}

// IsWild reports whether the card carries the wild color.
func (c Card) IsWild() bool {
	return c.Color == Wild
}

// ParseCard decodes a "<color>_<face>" token. Plain wild cards may be written as
// "wild" or "wild_wild".
func ParseCard(token string) (Card, error) {
	switch token {
	case "wild", "wild_wild":
		return Card{Color: Wild, Face: FaceWild}, nil
	case "wild_draw4":
		return Card{Color: Wild, Face: FaceWildDrawFour}, nil
	}

	color, face, ok := strings.Cut(token, "_")
	if !ok || face == "" {
		return Card{}, fmt.Errorf("malformed card token %q", token)
	}

	c := Card{Color: Color(color), Face: Face(face)}
	switch c.Color {
	case Red, Blue, Green, Yellow:
	default:
		return Card{}, fmt.Errorf("unknown color in card token %q", token)
	}
	switch {
	case c.Face.IsNumber():
	case c.Face == FaceSkip, c.Face == FaceReverse, c.Face == FaceDraw2:
	default:
		return Card{}, fmt.Errorf("unknown face in card token %q", token)
	}
	return c, nil
}

// MustParseCard is ParseCard for literals known to be valid. It panics otherwise.
func MustParseCard(token string) Card {
	c, err := ParseCard(token)
	if err != nil {
		panic(err)
	}
	return c
}

// MarshalText implements encoding.TextMarshaler so hands and piles serialize as tokens.
func (c Card) MarshalText() ([]byte, error) {
	if c.Color == "" || c.Face == "" {
		return nil, fmt.Errorf("cannot encode empty card")
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
