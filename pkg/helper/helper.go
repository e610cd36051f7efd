package helper

import (
	"fmt"
	"image/color"
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// method to convert from seconds to minutes:seconds:milliseconds
func SecondsToMinutes(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	total := int(math.Round(seconds * 1000))
	minutes := total / 60000
	secs := total % 60000 / 1000
	return fmt.Sprintf("%02d:%02d.%03d", minutes, secs, total%1000)
}

// LapTime renders a lap duration as mm:ss.mmm, or "-" when there is none.
func LapTime(d time.Duration, ok bool) string {
	if !ok {
		return "-"
	}
	return SecondsToMinutes(d.Seconds())
}

func SecondsToDiff(seconds float64) string {
	diff := fmt.Sprintf("%+.3fs", seconds)
	chars := len(diff)
	if chars < 9 {
		// add spaces to the left
		diff = strings.Repeat(" ", 9-chars) + diff
	}
	return diff
}

// ParseHexColor reads "#RRGGBB" or "#RGB".
func ParseHexColor(s string) (color.RGBA, error) {
	c := color.RGBA{A: 0xff}
	var err error
	switch len(s) {
	case 7:
		_, err = fmt.Sscanf(s, "#%2x%2x%2x", &c.R, &c.G, &c.B)
	case 4:
		_, err = fmt.Sscanf(s, "#%1x%1x%1x", &c.R, &c.G, &c.B)
		c.R *= 17
		c.G *= 17
		c.B *= 17
	default:
		err = errors.New("invalid length")
	}
	if err != nil {
		return color.RGBA{}, errors.Wrapf(err, "parsing color %q", s)
	}
	return c, nil
}

// MustColor is ParseHexColor for colors known at build time.
func MustColor(s string) color.RGBA {
	c, err := ParseHexColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ColorOr parses s and returns fallback when it is not a valid color.
func ColorOr(s string, fallback color.Color) color.Color {
	c, err := ParseHexColor(s)
	if err != nil {
		return fallback
	}
	return c
}
