package core

import (
	"fmt"
	"strconv"
	"strings"
)

// ColorWithOpacity converts a six-digit hex color to an rgba() string
// with the given opacity. Opacity is clamped to [0, 1]; anything that is
// not a six-digit hex color falls back to black at the requested opacity.
func ColorWithOpacity(color string, opacity float64) string {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}

	hex := strings.TrimPrefix(color, "#")
	if len(hex) != 6 || !isHex(hex) {
		return fmt.Sprintf("rgba(0, 0, 0, %g)", opacity)
	}

	r, _ := strconv.ParseUint(hex[0:2], 16, 8)
	g, _ := strconv.ParseUint(hex[2:4], 16, 8)
	b, _ := strconv.ParseUint(hex[4:6], 16, 8)
	return fmt.Sprintf("rgba(%d, %d, %d, %g)", r, g, b, opacity)
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
