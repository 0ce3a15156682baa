package css

import (
	"math"
	"strconv"
	"strings"
)

// Sentinel values used when a property is missing.
const (
	Transparent     = "transparent"
	DefaultFontSize = 16.0
)

// ParseLength parses a pixel length ("100px" or "100"). Infinities and
// NaN are rejected.
func ParseLength(val string) (float64, bool) {
	val = strings.TrimSpace(val)
	val = strings.TrimSuffix(val, "px")
	return parseFinite(val)
}

// ParsePercent parses "50%" into 50.
func ParsePercent(val string) (float64, bool) {
	val = strings.TrimSpace(val)
	if !strings.HasSuffix(val, "%") {
		return 0, false
	}
	return parseFinite(strings.TrimSuffix(val, "%"))
}

func parseFinite(val string) (float64, bool) {
	num, err := strconv.ParseFloat(val, 64)
	if err != nil || math.IsInf(num, 0) || math.IsNaN(num) {
		return 0, false
	}
	return num, true
}

// FormatPx formats a pixel length the way the cascade stores it.
func FormatPx(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// FontSizePx returns the resolved font-size of a style in pixels.
func FontSizePx(style map[string]string) float64 {
	if px, ok := ParseLength(style["font-size"]); ok && px > 0 {
		return px
	}
	return DefaultFontSize
}

// Get returns style[property], or fallback when it is missing or empty.
func Get(style map[string]string, property, fallback string) string {
	if v, ok := style[property]; ok && v != "" {
		return v
	}
	return fallback
}
