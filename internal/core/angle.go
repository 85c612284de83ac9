package core

import (
	"math"
	"strconv"
	"strings"
)

// ParseSexagesimal converts "d:m:s" (or space separated, or a plain
// decimal) into decimal units. The sign applies to the whole value, so
// "-00:30:00" is -0.5.
func ParseSexagesimal(value string) (float64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return math.NaN(), false
	}
	sign := 1.0
	switch value[0] {
	case '-':
		sign = -1
		value = value[1:]
	case '+':
		value = value[1:]
	}
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ':' || r == ' ' || r == 'h' || r == 'd' || r == 'm' || r == 's'
	})
	if len(fields) == 0 || len(fields) > 3 {
		return math.NaN(), false
	}
	total := 0.0
	scale := 1.0
	for i, field := range fields {
		part, err := strconv.ParseFloat(field, 64)
		if err != nil || part < 0 {
			return math.NaN(), false
		}
		if i > 0 && part >= 60 {
			return math.NaN(), false
		}
		total += part / scale
		scale *= 60
	}
	return sign * total, true
}

// HoursToDegrees parses a sexagesimal right ascension in hours and
// returns degrees, or NaN.
func HoursToDegrees(value string) float64 {
	hours, ok := ParseSexagesimal(value)
	if !ok {
		return math.NaN()
	}
	return hours * 15
}

// DegreesValue parses a sexagesimal declination in degrees, or NaN.
func DegreesValue(value string) float64 {
	degrees, ok := ParseSexagesimal(value)
	if !ok {
		return math.NaN()
	}
	return degrees
}
