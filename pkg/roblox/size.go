package roblox

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Size is a square avatar thumbnail edge length in pixels
type Size int

const (
	ExtraTiny  Size = 48
	ExtraSmall Size = 50
	Tiny       Size = 60
	Small      Size = 75
	Medium     Size = 110
	Big        Size = 180
	Large      Size = 352
	ExtraLarge Size = 420
	Enormous   Size = 720
)

var sizeNames = map[Size]string{
	ExtraTiny:  "extra_tiny",
	ExtraSmall: "extra_small",
	Tiny:       "tiny",
	Small:      "small",
	Medium:     "medium",
	Big:        "big",
	Large:      "large",
	ExtraLarge: "extra_large",
	Enormous:   "enormous",
}

// Sizes returns every supported size in ascending order
func Sizes() []Size {
	return []Size{ExtraTiny, ExtraSmall, Tiny, Small, Medium, Big, Large, ExtraLarge, Enormous}
}

// Valid reports whether s is one of the supported sizes
func (s Size) Valid() bool {
	_, ok := sizeNames[s]
	return ok
}

// Name returns the lower snake case member name, e.g. "extra_tiny"
func (s Size) Name() string {
	if name, ok := sizeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("size(%d)", int(s))
}

// String renders the size as the thumbnails API expects it, e.g. "48x48"
func (s Size) String() string {
	return s.Format(2)
}

// Format joins the pixel value dimensions times with "x". Fewer than one
// dimension renders "".
func (s Size) Format(dimensions int) string {
	if dimensions < 1 {
		return ""
	}
	v := strconv.Itoa(int(s))
	parts := make([]string, dimensions)
	for i := range parts {
		parts[i] = v
	}
	return strings.Join(parts, "x")
}

// SizeNames returns the member names of Sizes, e.g. for help text
func SizeNames() []string {
	return lo.Map(Sizes(), func(s Size, _ int) string {
		return s.Name()
	})
}

// ParseSize accepts a member name in any case ("medium", "EXTRA_TINY") or
// the rendered form ("110x110").
func ParseSize(s string) (Size, error) {
	in := strings.TrimSpace(s)
	lower := strings.ToLower(in)

	for size, name := range sizeNames {
		if lower == name || lower == size.String() {
			return size, nil
		}
	}
	return 0, fmt.Errorf("unsupported headshot size %q (one of %s, or WxH)", in, strings.Join(SizeNames(), ", "))
}
