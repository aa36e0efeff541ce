package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownEnumValue is returned when decoding a label that is not part of a closed enumeration.
var ErrUnknownEnumValue = errors.New("unknown enumeration value")

// enumLabel returns the display label of an integer-tagged enum value.
func enumLabel[T ~int](v T, labels []string, kind string) string {
	if v < 0 || int(v) >= len(labels) {
		return fmt.Sprintf("%s(%d)", kind, int(v))
	}
	return labels[v]
}

func marshalEnum[T ~int](v T, labels []string, kind string) ([]byte, error) {
	if v < 0 || int(v) >= len(labels) {
		return nil, fmt.Errorf("%s %d: %w", kind, int(v), ErrUnknownEnumValue)
	}
	return []byte(labels[v]), nil
}

func parseEnum[T ~int](text string, labels []string, kind string) (T, error) {
	for i, l := range labels {
		if l == text {
			return T(i), nil
		}
	}
	return 0, fmt.Errorf("%s %q: %w", kind, text, ErrUnknownEnumValue)
}
