package sentiment

import (
	"fmt"
	"strconv"
	"strings"
)

// Class is the polarity returned by the API. The numeric values are the
// API's own codes and are what the checkpoint file stores.
type Class int

const (
	Negative Class = 0
	Neutral  Class = 1
	Positive Class = 2
)

// Classes lists the polarities in code order
var Classes = []Class{Negative, Neutral, Positive}

// String returns the lower-case class name
func (c Class) String() string {
	switch c {
	case Negative:
		return "negative"
	case Neutral:
		return "neutral"
	case Positive:
		return "positive"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

// Valid reports whether c is one of the API's codes
func (c Class) Valid() bool {
	return c >= Negative && c <= Positive
}

// Code returns the numeric API code as text
func (c Class) Code() string {
	return strconv.Itoa(int(c))
}

// ParseClass accepts either the numeric code or the class name
func ParseClass(s string) (Class, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	// Older checkpoints written through a float column hold "1.0"
	s = strings.TrimSuffix(s, ".0")
	switch s {
	case "0", "negative":
		return Negative, nil
	case "1", "neutral":
		return Neutral, nil
	case "2", "positive":
		return Positive, nil
	}
	return Neutral, fmt.Errorf("unknown sentiment class %q", s)
}

// Result is the classification of one message
type Result struct {
	Class        Class
	Confidence   float64
	PositiveProb float64
	NegativeProb float64

	// Fallback marks the neutral default produced when the API could not
	// answer. It is indistinguishable from a real neutral once persisted.
	Fallback bool
}

// NeutralResult is the default returned when a request fails
func NeutralResult() *Result {
	return &Result{Class: Neutral, Fallback: true}
}
