package utils

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
)

// RedactionPattern defines a pattern to detect and mask before text leaves the machine
type RedactionPattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string // Template for replacement, e.g. "URL_%s"
	Priority    int    // Higher priority patterns are processed first
}

// Redactor masks personal data in chat text. Redaction is one-way.
type Redactor struct {
	patterns []RedactionPattern
}

// NewRedactor creates a redactor with the default patterns
func NewRedactor() *Redactor {
	r := &Redactor{
		patterns: []RedactionPattern{
			{
				Name:        "URL",
				Regex:       regexp.MustCompile(`https?://[^\s\)\"\'<>]+`),
				Replacement: "URL_%s",
				Priority:    80,
			},
			{
				Name:        "Email",
				Regex:       regexp.MustCompile(`\b[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}\b`),
				Replacement: "EMAIL_%s",
				Priority:    70,
			},
			{
				Name:        "IPv4 Address",
				Regex:       regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\b`),
				Replacement: "IP_%s",
				Priority:    60,
			},
			{
				// Mainland mobile numbers, optionally +86 prefixed
				Name:        "Phone Number",
				Regex:       regexp.MustCompile(`(?:\+?86[-\s]?)?1[3-9]\d{9}\b`),
				Replacement: "PHONE_%s",
				Priority:    50,
			},
			{
				Name:        "ID Card Number",
				Regex:       regexp.MustCompile(`\b\d{17}[\dXx]\b`),
				Replacement: "ID_%s",
				Priority:    55,
			},
		},
	}
	r.sortPatterns()
	return r
}

// AddPattern registers an extra pattern
func (r *Redactor) AddPattern(name, regexPattern, replacement string, priority int) error {
	re, err := regexp.Compile(regexPattern)
	if err != nil {
		return fmt.Errorf("invalid pattern %s: %w", name, err)
	}
	r.patterns = append(r.patterns, RedactionPattern{
		Name:        name,
		Regex:       re,
		Replacement: replacement,
		Priority:    priority,
	})
	r.sortPatterns()
	return nil
}

func (r *Redactor) sortPatterns() {
	sort.SliceStable(r.patterns, func(i, j int) bool {
		return r.patterns[i].Priority > r.patterns[j].Priority
	})
}

// Redact replaces every match with a stable hashed placeholder
func (r *Redactor) Redact(text string) string {
	if text == "" {
		return text
	}
	for _, p := range r.patterns {
		text = p.Regex.ReplaceAllStringFunc(text, func(match string) string {
			return placeholder(p.Replacement, match)
		})
	}
	return text
}

// placeholder creates a consistent placeholder for a value
func placeholder(template, value string) string {
	hash := md5.Sum([]byte(value))
	return fmt.Sprintf(template, hex.EncodeToString(hash[:])[:8])
}
