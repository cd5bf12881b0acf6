// Package rfc3339 recognizes RFC 3339 timestamps, including leap seconds
// which time.Parse rejects.
package rfc3339

import (
	"strings"
	"time"
)

// Parse parses an RFC 3339 timestamp. A leap second (":60") is accepted and
// folded into the following second.
func Parse(s string) (time.Time, error) {
	t, err := parse(s)
	if err == nil {
		return t, nil
	}
	// hh:mm:60 -> hh:mm:59, then add the second back.
	if len(s) >= 19 && s[16:19] == ":60" {
		folded := s[:17] + "59" + s[19:]
		if t2, err2 := parse(folded); err2 == nil {
			return t2.Add(time.Second), nil
		}
	}
	return time.Time{}, err
}

// Valid reports whether s is an RFC 3339 timestamp.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Format renders t in UTC using RFC3339Nano (trailing zeros trimmed).
func Format(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parse(s string) (time.Time, error) {
	// RFC 3339 allows lowercase "t" and "z"; time.Parse does not.
	s = strings.Map(func(r rune) rune {
		switch r {
		case 't':
			return 'T'
		case 'z':
			return 'Z'
		}
		return r
	}, s)
	return time.Parse(time.RFC3339Nano, s)
}
