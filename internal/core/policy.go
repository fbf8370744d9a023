package core

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultReservedNames can never be claimed.
var DefaultReservedNames = []string{"admin", "root", "anonymous", "system"}

// DefaultNamePattern allows ASCII letters and digits only.
const DefaultNamePattern = `^[A-Za-z0-9]+$`

// DefaultMaxNameLength bounds claimed names; zero disables the check.
const DefaultMaxNameLength = 32

// NamePolicy holds the rules a name must pass before it is claimed.
// Uniqueness is not part of the policy: it is checked by the registry
// under its write lock.
type NamePolicy struct {
	reserved  map[string]struct{}
	pattern   *regexp.Regexp
	maxLength int
}

// NewNamePolicy compiles a policy. An empty pattern falls back to
// DefaultNamePattern.
func NewNamePolicy(reserved []string, pattern string, maxLength int) (*NamePolicy, error) {
	if pattern == "" {
		pattern = DefaultNamePattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile name pattern: %w", err)
	}
	if maxLength < 0 {
		return nil, fmt.Errorf("max name length must not be negative, got %d", maxLength)
	}
	p := &NamePolicy{
		reserved:  make(map[string]struct{}, len(reserved)),
		pattern:   re,
		maxLength: maxLength,
	}
	for _, name := range reserved {
		p.reserved[strings.ToLower(name)] = struct{}{}
	}
	return p, nil
}

// DefaultNamePolicy returns the stock rules.
func DefaultNamePolicy() *NamePolicy {
	p, err := NewNamePolicy(DefaultReservedNames, DefaultNamePattern, DefaultMaxNameLength)
	if err != nil {
		panic(err)
	}
	return p
}

// Validate applies the rules in order and returns the first failure.
func (p *NamePolicy) Validate(name string) error {
	if name == "" {
		return chatError(ErrCodeInvalidName, "Oops! The new name cannot be empty.")
	}
	if !p.pattern.MatchString(name) {
		return chatError(ErrCodeInvalidName, "Oops! Try again with letters and numbers only.")
	}
	if p.Reserved(name) {
		return chatError(ErrCodeReservedName,
			"Oops! The name **"+name+"** is reserved. Try again with a different name.")
	}
	if p.maxLength > 0 && utf8.RuneCountInString(name) > p.maxLength {
		return chatError(ErrCodeNameTooLong,
			fmt.Sprintf("Oops! The name **%s** is too long. Use at most %d characters.", name, p.maxLength))
	}
	return nil
}

// Reserved reports whether name is permanently unavailable.
func (p *NamePolicy) Reserved(name string) bool {
	_, ok := p.reserved[strings.ToLower(name)]
	return ok
}
