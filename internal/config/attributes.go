package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/v0xg/puppetrec/internal/codegen"
)

// Attributes splits the space-separated dataAttribute option.
func Attributes(opts codegen.Options) []string {
	return strings.Fields(opts.DataAttribute)
}

// AttributeMatcher decides whether an element attribute is one of the preferred data
// attributes the capture agent should build selectors from.
type AttributeMatcher struct {
	names    []string
	patterns []*regexp.Regexp
}

// NewAttributeMatcher parses the space-separated dataAttribute list. Each token is a
// regular expression when useRegexForDataAttribute is set.
func NewAttributeMatcher(opts codegen.Options) (*AttributeMatcher, error) {
	m := &AttributeMatcher{names: Attributes(opts)}
	if !opts.UseRegexForDataAttribute {
		return m, nil
	}

	for _, name := range m.names {
		re, err := regexp.Compile(name)
		if err != nil {
			return nil, fmt.Errorf("invalid data attribute pattern %q: %w", name, err)
		}
		m.patterns = append(m.patterns, re)
	}
	return m, nil
}

// Names returns the configured attribute names or patterns in order.
func (m *AttributeMatcher) Names() []string {
	return m.names
}

// Match reports whether attribute is preferred.
func (m *AttributeMatcher) Match(attribute string) bool {
	if m.patterns != nil {
		for _, re := range m.patterns {
			if re.MatchString(attribute) {
				return true
			}
		}
		return false
	}
	for _, name := range m.names {
		if name == attribute {
			return true
		}
	}
	return false
}
