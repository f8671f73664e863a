package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dhcgn/mbox-to-postgres/model"
)

// Options captures the filtering configuration.
type Options struct {
	IncludeAddress []string
	IncludeDomain  []string
	ExcludeAddress []string
	ExcludeDomain  []string
}

// Filter holds compiled regex patterns applied to extracted records.
type Filter struct {
	includeMode    bool
	excludeMode    bool
	includeAddress []*regexp.Regexp
	includeDomain  []*regexp.Regexp
	excludeAddress []*regexp.Regexp
	excludeDomain  []*regexp.Regexp
}

// New creates a new Filter from the provided options.
func New(opts Options) (*Filter, error) {
	includeAddress, err := compilePatterns(opts.IncludeAddress)
	if err != nil {
		return nil, fmt.Errorf("compile include-address pattern: %w", err)
	}
	includeDomain, err := compilePatterns(opts.IncludeDomain)
	if err != nil {
		return nil, fmt.Errorf("compile include-domain pattern: %w", err)
	}
	excludeAddress, err := compilePatterns(opts.ExcludeAddress)
	if err != nil {
		return nil, fmt.Errorf("compile exclude-address pattern: %w", err)
	}
	excludeDomain, err := compilePatterns(opts.ExcludeDomain)
	if err != nil {
		return nil, fmt.Errorf("compile exclude-domain pattern: %w", err)
	}

	includeActive := len(includeAddress) > 0 || len(includeDomain) > 0
	excludeActive := len(excludeAddress) > 0 || len(excludeDomain) > 0
	if includeActive && excludeActive {
		return nil, fmt.Errorf("include and exclude filters are mutually exclusive")
	}

	return &Filter{
		includeMode:    includeActive,
		excludeMode:    excludeActive,
		includeAddress: includeAddress,
		includeDomain:  includeDomain,
		excludeAddress: excludeAddress,
		excludeDomain:  excludeDomain,
	}, nil
}

// Allows returns true if the record passes the filter criteria.
func (f *Filter) Allows(rec model.Record) bool {
	if f.includeMode {
		return matchAny(f.includeAddress, rec.Address) || matchAny(f.includeDomain, rec.Domain)
	}

	if f.excludeMode {
		if matchAny(f.excludeAddress, rec.Address) || matchAny(f.excludeDomain, rec.Domain) {
			return false
		}
	}

	return true
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile %q: %w", pattern, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

func matchAny(patterns []*regexp.Regexp, text string) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
