package siteindex

import "regexp"

// URLRules specifies regular expressions for including/excluding URLs.
// Patterns are searched anywhere in the URL, not anchored.
type URLRules struct {
	// Include patterns - if set, only URLs matching at least one pattern pass.
	Include []*regexp.Regexp

	// Exclude patterns - URLs matching any pattern are rejected.
	// Exclude is checked before Include, so an include match never rescues
	// an excluded URL.
	Exclude []*regexp.Regexp
}

// CompileRules compiles include and exclude patterns into URLRules.
// Returns EINVALID if any pattern fails to compile.
func CompileRules(include, exclude []string) (*URLRules, error) {
	rules := &URLRules{}
	for _, p := range include {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, Errorf(EINVALID, "invalid include pattern %q: %v", p, err)
		}
		rules.Include = append(rules.Include, re)
	}
	for _, p := range exclude {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, Errorf(EINVALID, "invalid exclude pattern %q: %v", p, err)
		}
		rules.Exclude = append(rules.Exclude, re)
	}
	return rules, nil
}

// Match returns true if the URL passes the rules.
// If the rules are nil, all URLs pass.
func (r *URLRules) Match(url string) bool {
	if r == nil {
		return true
	}

	for _, re := range r.Exclude {
		if re.MatchString(url) {
			return false
		}
	}

	if len(r.Include) == 0 {
		return true
	}
	for _, re := range r.Include {
		if re.MatchString(url) {
			return true
		}
	}
	return false
}
