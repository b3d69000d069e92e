package siteindex

import "regexp"

var sourceNameRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]{2,32}$`)

// ValidateSourceName returns EINVALID unless name starts with a letter and
// continues with 2 to 32 letters, digits, underscores or hyphens.
func ValidateSourceName(name string) error {
	if !sourceNameRe.MatchString(name) {
		return Errorf(EINVALID, "invalid source_name %q: must match %s", name, sourceNameRe.String())
	}
	return nil
}
