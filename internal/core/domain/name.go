package domain

import (
	"regexp"
	"strings"
)

const maxNameLength = 12

var nameRegexp = regexp.MustCompile(`^[a-z1-5.]+$`)

// ValidateName checks that the given string is a well formed account name:
// 1 to 12 chars in [a-z1-5.], not ending with a dot.
func ValidateName(name string) error {
	if len(name) <= 0 || len(name) > maxNameLength {
		return invalidInput("name %q must be 1 to %d chars long", name, maxNameLength)
	}
	if !nameRegexp.MatchString(name) {
		return invalidInput("name %q contains invalid chars", name)
	}
	if strings.HasSuffix(name, ".") {
		return invalidInput("name %q must not end with a dot", name)
	}
	return nil
}
