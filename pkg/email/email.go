// Package email validates contact email addresses at registration boundaries.
package email

import "regexp"

// pattern accepts the usual local@domain.tld shape. Intentionally simpler
// than full RFC 5322; the mail provider is the final authority.
var pattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// IsValid reports whether the address matches the accepted format.
func IsValid(address string) bool {
	return pattern.MatchString(address)
}
