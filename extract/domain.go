package extract

import "regexp"

var domainPattern = regexp.MustCompile(`[^<>@\s]+@([^<>@\s]+)`)

// Domain returns the part after '@' of the first address-like token in
// address, or "" when there is none.
func Domain(address string) string {
	match := domainPattern.FindStringSubmatch(address)
	if match == nil {
		return ""
	}
	return match[1]
}
