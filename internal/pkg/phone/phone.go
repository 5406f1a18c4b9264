// Package phone normalises subscriber numbers before they are handed to the
// SMS gateway.
package phone

import "strings"

// Normalize returns number in international format for countryCode (digits
// only, e.g. "254"). Numbers already starting with "+" are kept; a leading
// local trunk "0" is replaced by the country code; a bare national number
// gets the country code prepended.
func Normalize(number, countryCode string) string {
	n := clean(number)
	if n == "" || strings.HasPrefix(n, "+") {
		return n
	}

	prefix := "+" + countryCode
	switch {
	case strings.HasPrefix(n, "0"):
		return prefix + n[1:]
	case strings.HasPrefix(n, countryCode) && len(n) == len(countryCode)+9:
		// Country code without the plus, e.g. 254712345678.
		return "+" + n
	default:
		return prefix + n
	}
}

// clean removes the separators people type into numbers.
func clean(number string) string {
	r := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
	return r.Replace(strings.TrimSpace(number))
}
