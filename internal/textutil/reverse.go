// Package textutil holds small string helpers exposed by the utility endpoints.
package textutil

import "unicode"

// Reverse reverses the alphanumeric runes of s while every other rune keeps
// its original position. "ab,cd" becomes "dc,ba".
func Reverse(s string) string {
	rs := []rune(s)
	left, right := 0, len(rs)-1
	for left < right {
		switch {
		case !isAlnum(rs[left]):
			left++
		case !isAlnum(rs[right]):
			right--
		default:
			rs[left], rs[right] = rs[right], rs[left]
			left++
			right--
		}
	}
	return string(rs)
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}
