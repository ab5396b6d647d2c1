package screen

import "github.com/unilibs/uniwidth"

// runeWidth reports the terminal column width of r: 0 for combining marks,
// 1 for ordinary printable runes, 2 for wide (CJK, emoji) runes.
func runeWidth(r rune) int {
	return uniwidth.RuneWidth(r)
}
