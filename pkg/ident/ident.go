// Package ident normalizes free text and derives content-addressed
// identifiers from it.
//
// Normalize is the single equality rule of the application: area names,
// item names, aliases and category names are compared only after passing
// through it. DeriveID builds identifiers for entities that have no
// author-assigned id (areas, items, catalogue sources), so the same name
// always yields the same id across runs and processes.
package ident

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultLength is the number of hex characters kept from the digest.
const DefaultLength = 12

// Normalize applies Unicode compatibility composition (NFKC), trims the
// text and collapses every run of whitespace into a single space.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// DeriveID returns prefix + "_" + the first length hex characters of
// the SHA-1 digest of the normalized seed. Length is clamped to the
// digest size; a non-positive length falls back to DefaultLength.
func DeriveID(prefix, seed string, length int) string {
	if length <= 0 {
		length = DefaultLength
	}
	sum := sha1.Sum([]byte(Normalize(seed)))
	h := hex.EncodeToString(sum[:])
	if length > len(h) {
		length = len(h)
	}
	return prefix + "_" + h[:length]
}

// AreaID derives the identifier of an area from its name.
func AreaID(name string, length int) string {
	return DeriveID("area", name, length)
}

// ItemID derives the identifier of a catalogue item from its name and
// the name of its category.
func ItemID(name, category string, length int) string {
	return DeriveID("item", name+"|"+category, length)
}
