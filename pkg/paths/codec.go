package paths

import "strings"

// Metadata keys may not contain the path separator, so Encode escapes it.
// The escape character is escaped first, which keeps the mapping injective.
var (
	keyEncoder = strings.NewReplacer("%", "%25", "/", "%2F")
	keyDecoder = strings.NewReplacer("%2F", "/", "%25", "%")
)

// Encode derives the metadata key for p. It is total and injective over
// canonical paths.
func Encode(p Path) string {
	if p.IsRoot() {
		return "%2F"
	}
	return keyEncoder.Replace(p.ObjectKey())
}

// Decode returns the path a key was derived from.
func Decode(key string) Path {
	if key == "%2F" {
		return Root
	}
	return Clean(keyDecoder.Replace(key))
}
