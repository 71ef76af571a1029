package paths

import "strings"

const (
	DefaultSystemPrefix = "upload_"
	DefaultMarker       = "__"
)

// Sanitizer derives a display name from a raw object name.
type Sanitizer struct {
	// SystemPrefix is prepended by automated uploads and always removed.
	SystemPrefix string
	// Marker separates a manual disambiguation tag from the real name.
	Marker string
}

func NewSanitizer(systemPrefix, marker string) Sanitizer {
	return Sanitizer{
		SystemPrefix: systemPrefix,
		Marker:       marker,
	}
}

func DefaultSanitizer() Sanitizer {
	return NewSanitizer(DefaultSystemPrefix, DefaultMarker)
}

// Clean returns the display name for raw. Only the raw name is inspected,
// never the folder it lives in. A strip that would leave nothing is skipped.
func (s Sanitizer) Clean(raw string) string {
	name := raw
	if s.SystemPrefix != "" {
		if stripped := strings.TrimPrefix(name, s.SystemPrefix); stripped != "" {
			name = stripped
		}
	}

	if s.Marker != "" {
		if _, after, found := strings.Cut(name, s.Marker); found {
			if after != "" {
				return after
			}
			return name
		}
	}

	// A leading identifier has no spaces; a space means it is a person's
	// name and part of the title.
	if ident, after, found := strings.Cut(name, "_"); found && ident != "" && after != "" {
		if !strings.Contains(ident, " ") {
			return after
		}
	}

	return name
}
