// Package paths implements the pure path transforms used across docsync:
// canonical object paths, the injective metadata key encoding and display
// name derivation.
package paths

import (
	"path"
	"strings"
)

// Path is a canonical, slash-separated object path such as
// "/clients/X/report.pdf". The zero value is not canonical; use Clean.
type Path string

// Root is the top of the document tree.
const Root Path = "/"

// RootLabel is shown in place of the physical root segment.
const RootLabel = "Root"

// Clean canonicalizes raw into a Path with a leading slash and no trailing
// slash. Empty input yields Root.
func Clean(raw string) Path {
	raw = strings.ReplaceAll(raw, "\\", "/")
	if raw == "" {
		return Root
	}
	return Path(path.Clean("/" + raw))
}

func (p Path) String() string {
	return string(p)
}

func (p Path) IsRoot() bool {
	return p == Root || p == ""
}

// Segments returns the ordered path segments; Root has none.
func (p Path) Segments() []string {
	if p.IsRoot() {
		return nil
	}
	return strings.Split(strings.TrimPrefix(string(p), "/"), "/")
}

// Base returns the last segment, or "" for Root.
func (p Path) Base() string {
	if p.IsRoot() {
		return ""
	}
	return path.Base(string(p))
}

// Parent returns the containing folder; the parent of Root is Root.
func (p Path) Parent() Path {
	if p.IsRoot() {
		return Root
	}
	return Path(path.Dir(string(p)))
}

// Join appends segments to p and canonicalizes the result.
func (p Path) Join(elem ...string) Path {
	return Clean(path.Join(append([]string{string(p)}, elem...)...))
}

// Depth is the number of segments in p.
func (p Path) Depth() int {
	return len(p.Segments())
}

// IsWithin reports whether p lies strictly beneath folder, comparing whole
// segments so "/a/bc" is not within "/a/b".
func (p Path) IsWithin(folder Path) bool {
	if p == folder {
		return false
	}
	if folder.IsRoot() {
		return !p.IsRoot()
	}
	return strings.HasPrefix(string(p), string(folder)+"/")
}

// Rel returns p relative to folder without a leading slash. It returns ""
// when p is not within folder.
func (p Path) Rel(folder Path) string {
	if !p.IsWithin(folder) {
		return ""
	}
	if folder.IsRoot() {
		return strings.TrimPrefix(string(p), "/")
	}
	return strings.TrimPrefix(string(p), string(folder)+"/")
}

// Rebase moves p from beneath from to beneath to, preserving the relative
// suffix. A p equal to from maps to to.
func Rebase(p, from, to Path) Path {
	if p == from {
		return to
	}
	return to.Join(p.Rel(from))
}

// ObjectKey is the blob-store key for p: the path without its leading slash.
func (p Path) ObjectKey() string {
	return strings.TrimPrefix(string(p), "/")
}

// FromObjectKey is the inverse of ObjectKey.
func FromObjectKey(key string) Path {
	return Clean(key)
}

// ParentLabel returns the name of the nearest ancestor folder of p, mapping
// the physical root to RootLabel.
func ParentLabel(p Path) string {
	parent := p.Parent()
	if parent.IsRoot() {
		return RootLabel
	}
	return parent.Base()
}
