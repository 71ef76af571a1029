// Package access implements the coarse, name-based visibility rules that
// decide which owner folders a caller may enumerate or search.
package access

import (
	"fmt"
	"strings"

	"github.com/mwantia/docsync/pkg/paths"
	"github.com/mwantia/docsync/pkg/search"
)

type Role string

const (
	Privileged Role = "privileged"
	Standard   Role = "standard"
)

// ParseRole maps an external role name onto a Role. Unknown names are
// rejected rather than silently downgraded.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case Privileged, "admin":
		return Privileged, nil
	case Standard, "", "user":
		return Standard, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Context identifies the caller. It is supplied by the identity layer and
// never modified here.
type Context struct {
	Role        Role   `json:"role"`
	DisplayName string `json:"display_name"`
}

func (c Context) IsPrivileged() bool {
	return c.Role == Privileged
}

// CanSeeRootFolder reports whether a root-level folder with the given name
// is visible. Standard callers see folders whose normalized name contains
// their normalized display name.
func CanSeeRootFolder(c Context, folderName string) bool {
	if c.IsPrivileged() {
		return true
	}
	who := search.Normalize(strings.TrimSpace(c.DisplayName))
	if who == "" {
		return false
	}
	return strings.Contains(search.Normalize(folderName), who)
}

// CanSeePath reports whether p is visible. Everything nested under a
// visible root folder is visible; deeper levels are not re-filtered.
// Root-level files have no owner folder and are hidden from Standard
// callers.
func CanSeePath(c Context, p paths.Path) bool {
	if c.IsPrivileged() {
		return true
	}
	segments := p.Segments()
	if len(segments) < 2 {
		return false
	}
	return CanSeeRootFolder(c, segments[0])
}

// IsUploader reports whether the caller is the recorded uploader.
func IsUploader(c Context, uploadedBy string) bool {
	who := search.Normalize(strings.TrimSpace(c.DisplayName))
	return who != "" && who == search.Normalize(strings.TrimSpace(uploadedBy))
}

// CanSeeObject is the global search rule: a visible path, or the caller's
// own upload.
func CanSeeObject(c Context, p paths.Path, uploadedBy string) bool {
	return CanSeePath(c, p) || IsUploader(c, uploadedBy)
}
