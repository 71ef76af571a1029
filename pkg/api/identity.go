package api

import (
	"context"
	"net/http"

	"github.com/mwantia/docsync/pkg/access"
	"github.com/mwantia/docsync/pkg/paths"
	"github.com/mwantia/docsync/pkg/vaulterr"
)

// Headers set by the identity layer in front of the API.
const (
	HeaderRole        = "X-Docsync-Role"
	HeaderDisplayName = "X-Docsync-Display-Name"
)

type contextKey string

const visibilityContextKey contextKey = "visibility"

// Visibility returns the caller stored by the Identity middleware. Without
// it the caller is an anonymous Standard user who sees nothing.
func Visibility(ctx context.Context) access.Context {
	vis, ok := ctx.Value(visibilityContextKey).(access.Context)
	if !ok {
		return access.Context{Role: access.Standard}
	}
	return vis
}

// Identity reads the caller from the identity headers.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, err := access.ParseRole(r.Header.Get(HeaderRole))
		if err != nil {
			BadRequest(w, err.Error())
			return
		}

		vis := access.Context{
			Role:        role,
			DisplayName: r.Header.Get(HeaderDisplayName),
		}
		ctx := context.WithValue(r.Context(), visibilityContextKey, vis)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// canTouch reports whether the caller may modify p: anything beneath a root
// folder they can see.
func canTouch(vis access.Context, p paths.Path) bool {
	if vis.IsPrivileged() {
		return true
	}
	segments := p.Segments()
	return len(segments) > 0 && access.CanSeeRootFolder(vis, segments[0])
}

func notVisible(p paths.Path) error {
	return vaulterr.NewNotFoundError(p.String(), "document")
}
