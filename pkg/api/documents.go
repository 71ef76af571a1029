package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mwantia/docsync/pkg/access"
	"github.com/mwantia/docsync/pkg/blob"
	"github.com/mwantia/docsync/pkg/db/models"
	"github.com/mwantia/docsync/pkg/mover"
	"github.com/mwantia/docsync/pkg/paths"
	"github.com/mwantia/docsync/pkg/search"
	"github.com/mwantia/docsync/pkg/vault"
)

// MaxUploadBytes bounds a single upload body.
const MaxUploadBytes = 64 << 20

// Facade is the part of *vault.Vault served over HTTP.
type Facade interface {
	HealthChecker

	List(ctx context.Context, folder paths.Path, vis access.Context, opts vault.ListOptions) (vault.Listing, error)
	Stat(ctx context.Context, p paths.Path) (vault.Entry, error)
	Search(ctx context.Context, vis access.Context, query string, order search.Order) ([]vault.Entry, error)

	Upload(ctx context.Context, p paths.Path, data []byte, uploader string) (models.Record, error)
	Download(ctx context.Context, p paths.Path) ([]byte, blob.Object, error)
	Delete(ctx context.Context, p paths.Path) error
	BatchDelete(ctx context.Context, targets []paths.Path) vault.Tally
	SetFlags(ctx context.Context, p paths.Path, update vault.FlagUpdate, actor string) (vault.Entry, error)

	CreateFolder(ctx context.Context, folder paths.Path) (vault.FolderNode, error)
	DeleteFolder(ctx context.Context, folder paths.Path) (vault.Tally, error)

	Move(ctx context.Context, op mover.Operation) (mover.Result, error)
	Rename(ctx context.Context, p paths.Path, newName string, kind mover.Kind) (mover.Result, error)
}

var _ Facade = (*vault.Vault)(nil)

type DocumentHandler struct {
	vault Facade
}

func NewDocumentHandler(v Facade) *DocumentHandler {
	return &DocumentHandler{vault: v}
}

// MoveRequest is the body of POST /api/v1/move.
type MoveRequest struct {
	Source string `json:"source"`
	Dest   string `json:"dest"`
	Kind   string `json:"kind"`
}

// RenameRequest is the body of POST /api/v1/rename.
type RenameRequest struct {
	Path string `json:"path"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// BatchDeleteRequest is the body of POST /api/v1/batch-delete.
type BatchDeleteRequest struct {
	Paths []string `json:"paths"`
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		BadRequest(w, "Invalid request body")
		return false
	}
	return true
}

func wildcardPath(r *http.Request) paths.Path {
	return paths.Clean(chi.URLParam(r, "*"))
}

func parseOrder(w http.ResponseWriter, r *http.Request) (search.Order, bool) {
	order, err := search.ParseOrder(r.URL.Query().Get("sort"), r.URL.Query().Get("order"))
	if err != nil {
		BadRequest(w, err.Error())
		return search.Order{}, false
	}
	return order, true
}

// List handles GET /api/v1/list?path=&filter=&q=&sort=&order=.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := vault.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		BadRequest(w, err.Error())
		return
	}
	order, ok := parseOrder(w, r)
	if !ok {
		return
	}

	listing, err := h.vault.List(r.Context(), paths.Clean(r.URL.Query().Get("path")), Visibility(r.Context()), vault.ListOptions{
		Filter: filter,
		Query:  r.URL.Query().Get("q"),
		Sort:   order,
	})
	if err != nil {
		Fail(w, err, nil)
		return
	}
	JSON(w, http.StatusOK, OKResponse(listing))
}

// Search handles GET /api/v1/search?q=&sort=&order=.
func (h *DocumentHandler) Search(w http.ResponseWriter, r *http.Request) {
	order, ok := parseOrder(w, r)
	if !ok {
		return
	}

	entries, err := h.vault.Search(r.Context(), Visibility(r.Context()), r.URL.Query().Get("q"), order)
	if err != nil {
		Fail(w, err, nil)
		return
	}
	JSON(w, http.StatusOK, OKResponse(entries))
}

// guard writes a not-found reply and returns false unless the caller may
// modify every path in ps.
func guard(w http.ResponseWriter, r *http.Request, ps ...paths.Path) bool {
	vis := Visibility(r.Context())
	for _, p := range ps {
		if !canTouch(vis, p) {
			Fail(w, notVisible(p), nil)
			return false
		}
	}
	return true
}

// stat returns the entry at p if the caller may see it, applying the same
// rule as global search.
func (h *DocumentHandler) stat(r *http.Request, p paths.Path) (vault.Entry, error) {
	entry, err := h.vault.Stat(r.Context(), p)
	if err != nil {
		return vault.Entry{}, err
	}
	if !access.CanSeeObject(Visibility(r.Context()), p, entry.UploadedBy) {
		return vault.Entry{}, notVisible(p)
	}
	return entry, nil
}

// Stat handles GET /api/v1/stat/*.
func (h *DocumentHandler) Stat(w http.ResponseWriter, r *http.Request) {
	entry, err := h.stat(r, wildcardPath(r))
	if err != nil {
		Fail(w, err, nil)
		return
	}
	JSON(w, http.StatusOK, OKResponse(entry))
}

// Download handles GET /api/v1/documents/*.
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	p := wildcardPath(r)
	if _, err := h.stat(r, p); err != nil {
		Fail(w, err, nil)
		return
	}

	data, obj, err := h.vault.Download(r.Context(), p)
	if err != nil {
		Fail(w, err, nil)
		return
	}

	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Upload handles PUT /api/v1/documents/* with the raw content as body. The
// caller's display name is recorded as the uploader.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	p := wildcardPath(r)
	if !guard(w, r, p) {
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxUploadBytes))
	if err != nil {
		JSON(w, http.StatusRequestEntityTooLarge, ErrorResponse(err.Error()))
		return
	}

	record, err := h.vault.Upload(r.Context(), p, data, Visibility(r.Context()).DisplayName)
	if err != nil {
		Fail(w, err, nil)
		return
	}
	JSON(w, http.StatusCreated, OKResponse(record))
}

// Delete handles DELETE /api/v1/documents/*.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p := wildcardPath(r)
	if !guard(w, r, p) {
		return
	}

	if err := h.vault.Delete(r.Context(), p); err != nil {
		Fail(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetFlags handles PATCH /api/v1/documents/* with a FlagUpdate body.
func (h *DocumentHandler) SetFlags(w http.ResponseWriter, r *http.Request) {
	p := wildcardPath(r)
	if !guard(w, r, p) {
		return
	}

	var update vault.FlagUpdate
	if !decodeJSONBody(w, r, &update) {
		return
	}

	entry, err := h.vault.SetFlags(r.Context(), p, update, Visibility(r.Context()).DisplayName)
	if err != nil {
		Fail(w, err, nil)
		return
	}
	JSON(w, http.StatusOK, OKResponse(entry))
}

// BatchDelete handles POST /api/v1/batch-delete.
func (h *DocumentHandler) BatchDelete(w http.ResponseWriter, r *http.Request) {
	var req BatchDeleteRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	targets := make([]paths.Path, 0, len(req.Paths))
	for _, p := range req.Paths {
		targets = append(targets, paths.Clean(p))
	}
	if !guard(w, r, targets...) {
		return
	}

	tally := h.vault.BatchDelete(r.Context(), targets)
	if err := tally.Err("/"); err != nil {
		Fail(w, err, tally)
		return
	}
	JSON(w, http.StatusOK, OKResponse(tally))
}

// CreateFolder handles POST /api/v1/folders/*.
func (h *DocumentHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	p := wildcardPath(r)
	if !guard(w, r, p) {
		return
	}

	node, err := h.vault.CreateFolder(r.Context(), p)
	if err != nil {
		Fail(w, err, nil)
		return
	}
	JSON(w, http.StatusCreated, OKResponse(node))
}

// DeleteFolder handles DELETE /api/v1/folders/*.
func (h *DocumentHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	p := wildcardPath(r)
	if !guard(w, r, p) {
		return
	}

	tally, err := h.vault.DeleteFolder(r.Context(), p)
	if err == nil {
		err = tally.Err(p.String())
	}
	if err != nil {
		Fail(w, err, tally)
		return
	}
	JSON(w, http.StatusOK, OKResponse(tally))
}

// Move handles POST /api/v1/move.
func (h *DocumentHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	kind, err := mover.ParseKind(req.Kind)
	if err != nil {
		BadRequest(w, err.Error())
		return
	}

	op := mover.Operation{
		Source: paths.Clean(req.Source),
		Dest:   paths.Clean(req.Dest),
		Kind:   kind,
	}
	if !guard(w, r, op.Source, op.Dest) {
		return
	}

	result, err := h.vault.Move(r.Context(), op)
	if err != nil {
		Fail(w, err, result)
		return
	}
	JSON(w, http.StatusOK, OKResponse(result))
}

// Rename handles POST /api/v1/rename.
func (h *DocumentHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	kind, err := mover.ParseKind(req.Kind)
	if err != nil {
		BadRequest(w, err.Error())
		return
	}

	p := paths.Clean(req.Path)
	if !guard(w, r, p) {
		return
	}

	result, err := h.vault.Rename(r.Context(), p, req.Name, kind)
	if err != nil {
		Fail(w, err, result)
		return
	}
	JSON(w, http.StatusOK, OKResponse(result))
}
