package ecoruta

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/ecoruta/portal/internal/core/domain"
)

// Resource is the CRUD surface of one backend collection.
type Resource[T any] struct {
	api  API
	path string
}

func NewResource[T any](api API, path string) *Resource[T] {
	return &Resource[T]{api: api, path: path}
}

// Path returns the collection path.
func (r *Resource[T]) Path() string { return r.path }

func (r *Resource[T]) List(ctx context.Context, query url.Values) (domain.Page[T], error) {
	var page domain.Page[T]
	var raw json.RawMessage
	if err := r.api.Do(ctx, http.MethodGet, r.path, query, nil, &raw); err != nil {
		return page, err
	}
	if err := decodeBody(raw, &page); err != nil {
		return page, err
	}
	return page, nil
}

func (r *Resource[T]) Get(ctx context.Context, id int64) (*T, error) {
	return r.one(ctx, http.MethodGet, itemPath(r.path, id), nil)
}

func (r *Resource[T]) Create(ctx context.Context, body any) (*T, error) {
	return r.one(ctx, http.MethodPost, r.path, body)
}

// Update replaces the item (PUT).
func (r *Resource[T]) Update(ctx context.Context, id int64, body any) (*T, error) {
	return r.one(ctx, http.MethodPut, itemPath(r.path, id), body)
}

// Patch updates the fields present in body.
func (r *Resource[T]) Patch(ctx context.Context, id int64, body any) (*T, error) {
	return r.one(ctx, http.MethodPatch, itemPath(r.path, id), body)
}

func (r *Resource[T]) Delete(ctx context.Context, id int64) error {
	return r.api.Do(ctx, http.MethodDelete, itemPath(r.path, id), nil, nil, nil)
}

func (r *Resource[T]) one(ctx context.Context, method, path string, body any) (*T, error) {
	var raw json.RawMessage
	if err := r.api.Do(ctx, method, path, nil, body, &raw); err != nil {
		return nil, err
	}
	out := new(T)
	if err := decodeBody(raw, out); err != nil {
		return nil, err
	}
	return out, nil
}
