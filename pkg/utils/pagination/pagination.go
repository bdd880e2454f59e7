package pagination

import (
	"context"
	"fmt"
)

const (
	DefaultTake = 20
	MaxTake     = 100
)

// Params selects a page with take/skip offsets
type Params struct {
	Take int
	Skip int
}

type Metadata struct {
	Skip     int
	NextSkip int
	Total    int
	HasMore  bool
}

type OffsetHandler struct {
	DefaultTake int
	MaxTake     int
}

func NewOffsetHandler(defaultTake, maxTake int) *OffsetHandler {
	return &OffsetHandler{
		DefaultTake: defaultTake,
		MaxTake:     maxTake,
	}
}

// NewDefaultOffsetHandler uses the API's default page size limits
func NewDefaultOffsetHandler() *OffsetHandler {
	return NewOffsetHandler(DefaultTake, MaxTake)
}

func (h *OffsetHandler) ValidateParams(params Params) error {
	if params.Take < 0 {
		return fmt.Errorf("take cannot be negative")
	}
	if params.Skip < 0 {
		return fmt.Errorf("skip cannot be negative")
	}
	return nil
}

// BuildRequestParams validates params and applies the default and maximum page size
func (h *OffsetHandler) BuildRequestParams(params Params) (Params, error) {
	if err := h.ValidateParams(params); err != nil {
		return Params{}, err
	}

	take := params.Take
	if take == 0 {
		take = h.DefaultTake
	}
	if h.MaxTake > 0 && take > h.MaxTake {
		take = h.MaxTake
	}

	return Params{Take: take, Skip: params.Skip}, nil
}

// ParseResponseMetadata derives paging state from a returned page
func (h *OffsetHandler) ParseResponseMetadata(params Params, returned, total int) Metadata {
	next := params.Skip + returned

	return Metadata{
		Skip:     params.Skip,
		NextSkip: next,
		Total:    total,
		HasMore:  returned > 0 && next < total,
	}
}

// FetchFunc loads one page and reports the total item count
type FetchFunc[T any] func(ctx context.Context, params Params) ([]T, int, error)

// CollectAll pages through fetch until the total is reached or limit items
// are collected. A limit of zero collects everything.
func CollectAll[T any](ctx context.Context, h *OffsetHandler, fetch FetchFunc[T], limit int) ([]T, error) {
	var (
		all    []T
		params = Params{}
	)

	for {
		request, err := h.BuildRequestParams(params)
		if err != nil {
			return nil, err
		}

		items, total, err := fetch(ctx, request)
		if err != nil {
			return nil, err
		}

		all = append(all, items...)
		if limit > 0 && len(all) >= limit {
			return all[:limit], nil
		}

		metadata := h.ParseResponseMetadata(request, len(items), total)
		if !metadata.HasMore {
			return all, nil
		}

		params.Skip = metadata.NextSkip
	}
}
