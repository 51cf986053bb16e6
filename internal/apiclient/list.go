package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	pkgerrors "github.com/angelmondragon/shopdash/pkg/errors"
	"github.com/angelmondragon/shopdash/pkg/pagination"
	"github.com/angelmondragon/shopdash/pkg/types"
)

// Page is one page of a listing.
type Page[T any] struct {
	Items      []T
	TotalPages int
}

// DecodeList accepts either {<key>: [...], totalPages: n} or a bare array.
// The page count is never below 1.
func DecodeList[T any](body []byte, key string) (Page[T], error) {
	trimmed := bytes.TrimSpace(body)
	page := Page[T]{Items: []T{}, TotalPages: 1}
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return page, nil
	}

	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &page.Items); err != nil {
			return page, fmt.Errorf("decode %s list: %w", key, err)
		}
		if page.Items == nil {
			page.Items = []T{}
		}
		return page, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return page, fmt.Errorf("decode %s envelope: %w", key, err)
	}
	if raw, ok := envelope[key]; ok {
		if err := json.Unmarshal(raw, &page.Items); err != nil {
			return page, fmt.Errorf("decode %s items: %w", key, err)
		}
	}
	if page.Items == nil {
		page.Items = []T{}
	}

	var total types.Count
	for _, name := range []string{"totalPages", "total_pages"} {
		raw, ok := envelope[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &total); err != nil {
			return page, fmt.Errorf("decode %s: %w", name, err)
		}
		break
	}
	page.TotalPages = pagination.NormalizeTotal(int(total))
	return page, nil
}

// RawDoer performs a request and hands back the undecoded body. *Client implements it.
type RawDoer interface {
	DoRaw(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error)
}

// GetList fetches path and decodes it as a listing under key.
func GetList[T any](ctx context.Context, c RawDoer, path string, query url.Values, key string) (Page[T], error) {
	raw, err := c.DoRaw(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return Page[T]{}, err
	}
	page, err := DecodeList[T](raw, key)
	if err != nil {
		return Page[T]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode listing")
	}
	return page, nil
}
