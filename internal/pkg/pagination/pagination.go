// Package pagination turns page/limit query values into offsets and wraps
// listing results with page metadata.
package pagination

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Page size bounds
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params is a clamped page request
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// GetParams reads ?page= and ?limit=; unparsable values fall back to defaults
func GetParams(c *fiber.Ctx) *Params {
	return NewParams(queryInt(c, "page"), queryInt(c, "limit"))
}

// NewParams clamps page to >= 1 and limit to [1, MaxLimit]; a non-positive
// limit selects DefaultLimit
func NewParams(page, limit int) *Params {
	page = max(page, 1)
	if limit < 1 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)
	return &Params{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// Meta describes where a page sits in the full result set
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// Meta computes page metadata for total matching rows
func (p *Params) Meta(total int64) *Meta {
	limit := int64(p.Limit)
	pages := int((total + limit - 1) / limit)
	return &Meta{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: pages,
		HasNext:    p.Page < pages,
		HasPrev:    p.Page > 1,
	}
}

// Page is one page of a listing
type Page[T any] struct {
	Data []T  `json:"data"`
	Meta *Meta `json:"meta"`
}

// NewPage wraps items with metadata. A nil slice is returned as empty.
func NewPage[T any](items []T, params *Params, total int64) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Data: items, Meta: params.Meta(total)}
}

func queryInt(c *fiber.Ctx, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}
