package domain

import (
	"encoding/json"
	"errors"
	"fmt"

	"guardpost/internal/shared/rest"
)

// ErrMalformedPage marks paginator payloads that contradict themselves, e.g.
// more rows than the page size or a current page past the last one.
var ErrMalformedPage = errors.New("malformed paginator payload")

// PageLink is one entry of the paginator link strip.
type PageLink struct {
	URL    *string `json:"url"`
	Label  string  `json:"label"`
	Active bool    `json:"active"`
}

// Collection is one decoded paginator page. Rows stay raw; the gateway relays
// them without interpreting resource-specific columns.
type Collection struct {
	CurrentPage rest.FlexInt      `json:"current_page"`
	Rows        []json.RawMessage `json:"data"`
	LastPage    rest.FlexInt      `json:"last_page"`
	PerPage     rest.FlexInt      `json:"per_page"`
	Total       rest.FlexInt      `json:"total"`
	From        rest.FlexInt      `json:"from"`
	To          rest.FlexInt      `json:"to"`
	Links       []PageLink        `json:"links"`
}

// DecodeCollection parses a paginator object and rejects payloads that break
// the paginator contract.
func DecodeCollection(raw json.RawMessage) (*Collection, error) {
	var collection Collection
	if err := json.Unmarshal(raw, &collection); err != nil {
		return nil, fmt.Errorf("decode paginator: %w", err)
	}
	if err := collection.validate(); err != nil {
		return nil, err
	}
	return &collection, nil
}

func (c *Collection) validate() error {
	if perPage := c.PerPage.Int(); perPage > 0 && len(c.Rows) > perPage {
		return fmt.Errorf("%w: %d rows on a page of %d", ErrMalformedPage, len(c.Rows), perPage)
	}
	if last := c.LastPage.Int(); last > 0 && c.CurrentPage.Int() > last {
		return fmt.Errorf("%w: page %d past last page %d", ErrMalformedPage, c.CurrentPage.Int(), last)
	}
	return nil
}

// Empty reports whether the page carries no rows at all.
func (c *Collection) Empty() bool {
	return c == nil || len(c.Rows) == 0
}

// ShowingRange yields the "Showing X to Y of N" bounds for the page. The
// paginator's own from/to win when present; otherwise the bounds are derived
// from page, page size, and total.
func (c *Collection) ShowingRange() (from, to, total int) {
	if c == nil {
		return 0, 0, 0
	}
	total = c.Total.Int()
	if total <= 0 {
		return 0, 0, 0
	}
	from = c.From.Int()
	to = c.To.Int()
	if from > 0 && to > 0 {
		return from, to, total
	}
	page := c.CurrentPage.Int()
	if page <= 0 {
		page = 1
	}
	perPage := c.PerPage.Int()
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	from = (page-1)*perPage + 1
	to = page * perPage
	if to > total {
		to = total
	}
	if from > total {
		return 0, 0, total
	}
	return from, to, total
}
