package common

import (
	"math"
	"strconv"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest parses 1-based page and limit query values, falling back to defaults
// when they are missing, malformed or out of range.
func NewPageRequest(pageStr, limitStr string) PageRequest {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if last := maxPage(limit); page > last {
		page = last
	}
	return PageRequest{Page: page, Limit: limit}
}

// maxPage keeps page*limit within int32 so offsets and next_page never wrap.
func maxPage(limit int) int {
	if limit < 1 {
		limit = 1
	}
	return math.MaxInt32 / limit
}

func (p PageRequest) Offset() int {
	page := min(max(p.Page, 1), maxPage(p.Limit))
	return (page - 1) * p.Limit
}

// PageMeta is returned as additional_data on paginated responses.
type PageMeta struct {
	CurrentPage  int   `json:"current_page"`
	LimitPerPage int   `json:"limit_per_page"`
	ItemPerPage  int   `json:"item_per_page"`
	NextPage     *int  `json:"next_page"`
	PreviousPage *int  `json:"previous_page"`
	TotalItems   int64 `json:"total_items"`
}

// NewPageMeta builds the metadata block. total comes from a separate count query,
// so it can disagree with returned under concurrent writes.
func NewPageMeta(p PageRequest, returned int, total int64) PageMeta {
	meta := PageMeta{
		CurrentPage:  p.Page,
		LimitPerPage: p.Limit,
		ItemPerPage:  returned,
		TotalItems:   total,
	}
	if int64(p.Page)*int64(p.Limit) < total && p.Page < maxPage(p.Limit) {
		next := p.Page + 1
		meta.NextPage = &next
	}
	if p.Page > 1 {
		prev := p.Page - 1
		meta.PreviousPage = &prev
	}
	return meta
}
