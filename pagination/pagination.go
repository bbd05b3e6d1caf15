// Package pagination holds the page/limit rules shared by every listing endpoint.
package pagination

import (
	"fmt"
	"math"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

type Params struct {
	Page  int
	Limit int
}

type InvalidParamsError struct {
	Field string
	Value int
}

func (err InvalidParamsError) Error() string {
	return fmt.Sprintf("%s must be a positive integer, got %d", err.Field, err.Value)
}

// Normalize fills in defaults for zero values and clamps the limit to MaxLimit.
func (p Params) Normalize() (Params, error) {
	if p.Page == 0 {
		p.Page = DefaultPage
	}

	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}

	if p.Page < 1 {
		return Params{}, &InvalidParamsError{Field: "page", Value: p.Page}
	}

	if p.Limit < 1 {
		return Params{}, &InvalidParamsError{Field: "limit", Value: p.Limit}
	}

	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}

	return p, nil
}

// Offset saturates at math.MaxInt, so a page too large to address still lands past the last row.
func (p Params) Offset() int {
	if p.Limit > 0 && p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}

	return (p.Page - 1) * p.Limit
}

// TotalPages is ceil(total / limit).
func (p Params) TotalPages(total int) int {
	if total <= 0 || p.Limit <= 0 {
		return 0
	}

	return (total + p.Limit - 1) / p.Limit
}
