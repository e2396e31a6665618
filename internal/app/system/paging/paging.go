// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the default number of rows returned by paged list endpoints.
const PageSize = 50

// MaxPageSize caps the "limit" a client may ask for.
const MaxPageSize = 200

// ParseStart extracts the human-friendly "start" query parameter (1-based index).
// Returns 1 if not present or invalid.
func ParseStart(r *http.Request) int {
	return positive(query.Get(r, "start"), 1)
}

// ParseLimit reads the "limit" query parameter, falling back to PageSize
// and clamping to MaxPageSize.
func ParseLimit(r *http.Request) int {
	n := positive(query.Get(r, "limit"), PageSize)
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

func positive(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// Window is an offset page request derived from start and limit.
type Window struct {
	Start int
	Limit int
}

// FromRequest builds a Window from the start and limit query parameters.
func FromRequest(r *http.Request) Window {
	return Window{Start: ParseStart(r), Limit: ParseLimit(r)}
}

// Offset is the zero-based skip for the store query.
func (w Window) Offset() int64 { return int64(w.Start - 1) }

// LimitPlusOne returns Limit+1 for look-ahead pagination
// (fetch one extra document to detect hasNext).
func (w Window) LimitPlusOne() int64 { return int64(w.Limit + 1) }

// Range holds display values for a fetched page.
type Range struct {
	Start     int  `json:"start"`     // 1-based start index (0 if no results)
	End       int  `json:"end"`       // 1-based end index (0 if no results)
	PrevStart int  `json:"prevStart"` // start value for the previous page
	NextStart int  `json:"nextStart"` // start value for the next page
	HasNext   bool `json:"hasNext"`
}

// Trim cuts a look-ahead fetch of n rows down to the window and reports the
// resulting range. Callers slice their results to Range.End-Range.Start+1.
func (w Window) Trim(n int) Range {
	hasNext := n > w.Limit
	if hasNext {
		n = w.Limit
	}
	r := ComputeRange(w.Start, n, w.Limit)
	r.HasNext = hasNext
	return r
}

// ComputeRange calculates display range values given the current start index,
// the number of items shown and the page size.
func ComputeRange(start, shown, pageSize int) Range {
	if shown == 0 {
		return Range{Start: 0, End: 0, PrevStart: 1, NextStart: start}
	}

	prevStart := start - pageSize
	if prevStart < 1 {
		prevStart = 1
	}

	return Range{
		Start:     start,
		End:       start + shown - 1,
		PrevStart: prevStart,
		NextStart: start + shown,
	}
}
