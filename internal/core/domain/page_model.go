package domain

// DefaultPageSize is the page size used by interfaces when a request does
// not specify one.
const DefaultPageSize = 10

// Page is a window over an ordered result set.
type Page struct {
	Offset uint64
	Limit  uint64
}

// NewPage returns a page with the given offset and limit. A zero limit
// selects an empty window.
func NewPage(offset, limit uint64) Page {
	return Page{
		Offset: offset,
		Limit:  limit,
	}
}

// Bounds returns the indexes [start, end) of the page over a result set of
// the given length. start equals end if the page is beyond the end.
func (p Page) Bounds(total uint64) (start, end uint64) {
	if p.Offset >= total {
		return total, total
	}
	start = p.Offset
	end = total
	if p.Limit < total-start {
		end = start + p.Limit
	}
	return
}
