package model

// Match is a listing that survived filtering, with its distance from the
// search center in meters.
type Match struct {
	Listing   Listing `json:"listing"`
	DistanceM float64 `json:"distance_m"`
}

// Page is a fixed-size slice of the ranked match sequence.
type Page struct {
	Index      int     `json:"page"`
	Size       int     `json:"page_size"`
	Total      int     `json:"total"`
	TotalPages int     `json:"total_pages"`
	Items      []Match `json:"items"`
}

// HasPrev reports whether an earlier page exists.
func (p Page) HasPrev() bool {
	return p.Index > 0 && p.TotalPages > 0
}

// HasNext reports whether a later page exists.
func (p Page) HasNext() bool {
	return p.Index >= 0 && p.Index+1 < p.TotalPages
}

// Empty reports whether the page holds no items.
func (p Page) Empty() bool {
	return len(p.Items) == 0
}
