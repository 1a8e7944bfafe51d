package httpx

// Page bounds used by list endpoints.
type Page struct {
	Skip  int
	Limit int
}

// ClampPage normalizes skip/limit query values. A non-positive limit falls back to def,
// limits above max are clamped rather than rejected.
func ClampPage(skip, limit, def, max int) Page {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	return Page{Skip: skip, Limit: limit}
}
