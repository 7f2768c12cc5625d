package domain

// WatchCommand opens (or replaces) a list session for a dashboard resource.
type WatchCommand struct {
	Resource string            `json:"resource"`
	Page     int               `json:"page"`
	PerPage  int               `json:"per_page"`
	Search   string            `json:"search"`
	Filters  map[string]string `json:"filters"`
}

// FilterCommand merges a partial filter set into an open list session.
type FilterCommand struct {
	Resource string            `json:"resource"`
	Filters  map[string]string `json:"filters"`
}

// SearchCommand replaces the search term of an open list session.
type SearchCommand struct {
	Resource string `json:"resource"`
	Search   string `json:"search"`
}

// PageCommand moves an open list session to another page.
type PageCommand struct {
	Resource string `json:"resource"`
	Page     int    `json:"page"`
}
