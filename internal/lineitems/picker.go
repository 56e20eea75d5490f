package lineitems

// Picker is the search-select dropdown state of one row. Each row owns its
// own instance; closing is explicit rather than driven by a shared listener.
type Picker struct {
	Query   string   `json:"query"`
	Open    bool     `json:"open"`
	Results []Entity `json:"results,omitempty"`
}

// Focus opens the dropdown with results for the current query.
func (p *Picker) Focus(catalog []Entity) {
	p.Open = true
	p.Results = Search(catalog, p.Query)
}

// Type replaces the query and re-filters.
func (p *Picker) Type(catalog []Entity, query string) {
	p.Query = query
	p.Open = true
	p.Results = Search(catalog, query)
}

// Pick shows the chosen entity in the box and closes the dropdown.
func (p *Picker) Pick(e Entity) {
	p.Query = e.Name
	p.Blur()
}

// Blur closes the dropdown and keeps the typed text.
func (p *Picker) Blur() {
	p.Open = false
	p.Results = nil
}
