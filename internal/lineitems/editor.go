package lineitems

import (
	"strings"
	"time"
)

// Editor holds the state of one create or edit form: header, rows, per-row
// pickers, the loaded catalog and the errors of the last submit attempt.
// It performs no I/O and is not safe for concurrent use.
type Editor struct {
	desc    Descriptor
	header  Header
	items   *Collection
	pickers map[string]*Picker
	catalog []Entity
	errs    Errors
}

// NewEditor starts an empty draft dated today with the default status.
func NewEditor(d Descriptor, catalog []Entity, ids IDGenerator, today time.Time) *Editor {
	return &Editor{
		desc:    d,
		header:  Header{Status: d.DefaultStatus(), Date: today.Format(DateLayout)},
		items:   NewCollection(d, ids),
		pickers: make(map[string]*Picker),
		catalog: catalog,
		errs:    Errors{},
	}
}

// Load seeds the editor with a record decoded by FromWire. Each row's search
// box shows the stored product name.
func (e *Editor) Load(h Header, items []Item) {
	if strings.TrimSpace(h.Status) == "" {
		h.Status = e.desc.DefaultStatus()
	}
	e.header = h
	e.items.Reset(items)
	e.pickers = make(map[string]*Picker, e.items.Len())
	for _, it := range e.items.Items() {
		e.pickers[it.LocalID] = &Picker{Query: it.ProductName}
	}
	e.errs = Errors{}
}

// Descriptor returns the order type of the draft.
func (e *Editor) Descriptor() Descriptor { return e.desc }

// Header returns the parent form fields.
func (e *Editor) Header() Header { return e.header }

// Items returns a copy of the rows.
func (e *Editor) Items() []Item { return e.items.Items() }

// Total returns the collection total.
func (e *Editor) Total() float64 { return e.items.Total() }

// Catalog returns the loaded catalog entities.
func (e *Editor) Catalog() []Entity { return e.catalog }

// Errors returns a copy of the current error map.
func (e *Editor) Errors() Errors {
	out := make(Errors, len(e.errs))
	for k, v := range e.errs {
		out[k] = v
	}
	return out
}

// Picker returns a copy of the row's dropdown state.
func (e *Editor) Picker(localID string) (Picker, bool) {
	p, ok := e.pickers[localID]
	if !ok {
		return Picker{}, false
	}
	return *p, true
}

// SetHeader edits a parent field and clears its error.
func (e *Editor) SetHeader(field HeaderField, value string) error {
	if err := e.header.Set(field, value); err != nil {
		return err
	}
	delete(e.errs, string(field))
	return nil
}

// AddItem appends an empty row.
func (e *Editor) AddItem() Item {
	it := e.items.Add()
	e.pickers[it.LocalID] = &Picker{}
	delete(e.errs, ItemsKey)
	return it
}

// RemoveItem deletes a row. Row errors are dropped because indices shift.
func (e *Editor) RemoveItem(localID string) bool {
	if !e.items.Remove(localID) {
		return false
	}
	delete(e.pickers, localID)
	for k := range e.errs {
		if strings.HasPrefix(k, ItemsKey+"[") {
			delete(e.errs, k)
		}
	}
	return true
}

// UpdateItem edits a row field from its form value and clears its error.
func (e *Editor) UpdateItem(localID string, field Field, raw string) error {
	i := e.items.Index(localID)
	if err := e.items.Update(localID, field, raw); err != nil {
		return err
	}
	if i >= 0 {
		delete(e.errs, ItemKey(i, field))
	}
	return nil
}

// FocusItem opens the row's dropdown.
func (e *Editor) FocusItem(localID string) (Picker, error) {
	p, ok := e.pickers[localID]
	if !ok {
		return Picker{}, ErrItemNotFound
	}
	p.Focus(e.catalog)
	return *p, nil
}

// SearchItem filters the catalog for the row's search box.
func (e *Editor) SearchItem(localID, query string) (Picker, error) {
	p, ok := e.pickers[localID]
	if !ok {
		return Picker{}, ErrItemNotFound
	}
	p.Type(e.catalog, query)
	return *p, nil
}

// PickItem selects a catalog product for the row and closes its dropdown.
func (e *Editor) PickItem(localID string, productID int64) (Item, error) {
	p, ok := e.pickers[localID]
	if !ok {
		return Item{}, ErrItemNotFound
	}
	ent, ok := FindEntity(e.catalog, productID)
	if !ok {
		return Item{}, ErrProductNotFound
	}
	e.items.Select(localID, ent)
	p.Pick(ent)
	delete(e.errs, ItemKey(e.items.Index(localID), FieldProduct))
	it, _ := e.items.Find(localID)
	return it, nil
}

// BlurItem closes the row's dropdown.
func (e *Editor) BlurItem(localID string) error {
	p, ok := e.pickers[localID]
	if !ok {
		return ErrItemNotFound
	}
	p.Blur()
	return nil
}

// Prepare validates the draft. On failure the error map is kept for display
// and ErrValidation is returned; otherwise the wire payload is built.
func (e *Editor) Prepare() (Payload, error) {
	items := e.items.Items()
	e.errs = Validate(e.desc, e.header, items)
	if !e.errs.Empty() {
		return nil, ErrValidation
	}
	return ToPayload(e.desc, e.header, items)
}
