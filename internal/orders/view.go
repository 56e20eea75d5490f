package orders

import "github.com/odyssey-erp/odyssey-wms/internal/lineitems"

// View is the JSON shape of a draft returned to the form.
type View struct {
	ID                string           `json:"id"`
	Kind              lineitems.Kind   `json:"kind"`
	Title             string           `json:"title"`
	Mode              string           `json:"mode"`
	RecordID          int64            `json:"recordId,omitempty"`
	Statuses          []string         `json:"statuses"`
	Priced            bool             `json:"priced"`
	Discounted        bool             `json:"discounted"`
	CounterpartLabel  string           `json:"counterpartLabel"`
	SecondaryRefLabel string           `json:"secondaryRefLabel,omitempty"`
	Header            lineitems.Header `json:"header"`
	Items             []ItemView       `json:"items"`
	Total             float64          `json:"total"`
	Errors            lineitems.Errors `json:"errors,omitempty"`
	Notice            string           `json:"notice,omitempty"`
}

// ItemView is a row together with its dropdown state.
type ItemView struct {
	lineitems.Item
	Picker lineitems.Picker `json:"picker"`
}

const (
	modeCreate = "create"
	modeEdit   = "edit"
)

// buildView snapshots the draft. The caller holds d.mu.
func buildView(d *Draft) View {
	ed := d.editor
	desc := ed.Descriptor()
	mode := modeCreate
	if d.Editing() {
		mode = modeEdit
	}
	items := ed.Items()
	rows := make([]ItemView, 0, len(items))
	for _, it := range items {
		p, _ := ed.Picker(it.LocalID)
		rows = append(rows, ItemView{Item: it, Picker: p})
	}
	errs := ed.Errors()
	return View{
		ID:                d.ID,
		Kind:              d.Kind,
		Title:             desc.Title,
		Mode:              mode,
		RecordID:          d.RecordID,
		Statuses:          append([]string(nil), desc.Statuses...),
		Priced:            desc.Priced(),
		Discounted:        desc.Discounted(),
		CounterpartLabel:  desc.CounterpartLabel,
		SecondaryRefLabel: desc.SecondaryRefLabel,
		Header:            ed.Header(),
		Items:             rows,
		Total:             ed.Total(),
		Errors:            errs,
		Notice:            errs.Notice(),
	}
}
