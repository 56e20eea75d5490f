package lineitems

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

var testCatalog = []Entity{
	{ID: 1, Name: "Widget A", BrandName: "Acme"},
	{ID: 2, Name: "Widget B", BrandName: "Acme"},
	{ID: 3, Name: "Gadget C", BrandName: "Globex"},
}

func newPOEditor() *Editor {
	return NewEditor(PurchaseOrder, testCatalog, &Sequence{}, testToday)
}

func TestNewEditorDefaults(t *testing.T) {
	e := newPOEditor()

	require.Equal(t, "draft", e.Header().Status)
	require.Equal(t, "2024-05-17", e.Header().Date)
	require.Empty(t, e.Items())
	require.Empty(t, e.Errors())
}

func TestPrepareBlocksEmptyDraft(t *testing.T) {
	e := newPOEditor()
	require.NoError(t, e.SetHeader(HeaderDocumentNumber, "PO-1"))
	require.NoError(t, e.SetHeader(HeaderCounterpart, "4"))

	p, err := e.Prepare()
	require.ErrorIs(t, err, ErrValidation)
	require.Nil(t, p)
	require.Contains(t, e.Errors(), ItemsKey)
	require.Equal(t, Notice, e.Errors().Notice())
}

func TestErrorsClearPerFieldOnEdit(t *testing.T) {
	e := newPOEditor()
	row := e.AddItem()
	require.NoError(t, e.UpdateItem(row.LocalID, FieldQuantity, "0"))

	_, err := e.Prepare()
	require.ErrorIs(t, err, ErrValidation)
	errs := e.Errors()
	require.Contains(t, errs, "documentNumber")
	require.Contains(t, errs, "counterpart")
	require.Contains(t, errs, "items[0].quantity")
	require.Contains(t, errs, "items[0].product")

	require.NoError(t, e.SetHeader(HeaderDocumentNumber, "PO-9"))
	require.NoError(t, e.UpdateItem(row.LocalID, FieldQuantity, "2"))

	errs = e.Errors()
	require.NotContains(t, errs, "documentNumber")
	require.NotContains(t, errs, "items[0].quantity")
	require.Contains(t, errs, "counterpart")
	require.Contains(t, errs, "items[0].product")

	_, err = e.PickItem(row.LocalID, 2)
	require.NoError(t, err)
	require.NotContains(t, e.Errors(), "items[0].product")
}

func TestRemovingRowDropsRowErrors(t *testing.T) {
	e := newPOEditor()
	a := e.AddItem()
	e.AddItem()
	_, _ = e.Prepare()
	require.Contains(t, e.Errors(), "items[1].product")

	require.True(t, e.RemoveItem(a.LocalID))
	for k := range e.Errors() {
		require.NotContains(t, k, "items[")
	}
	require.False(t, e.RemoveItem(a.LocalID))
}

func TestPickerFlow(t *testing.T) {
	e := newPOEditor()
	row := e.AddItem()
	require.NoError(t, e.UpdateItem(row.LocalID, FieldUnitPrice, "950"))

	p, err := e.FocusItem(row.LocalID)
	require.NoError(t, err)
	require.True(t, p.Open)
	require.Len(t, p.Results, 3)

	p, err = e.SearchItem(row.LocalID, "widget")
	require.NoError(t, err)
	require.True(t, p.Open)
	require.Equal(t, []string{"Widget A", "Widget B"}, names(p.Results))

	it, err := e.PickItem(row.LocalID, 2)
	require.NoError(t, err)
	require.Equal(t, int64(2), it.ProductID)
	require.Equal(t, 950.0, it.UnitPrice)

	p, ok := e.Picker(row.LocalID)
	require.True(t, ok)
	require.False(t, p.Open)
	require.Equal(t, "Widget B", p.Query)

	_, err = e.SearchItem(row.LocalID, "gad")
	require.NoError(t, err)
	require.NoError(t, e.BlurItem(row.LocalID))
	p, _ = e.Picker(row.LocalID)
	require.False(t, p.Open)
	require.Equal(t, "gad", p.Query)
}

func TestPickersAreIndependent(t *testing.T) {
	e := newPOEditor()
	a, b := e.AddItem(), e.AddItem()

	_, err := e.SearchItem(a.LocalID, "widget")
	require.NoError(t, err)

	pb, _ := e.Picker(b.LocalID)
	require.False(t, pb.Open)
	require.Empty(t, pb.Query)
}

func TestPickerErrors(t *testing.T) {
	e := newPOEditor()
	row := e.AddItem()

	_, err := e.PickItem(row.LocalID, 99)
	require.ErrorIs(t, err, ErrProductNotFound)
	_, err = e.PickItem("missing", 1)
	require.ErrorIs(t, err, ErrItemNotFound)
	_, err = e.SearchItem("missing", "x")
	require.ErrorIs(t, err, ErrItemNotFound)
	require.ErrorIs(t, e.BlurItem("missing"), ErrItemNotFound)
	require.ErrorIs(t, e.SetHeader(HeaderField("bogus"), "x"), ErrUnknownField)
}

func TestPrepareBuildsPayload(t *testing.T) {
	e := newPOEditor()
	require.NoError(t, e.SetHeader(HeaderDocumentNumber, "PO-1"))
	require.NoError(t, e.SetHeader(HeaderCounterpart, "4"))
	row := e.AddItem()
	_, err := e.PickItem(row.LocalID, 1)
	require.NoError(t, err)
	require.NoError(t, e.UpdateItem(row.LocalID, FieldQuantity, "5"))
	require.NoError(t, e.UpdateItem(row.LocalID, FieldUnitPrice, "1000"))
	require.NoError(t, e.UpdateItem(row.LocalID, FieldDiscount, "200"))
	require.Equal(t, 4800.0, e.Total())

	p, err := e.Prepare()
	require.NoError(t, err)
	require.Empty(t, e.Errors())
	require.Equal(t, "PO-1", p["PONumber"])
	require.Len(t, p["Items"], 1)
}

func TestLoadSeedsSearchText(t *testing.T) {
	raw, err := json.Marshal(map[string]any{
		"InvoiceNumber":   "INV-3",
		"InvoiceDate":     "not a date",
		"PurchaseOrderID": 9,
		"DeliveryOrderID": 11,
		"Items": []map[string]any{
			{"ProductID": 3, "ProductName": "Gadget C", "Quantity": 2, "UnitPrice": 7.5, "TotalPrice": 15},
		},
	})
	require.NoError(t, err)
	h, items, err := FromWire(Invoice, raw, nil, testToday)
	require.NoError(t, err)

	e := NewEditor(Invoice, testCatalog, &Sequence{}, testToday)
	e.Load(h, items)

	require.Equal(t, "draft", e.Header().Status)
	require.Equal(t, "2024-05-17", e.Header().Date)
	require.Equal(t, "11", e.Header().SecondaryRef)
	loaded := e.Items()
	require.Len(t, loaded, 1)
	require.Equal(t, 15.0, loaded[0].Total)
	p, ok := e.Picker(loaded[0].LocalID)
	require.True(t, ok)
	require.Equal(t, "Gadget C", p.Query)
	require.False(t, p.Open)
}
