package lineitems

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireTotalsConsistent(t *testing.T, c *Collection) {
	t.Helper()
	var sum float64
	for _, it := range c.Items() {
		sum += it.Total
	}
	require.InDelta(t, sum, c.Total(), 1e-9)
}

func TestDiscountedLineTotal(t *testing.T) {
	c := NewCollection(PurchaseOrder, nil)
	it := c.Add()

	require.NoError(t, c.Update(it.LocalID, FieldQuantity, "5"))
	require.NoError(t, c.Update(it.LocalID, FieldUnitPrice, "1000"))
	require.NoError(t, c.Update(it.LocalID, FieldDiscount, "200"))

	got, ok := c.Find(it.LocalID)
	require.True(t, ok)
	require.Equal(t, 4800.0, got.Total)
	require.Equal(t, 4800.0, c.Total())
}

func TestLineTotalAvoidsFloatDrift(t *testing.T) {
	c := NewCollection(Invoice, nil)
	it := c.Add()
	require.NoError(t, c.Update(it.LocalID, FieldQuantity, "3"))
	require.NoError(t, c.Update(it.LocalID, FieldUnitPrice, "0.1"))

	got, _ := c.Find(it.LocalID)
	require.Equal(t, 0.3, got.Total)
}

func TestAddDefaults(t *testing.T) {
	c := NewCollection(PurchaseOrder, nil)
	it := c.Add()

	assert.NotEmpty(t, it.LocalID)
	assert.Zero(t, it.ProductID)
	assert.Equal(t, 1.0, it.Quantity)
	assert.Zero(t, it.UnitPrice)
	assert.Zero(t, it.Discount)
	assert.Empty(t, it.Note)
	assert.Equal(t, 1, c.Len())
}

func TestRemoveMiddleKeepsOrder(t *testing.T) {
	c := NewCollection(PurchaseOrder, nil)
	a, b, d := c.Add(), c.Add(), c.Add()
	require.NoError(t, c.Update(a.LocalID, FieldUnitPrice, "10"))
	require.NoError(t, c.Update(b.LocalID, FieldUnitPrice, "20"))
	require.NoError(t, c.Update(d.LocalID, FieldUnitPrice, "30"))
	require.Equal(t, 60.0, c.Total())

	require.True(t, c.Remove(b.LocalID))

	items := c.Items()
	require.Len(t, items, 2)
	require.Equal(t, a.LocalID, items[0].LocalID)
	require.Equal(t, d.LocalID, items[1].LocalID)
	require.Equal(t, 40.0, c.Total())
}

func TestRemoveUnknownIsNoop(t *testing.T) {
	c := NewCollection(DeliveryOrder, nil)
	c.Add()

	require.False(t, c.Remove("missing"))
	require.Equal(t, 1, c.Len())
}

func TestUpdateUnknownRowIsNoop(t *testing.T) {
	c := NewCollection(PurchaseOrder, nil)
	c.Add()

	require.NoError(t, c.Update("missing", FieldQuantity, "4"))
	require.Equal(t, 1.0, c.Items()[0].Quantity)
}

func TestUpdateRejectsFieldsOutsideOrderType(t *testing.T) {
	do := NewCollection(DeliveryOrder, nil)
	it := do.Add()
	require.ErrorIs(t, do.Update(it.LocalID, FieldUnitPrice, "5"), ErrFieldNotApplicable)
	require.ErrorIs(t, do.Update(it.LocalID, FieldDiscount, "5"), ErrFieldNotApplicable)

	inv := NewCollection(Invoice, nil)
	row := inv.Add()
	require.ErrorIs(t, inv.Update(row.LocalID, FieldDiscount, "5"), ErrFieldNotApplicable)
	require.ErrorIs(t, inv.Update(row.LocalID, Field("colour"), "red"), ErrUnknownField)
}

func TestUpdateParsesNumbers(t *testing.T) {
	c := NewCollection(PurchaseOrder, nil)
	it := c.Add()

	require.ErrorIs(t, c.Update(it.LocalID, FieldQuantity, "abc"), ErrInvalidNumber)
	require.ErrorIs(t, c.Update(it.LocalID, FieldQuantity, "NaN"), ErrInvalidNumber)
	require.NoError(t, c.Update(it.LocalID, FieldQuantity, ""))

	got, _ := c.Find(it.LocalID)
	require.Zero(t, got.Quantity)
	require.Zero(t, got.Total)
}

func TestUpdateRejectsOverflowingTotal(t *testing.T) {
	c := NewCollection(PurchaseOrder, nil)
	it := c.Add()
	require.NoError(t, c.Update(it.LocalID, FieldQuantity, "1e200"))

	require.ErrorIs(t, c.Update(it.LocalID, FieldUnitPrice, "1e200"), ErrInvalidNumber)

	got, _ := c.Find(it.LocalID)
	require.Equal(t, 1e200, got.Quantity)
	require.Zero(t, got.UnitPrice)
	require.Zero(t, got.Total)

	rows, err := json.Marshal(c.Items())
	require.NoError(t, err)
	require.NotEmpty(t, rows)
}

func TestUpdateRejectsOverflowingCollectionTotal(t *testing.T) {
	c := NewCollection(Invoice, nil)
	first := c.Add()
	require.NoError(t, c.Update(first.LocalID, FieldUnitPrice, "1.5e308"))
	second := c.Add()

	require.ErrorIs(t, c.Update(second.LocalID, FieldUnitPrice, "1.5e308"), ErrInvalidNumber)
	require.False(t, math.IsInf(c.Total(), 0))
}

func TestUpdateNote(t *testing.T) {
	c := NewCollection(DeliveryOrder, nil)
	it := c.Add()
	require.NoError(t, c.Update(it.LocalID, FieldNote, "fragile"))

	got, _ := c.Find(it.LocalID)
	require.Equal(t, "fragile", got.Note)
}

func TestSelectPreservesEnteredPrice(t *testing.T) {
	c := NewCollection(PurchaseOrder, nil)
	it := c.Add()
	require.NoError(t, c.Update(it.LocalID, FieldUnitPrice, "1250"))

	require.True(t, c.Select(it.LocalID, Entity{ID: 7, Name: "Widget A"}))
	require.True(t, c.Select(it.LocalID, Entity{ID: 8, Name: "Widget B"}))

	got, _ := c.Find(it.LocalID)
	require.Equal(t, int64(8), got.ProductID)
	require.Equal(t, "Widget B", got.ProductName)
	require.Equal(t, 1250.0, got.UnitPrice)
	require.Equal(t, 1250.0, got.Total)
}

func TestTotalsStayConsistentAcrossMutations(t *testing.T) {
	c := NewCollection(PurchaseOrder, nil)
	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, c.Add().LocalID)
		requireTotalsConsistent(t, c)
	}
	steps := []struct {
		id    string
		field Field
		value string
	}{
		{ids[0], FieldQuantity, "2"},
		{ids[0], FieldUnitPrice, "19.99"},
		{ids[1], FieldUnitPrice, "5"},
		{ids[1], FieldDiscount, "1.5"},
		{ids[3], FieldQuantity, "7"},
		{ids[3], FieldUnitPrice, "0.3"},
		{ids[4], FieldDiscount, "3"},
	}
	for _, s := range steps {
		require.NoError(t, c.Update(s.id, s.field, s.value))
		requireTotalsConsistent(t, c)
	}
	for _, it := range c.Items() {
		require.InDelta(t, it.Quantity*it.UnitPrice-it.Discount, it.Total, 1e-9)
	}
	c.Remove(ids[2])
	requireTotalsConsistent(t, c)
	c.Remove(ids[0])
	requireTotalsConsistent(t, c)
}

func TestDeliveryRowsCarryNoTotal(t *testing.T) {
	c := NewCollection(DeliveryOrder, nil)
	it := c.Add()
	require.NoError(t, c.Update(it.LocalID, FieldQuantity, "12"))

	require.Zero(t, c.Total())
}

func TestSequenceIDsAreUnique(t *testing.T) {
	seq := &Sequence{}
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := seq.NextID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestUUIDGenerator(t *testing.T) {
	c := NewCollection(PurchaseOrder, UUIDs{})
	a, b := c.Add(), c.Add()

	require.Len(t, a.LocalID, 36)
	require.NotEqual(t, a.LocalID, b.LocalID)
}
