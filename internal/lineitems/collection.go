package lineitems

import "fmt"

// Collection is the ordered, mutable set of rows of one draft.
type Collection struct {
	desc  Descriptor
	ids   IDGenerator
	items []Item
}

// NewCollection builds an empty collection. A nil generator defaults to a Sequence.
func NewCollection(d Descriptor, ids IDGenerator) *Collection {
	if ids == nil {
		ids = &Sequence{}
	}
	return &Collection{desc: d, ids: ids}
}

// Add appends an empty row with quantity 1 and returns it.
func (c *Collection) Add() Item {
	it := Item{LocalID: c.ids.NextID(), Quantity: 1}
	it.recompute(c.desc.Pricing)
	c.items = append(c.items, it)
	return it
}

// Remove deletes the row; it reports whether a row was removed.
func (c *Collection) Remove(localID string) bool {
	i := c.Index(localID)
	if i < 0 {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return true
}

// Update sets one field from its form value. Unknown rows are ignored.
func (c *Collection) Update(localID string, field Field, raw string) error {
	if !c.desc.Applies(field) {
		if field == FieldUnitPrice || field == FieldDiscount {
			return ErrFieldNotApplicable
		}
		return ErrUnknownField
	}
	i := c.Index(localID)
	if i < 0 {
		return nil
	}
	it := &c.items[i]
	if field == FieldNote {
		it.Note = raw
		return nil
	}
	v, err := parseAmount(raw)
	if err != nil {
		return err
	}
	prev := *it
	switch field {
	case FieldQuantity:
		it.Quantity = v
	case FieldUnitPrice:
		it.UnitPrice = v
	case FieldDiscount:
		it.Discount = v
	}
	it.recompute(c.desc.Pricing)
	if !finite(it.Total) || !finite(c.Total()) {
		*it = prev
		return fmt.Errorf("%w: %q overflows the line total", ErrInvalidNumber, raw)
	}
	return nil
}

// Select points the row at a catalog entity. The entered unit price is kept.
func (c *Collection) Select(localID string, e Entity) bool {
	i := c.Index(localID)
	if i < 0 {
		return false
	}
	c.items[i].ProductID = e.ID
	c.items[i].ProductName = e.Name
	return true
}

// Total is the sum of all row totals.
func (c *Collection) Total() float64 {
	return sumTotals(c.items)
}

// Items returns a copy of the rows in display order.
func (c *Collection) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of rows.
func (c *Collection) Len() int {
	return len(c.items)
}

// Index returns the position of the row, or -1.
func (c *Collection) Index(localID string) int {
	for i := range c.items {
		if c.items[i].LocalID == localID {
			return i
		}
	}
	return -1
}

// Find returns the row with localID.
func (c *Collection) Find(localID string) (Item, bool) {
	i := c.Index(localID)
	if i < 0 {
		return Item{}, false
	}
	return c.items[i], true
}

// Reset replaces the rows, assigning fresh local ids and re-deriving totals.
func (c *Collection) Reset(items []Item) {
	c.items = make([]Item, 0, len(items))
	for _, it := range items {
		it.LocalID = c.ids.NextID()
		if !c.desc.Priced() {
			it.UnitPrice = 0
		}
		if !c.desc.Discounted() {
			it.Discount = 0
		}
		it.recompute(c.desc.Pricing)
		c.items = append(c.items, it)
	}
}
