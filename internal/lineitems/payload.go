package lineitems

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Payload is the nested create/update body sent to the remote API.
type Payload map[string]any

// ToPayload serializes the header and rows with the descriptor's wire keys.
// Client-only fields are dropped.
func ToPayload(d Descriptor, h Header, items []Item) (Payload, error) {
	counterpart, err := parseRef(h.Counterpart)
	if err != nil {
		return nil, fmt.Errorf("counterpart: %w", err)
	}
	p := Payload{
		d.Header.DocumentNumber: strings.TrimSpace(h.DocumentNumber),
		d.Header.Date:           strings.TrimSpace(h.Date),
		d.Header.Description:    strings.TrimSpace(h.Description),
		d.Header.Counterpart:    counterpart,
	}
	status := strings.TrimSpace(h.Status)
	if status == "" {
		status = d.DefaultStatus()
	}
	p[d.Header.Status] = status
	if d.HasSecondaryRef() && strings.TrimSpace(h.SecondaryRef) != "" {
		ref, err := parseRef(h.SecondaryRef)
		if err != nil {
			return nil, fmt.Errorf("secondary reference: %w", err)
		}
		p[d.Header.SecondaryRef] = ref
	}

	rows := make([]map[string]any, 0, len(items))
	for _, it := range items {
		row := map[string]any{
			d.Item.ProductID: it.ProductID,
			d.Item.Quantity:  it.Quantity,
			d.Item.Note:      it.Note,
		}
		if d.Priced() {
			row[d.Item.UnitPrice] = it.UnitPrice
		}
		if d.Discounted() {
			row[d.Item.Discount] = it.Discount
		}
		if d.Item.TotalPrice != "" {
			row[d.Item.TotalPrice] = it.Total
		}
		rows = append(rows, row)
	}
	p[d.Header.Items] = rows
	return p, nil
}

// FromWire decodes an existing server record for editing. Keys are matched
// without regard to case; rows get fresh local ids and re-derived totals.
func FromWire(d Descriptor, raw []byte, ids IDGenerator, today time.Time) (Header, []Item, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var rec map[string]any
	if err := dec.Decode(&rec); err != nil {
		return Header{}, nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if rec == nil {
		return Header{}, nil, fmt.Errorf("%w: empty record", ErrMalformedRecord)
	}
	if ids == nil {
		ids = &Sequence{}
	}

	h := Header{
		DocumentNumber: stringField(rec, d.Header.DocumentNumber),
		Status:         stringField(rec, d.Header.Status),
		Date:           NormalizeDate(stringField(rec, d.Header.Date), today),
		Description:    stringField(rec, d.Header.Description),
		Counterpart:    refField(rec, d.Header.Counterpart),
	}
	if d.HasSecondaryRef() {
		h.SecondaryRef = refField(rec, d.Header.SecondaryRef)
	}

	rawItems, _ := lookup(rec, d.Header.Items).([]any)
	items := make([]Item, 0, len(rawItems))
	for i, entry := range rawItems {
		row, ok := entry.(map[string]any)
		if !ok {
			return Header{}, nil, fmt.Errorf("%w: item %d is not an object", ErrMalformedRecord, i)
		}
		it := Item{
			LocalID:     ids.NextID(),
			ProductID:   int64(numberField(row, d.Item.ProductID)),
			ProductName: stringField(row, d.Item.ProductName),
			Quantity:    numberField(row, d.Item.Quantity),
			Note:        stringField(row, d.Item.Note),
		}
		if d.Priced() {
			it.UnitPrice = numberField(row, d.Item.UnitPrice)
		}
		if d.Discounted() {
			it.Discount = numberField(row, d.Item.Discount)
		}
		it.recompute(d.Pricing)
		if !finite(it.Total) {
			return Header{}, nil, fmt.Errorf("%w: item %d total overflows", ErrMalformedRecord, i)
		}
		items = append(items, it)
	}
	if !finite(sumTotals(items)) {
		return Header{}, nil, fmt.Errorf("%w: order total overflows", ErrMalformedRecord)
	}
	return h, items, nil
}

func parseRef(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
	}
	return id, nil
}

func lookup(m map[string]any, key string) any {
	if key == "" {
		return nil
	}
	if v, ok := m[key]; ok {
		return v
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return nil
}

func stringField(m map[string]any, key string) string {
	switch v := lookup(m, key).(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func numberField(m map[string]any, key string) float64 {
	switch v := lookup(m, key).(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil || !finite(f) {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || !finite(f) {
			return 0
		}
		return f
	default:
		return 0
	}
}

// refField renders a numeric reference the way the form holds it; zero is blank.
func refField(m map[string]any, key string) string {
	id := int64(numberField(m, key))
	if id <= 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
