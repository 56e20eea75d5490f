package lineitems

import "fmt"

// Kind identifies an order type handled by the editor.
type Kind string

const (
	KindPurchaseOrder Kind = "purchase_order"
	KindDeliveryOrder Kind = "delivery_order"
	KindInvoice       Kind = "invoice"
)

// Pricing selects how a row's derived total is computed.
type Pricing int

const (
	// PricingNone rows track quantity only; the total is carried through.
	PricingNone Pricing = iota
	// PricingExtended rows total quantity * unit price.
	PricingExtended
	// PricingDiscounted rows total quantity * unit price - discount.
	PricingDiscounted
)

// PriceRule constrains the unit price of priced rows.
type PriceRule string

const (
	PricePositive    PriceRule = "gt=0"
	PriceNonNegative PriceRule = "gte=0"
)

// HeaderKeys holds the wire names of the parent record fields.
type HeaderKeys struct {
	DocumentNumber string
	Status         string
	Date           string
	Description    string
	Counterpart    string
	SecondaryRef   string
	Items          string
}

// ItemKeys holds the wire names of line item fields. Empty keys are not sent.
type ItemKeys struct {
	ProductID   string
	ProductName string
	Quantity    string
	UnitPrice   string
	Discount    string
	TotalPrice  string
	Note        string
}

// Descriptor parameterises the generic editor for one order type.
type Descriptor struct {
	Kind      Kind
	Title     string
	Resource  string
	Pricing   Pricing
	PriceRule PriceRule
	Statuses  []string
	Header    HeaderKeys
	Item      ItemKeys

	// Labels used in validation messages.
	CounterpartLabel  string
	SecondaryRefLabel string
}

// Priced reports whether rows carry a unit price.
func (d Descriptor) Priced() bool {
	return d.Pricing != PricingNone
}

// Discounted reports whether rows carry a discount.
func (d Descriptor) Discounted() bool {
	return d.Pricing == PricingDiscounted
}

// HasSecondaryRef reports whether the parent record has an optional second reference.
func (d Descriptor) HasSecondaryRef() bool {
	return d.Header.SecondaryRef != ""
}

// DefaultStatus is the status assigned to new drafts.
func (d Descriptor) DefaultStatus() string {
	if len(d.Statuses) == 0 {
		return ""
	}
	return d.Statuses[0]
}

// Applies reports whether the field is editable for this order type.
func (d Descriptor) Applies(f Field) bool {
	switch f {
	case FieldQuantity, FieldNote:
		return true
	case FieldUnitPrice:
		return d.Priced()
	case FieldDiscount:
		return d.Discounted()
	default:
		return false
	}
}

// PurchaseOrder uses PascalCase on the wire.
var PurchaseOrder = Descriptor{
	Kind:      KindPurchaseOrder,
	Title:     "Purchase Order",
	Resource:  "purchase-orders",
	Pricing:   PricingDiscounted,
	PriceRule: PricePositive,
	Statuses:  []string{"draft", "submitted", "approved", "received", "closed"},
	Header: HeaderKeys{
		DocumentNumber: "PONumber",
		Status:         "Status",
		Date:           "OrderDate",
		Description:    "Description",
		Counterpart:    "ResellerID",
		Items:          "Items",
	},
	Item: ItemKeys{
		ProductID:   "ProductID",
		ProductName: "ProductName",
		Quantity:    "Quantity",
		UnitPrice:   "UnitPrice",
		Discount:    "Discount",
		Note:        "Note",
	},
	CounterpartLabel: "Reseller",
}

// DeliveryOrder uses camelCase on the wire and tracks delivered quantity only.
var DeliveryOrder = Descriptor{
	Kind:     KindDeliveryOrder,
	Title:    "Delivery Order",
	Resource: "delivery-orders",
	Pricing:  PricingNone,
	Statuses: []string{"draft", "shipped", "delivered", "cancelled"},
	Header: HeaderKeys{
		DocumentNumber: "doNumber",
		Status:         "status",
		Date:           "deliveryDate",
		Description:    "description",
		Counterpart:    "purchaseOrderId",
		Items:          "items",
	},
	Item: ItemKeys{
		ProductID:   "productId",
		ProductName: "productName",
		Quantity:    "quantityDelivered",
		Note:        "note",
	},
	CounterpartLabel: "Purchase order",
}

// Invoice uses PascalCase on the wire and sends the extended total per row.
var Invoice = Descriptor{
	Kind:      KindInvoice,
	Title:     "Invoice",
	Resource:  "invoices",
	Pricing:   PricingExtended,
	PriceRule: PricePositive,
	Statuses:  []string{"draft", "unpaid", "paid", "cancelled"},
	Header: HeaderKeys{
		DocumentNumber: "InvoiceNumber",
		Status:         "Status",
		Date:           "InvoiceDate",
		Description:    "Description",
		Counterpart:    "PurchaseOrderID",
		SecondaryRef:   "DeliveryOrderID",
		Items:          "Items",
	},
	Item: ItemKeys{
		ProductID:   "ProductID",
		ProductName: "ProductName",
		Quantity:    "Quantity",
		UnitPrice:   "UnitPrice",
		TotalPrice:  "TotalPrice",
		Note:        "Note",
	},
	CounterpartLabel:  "Purchase order",
	SecondaryRefLabel: "Delivery order",
}

var descriptors = map[Kind]Descriptor{
	KindPurchaseOrder: PurchaseOrder,
	KindDeliveryOrder: DeliveryOrder,
	KindInvoice:       Invoice,
}

// Lookup resolves the descriptor for kind.
func Lookup(kind Kind) (Descriptor, error) {
	d, ok := descriptors[kind]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return d, nil
}

// Kinds lists the supported order kinds in display order.
func Kinds() []Kind {
	return []Kind{KindPurchaseOrder, KindDeliveryOrder, KindInvoice}
}
