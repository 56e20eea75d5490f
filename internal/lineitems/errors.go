package lineitems

import "errors"

// Domain errors for line-item editing.
var (
	// ErrUnknownKind indicates an order type without a descriptor.
	ErrUnknownKind = errors.New("lineitems: unknown order kind")
	// ErrUnknownField indicates a field name the editor does not know.
	ErrUnknownField = errors.New("lineitems: unknown field")
	// ErrFieldNotApplicable indicates a field the order type does not carry.
	ErrFieldNotApplicable = errors.New("lineitems: field not applicable to order type")
	// ErrInvalidNumber indicates a numeric field could not be parsed.
	ErrInvalidNumber = errors.New("lineitems: invalid number")
	// ErrItemNotFound indicates the local row id is not in the collection.
	ErrItemNotFound = errors.New("lineitems: item not found")
	// ErrProductNotFound indicates the picked product is not in the loaded catalog.
	ErrProductNotFound = errors.New("lineitems: product not found in catalog")
	// ErrValidation indicates the draft failed validation and must not be submitted.
	ErrValidation = errors.New("lineitems: validation failed")
	// ErrMalformedRecord indicates a server record that could not be decoded.
	ErrMalformedRecord = errors.New("lineitems: malformed record")
)
