package lineitems

import "strings"

// HeaderField names an editable parent form field.
type HeaderField string

const (
	HeaderDocumentNumber HeaderField = "documentNumber"
	HeaderStatus         HeaderField = "status"
	HeaderDate           HeaderField = "date"
	HeaderDescription    HeaderField = "description"
	HeaderCounterpart    HeaderField = "counterpart"
	HeaderSecondaryRef   HeaderField = "secondaryRef"
)

// Header holds the parent form fields as entered. Dates use YYYY-MM-DD and
// references are decimal strings until serialized.
type Header struct {
	DocumentNumber string `json:"documentNumber"`
	Status         string `json:"status"`
	Date           string `json:"date"`
	Description    string `json:"description"`
	Counterpart    string `json:"counterpart"`
	SecondaryRef   string `json:"secondaryRef,omitempty"`
}

// Set assigns one field by name.
func (h *Header) Set(field HeaderField, value string) error {
	switch field {
	case HeaderDocumentNumber:
		h.DocumentNumber = value
	case HeaderStatus:
		h.Status = strings.TrimSpace(value)
	case HeaderDate:
		h.Date = strings.TrimSpace(value)
	case HeaderDescription:
		h.Description = value
	case HeaderCounterpart:
		h.Counterpart = strings.TrimSpace(value)
	case HeaderSecondaryRef:
		h.SecondaryRef = strings.TrimSpace(value)
	default:
		return ErrUnknownField
	}
	return nil
}
