package lineitems

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Notice is the generic message raised alongside a non-empty error map.
const Notice = "Please fill in all required fields"

// Errors maps a field key to a human readable message. Header keys are the
// HeaderField names; row keys look like "items[2].quantity".
type Errors map[string]string

// Empty reports whether validation passed.
func (e Errors) Empty() bool { return len(e) == 0 }

// Notice returns the generic notice, or "" when there are no errors.
func (e Errors) Notice() string {
	if e.Empty() {
		return ""
	}
	return Notice
}

// ItemsKey is the error key for an empty collection.
const ItemsKey = "items"

// ItemKey builds the error key for a row field.
func ItemKey(index int, field Field) string {
	return fmt.Sprintf("items[%d].%s", index, field)
}

type headerRules struct {
	DocumentNumber string `json:"documentNumber" validate:"required,max=64"`
	Date           string `json:"date" validate:"required,datetime=2006-01-02"`
	Description    string `json:"description" validate:"max=1000"`
	Counterpart    string `json:"counterpart" validate:"required,ref"`
	SecondaryRef   string `json:"secondaryRef" validate:"omitempty,ref"`
}

var (
	engineOnce sync.Once
	engine     *validator.Validate
)

func rules() *validator.Validate {
	engineOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("ref", func(fl validator.FieldLevel) bool {
			id, err := strconv.ParseInt(fl.Field().String(), 10, 64)
			return err == nil && id > 0
		})
		engine = v
	})
	return engine
}

// Validate runs every rule over the header and rows and collects all failures.
func Validate(d Descriptor, h Header, items []Item) Errors {
	errs := Errors{}
	v := rules()

	hr := headerRules{
		DocumentNumber: strings.TrimSpace(h.DocumentNumber),
		Date:           strings.TrimSpace(h.Date),
		Description:    strings.TrimSpace(h.Description),
		Counterpart:    strings.TrimSpace(h.Counterpart),
		SecondaryRef:   strings.TrimSpace(h.SecondaryRef),
	}
	if !d.HasSecondaryRef() {
		hr.SecondaryRef = ""
	}
	if err := v.Struct(hr); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				errs[fe.Field()] = headerMessage(d, fe)
			}
		}
	}

	if status := strings.TrimSpace(h.Status); status != "" && len(d.Statuses) > 0 {
		if v.Var(status, "oneof="+strings.Join(d.Statuses, " ")) != nil {
			errs[string(HeaderStatus)] = "Status is not valid"
		}
	}

	if len(items) == 0 {
		errs[ItemsKey] = "At least one item is required"
	}
	for i, it := range items {
		if v.Var(it.ProductID, "gt=0") != nil {
			errs[ItemKey(i, FieldProduct)] = "Product is required"
		}
		if v.Var(it.Quantity, "gt=0") != nil {
			errs[ItemKey(i, FieldQuantity)] = "Quantity must be greater than zero"
		}
		if d.Priced() {
			rule := d.PriceRule
			if rule == "" {
				rule = PricePositive
			}
			if v.Var(it.UnitPrice, string(rule)) != nil {
				errs[ItemKey(i, FieldUnitPrice)] = priceMessage(rule)
			}
		}
		if d.Discounted() && v.Var(it.Discount, "gte=0") != nil {
			errs[ItemKey(i, FieldDiscount)] = "Discount must not be negative"
		}
		if !finite(it.Total) {
			errs[ItemKey(i, FieldQuantity)] = "Line total is too large"
		}
	}
	if len(items) > 0 && !finite(sumTotals(items)) {
		errs[ItemsKey] = "Order total is too large"
	}
	return errs
}

func headerMessage(d Descriptor, fe validator.FieldError) string {
	label := headerLabel(d, HeaderField(fe.Field()))
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "ref":
		return label + " must be a valid reference"
	case "datetime":
		return label + " must be a date in YYYY-MM-DD form"
	case "max":
		return label + " is too long"
	default:
		return label + " is not valid"
	}
}

func headerLabel(d Descriptor, f HeaderField) string {
	switch f {
	case HeaderDocumentNumber:
		return d.Title + " number"
	case HeaderDate:
		return "Date"
	case HeaderDescription:
		return "Description"
	case HeaderCounterpart:
		if d.CounterpartLabel != "" {
			return d.CounterpartLabel
		}
		return "Reference"
	case HeaderSecondaryRef:
		if d.SecondaryRefLabel != "" {
			return d.SecondaryRefLabel
		}
		return "Secondary reference"
	default:
		return string(f)
	}
}

func priceMessage(rule PriceRule) string {
	if rule == PriceNonNegative {
		return "Unit price must not be negative"
	}
	return "Unit price must be greater than zero"
}
