package finance

import "fmt"

const (
	ColorMatch    = "#05ae05"
	ColorMismatch = "#ff0101"

	DeferredPayment = "Deferred Payment"
)

// CompareFilter is what the comparison screen filters supplier terms by.
type CompareFilter struct {
	PaymentOption  string `json:"payment_option" query:"payment_option"`
	DeliveryTerm   string `json:"delivery_term" query:"delivery_term"`
	PaymentTermsID int64  `json:"payment_terms_id" query:"payment_terms_id"`
}

// predicates returns how many fields take part: 3 for deferred payment
// with explicit terms, 2 for option plus delivery term, 0 otherwise.
func (f CompareFilter) predicates() int {
	switch {
	case f.PaymentOption == DeferredPayment && f.DeliveryTerm != "" && f.PaymentTermsID != 0:
		return 3
	case f.PaymentOption != "" && f.DeliveryTerm != "":
		return 2
	default:
		return 0
	}
}

func (f CompareFilter) Active() bool {
	return f.predicates() > 0
}

// Terms are the supplier side values being compared.
type Terms struct {
	PaymentOption  string
	DeliveryTerm   string
	PaymentTermsID int64
}

// Color tags terms green when they equal the filter and red otherwise.
// An inactive filter yields "".
func (f CompareFilter) Color(t Terms) string {
	match := false
	switch f.predicates() {
	case 3:
		match = t.PaymentOption == f.PaymentOption && t.DeliveryTerm == f.DeliveryTerm && t.PaymentTermsID == f.PaymentTermsID
	case 2:
		match = t.PaymentOption == f.PaymentOption && t.DeliveryTerm == f.DeliveryTerm
	default:
		return ""
	}
	if match {
		return ColorMatch
	}
	return ColorMismatch
}

// CurrencyLabel renders "USD($)".
func CurrencyLabel(shortForm, symbol string) string {
	return fmt.Sprintf("%s(%s)", shortForm, symbol)
}
