// Package notice holds the catalog of legal notices the service sells and the
// validated set of fields a landlord submits to fill one in.
package notice

import (
	"errors"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrInvalidNoticeType is returned for identifiers not present in the catalog.
var ErrInvalidNoticeType = errors.New("invalid notice type")

// Type identifies one of the notice templates
type Type string

const (
	Section21    Type = "section21"
	Section8     Type = "section8"
	RentIncrease Type = "rentincrease"
	Renewal      Type = "renewal"
)

// Metadata describes a catalog entry. Price is in pence.
type Metadata struct {
	Type        Type
	Name        string
	Price       int64
	Description string
}

// order is the presentation order of the catalog
var order = []Type{Section21, Section8, RentIncrease, Renewal}

// catalog is built once and never mutated, so concurrent reads need no locking.
var catalog = map[Type]Metadata{
	Section21: {
		Type:        Section21,
		Name:        "Section 21 (Form 6A) – Notice to End Assured Shorthold Tenancy",
		Price:       1500,
		Description: "No-fault notice requiring possession of a property let on an assured shorthold tenancy.",
	},
	Section8: {
		Type:        Section8,
		Name:        "Section 8 – Notice Seeking Possession",
		Price:       2000,
		Description: "Notice seeking possession on one or more statutory grounds, such as rent arrears.",
	},
	RentIncrease: {
		Type:        RentIncrease,
		Name:        "Section 13 – Notice of Rent Increase",
		Price:       1000,
		Description: "Notice proposing a new rent for an assured periodic tenancy.",
	},
	Renewal: {
		Type:        Renewal,
		Name:        "Tenancy Renewal Agreement",
		Price:       1000,
		Description: "Agreement renewing an existing tenancy for a further fixed term.",
	},
}

// Lookup returns the catalog entry for t.
func Lookup(t Type) (Metadata, error) {
	meta, ok := catalog[t]
	if !ok {
		return Metadata{}, ErrInvalidNoticeType
	}
	return meta, nil
}

// All returns every catalog entry in presentation order.
func All() []Metadata {
	out := make([]Metadata, 0, len(order))
	for _, t := range order {
		out = append(out, catalog[t])
	}
	return out
}

// Types returns the known identifiers in presentation order.
func Types() []Type {
	return append([]Type(nil), order...)
}

var gbpPrinter = message.NewPrinter(language.BritishEnglish)

// PriceDisplay formats the price in pounds sterling, e.g. "£15.00".
func (m Metadata) PriceDisplay() string {
	return gbpPrinter.Sprintf("£%.2f", float64(m.Price)/100)
}
