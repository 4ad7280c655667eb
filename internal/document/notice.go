package document

import (
	"time"
	_ "time/tzdata"

	"github.com/evidenceledger/noticegen/internal/notice"
)

// DocumentTitle is the first heading of every notice.
const DocumentTitle = "UK Landlord Legal Notice"

// Disclaimer is printed at the end of every notice.
const Disclaimer = "This document was generated using an automated service based on official government templates. " +
	"It does not constitute legal advice. Please review the contents carefully and ensure it meets your specific circumstances. " +
	"For legal advice, consult a qualified solicitor."

// ReasonLabel is the label of the optional reason line.
const ReasonLabel = "Reason (if applicable)"

// DateLayout is the UK day/month/year format used for the issue date.
const DateLayout = "02/01/2006"

// london is the zone of the issue date. The zone database is compiled in, so
// the date does not depend on the zone or the files of the host.
var london = mustLoadLocation("Europe/London")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

const sectionGap = 4

// Compose builds the block sequence of a notice. The order is fixed; the
// reason line is only present when a reason was given.
// The date line is the day of now in the UK.
func Compose(meta notice.Metadata, fs notice.FieldSet, now time.Time) []Block {
	blocks := []Block{
		Heading{Text: DocumentTitle, Align: AlignCenter, Bold: true, Title: true},
		Heading{Text: meta.Name, Align: AlignCenter},
		KeyValue{Label: "Date", Value: now.In(london).Format(DateLayout), Align: AlignEnd},

		Spacer{Height: sectionGap},
		Heading{Text: "Landlord Details", Bold: true},
		KeyValue{Label: "Name", Value: fs.LandlordName},
		KeyValue{Label: "Address", Value: fs.LandlordAddress},

		Spacer{Height: sectionGap},
		Heading{Text: "Tenant Details", Bold: true},
		KeyValue{Label: "Name", Value: fs.TenantName},
		KeyValue{Label: "Address", Value: fs.TenantAddress},

		Spacer{Height: sectionGap},
		Heading{Text: "Property Details", Bold: true},
		KeyValue{Label: "Address", Value: fs.PropertyAddress},
		KeyValue{Label: "Tenancy Start Date", Value: fs.TenancyStart},
		KeyValue{Label: "Notice End Date", Value: fs.NoticeEnd},
	}

	if fs.Reason != "" {
		blocks = append(blocks, KeyValue{Label: ReasonLabel, Value: fs.Reason})
	}

	blocks = append(blocks,
		Spacer{Height: sectionGap},
		Heading{Text: "Disclaimer", Bold: true},
		Paragraph{Text: Disclaimer},
	)

	return blocks
}
