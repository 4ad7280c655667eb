package notice

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/evidenceledger/noticegen/internal/errl"
	"github.com/evidenceledger/noticegen/internal/fonts"
)

// ErrUnprintableText is returned when a field holds characters the notice
// typeface cannot draw.
var ErrUnprintableText = errors.New("text cannot be printed on the notice")

// Form keys as posted by the notice form and stored in session metadata.
const (
	KeyType            = "type"
	KeyLandlordName    = "landlordName"
	KeyLandlordAddress = "landlordAddress"
	KeyTenantName      = "tenantName"
	KeyTenantAddress   = "tenantAddress"
	KeyPropertyAddress = "propertyAddress"
	KeyTenancyStart    = "tenancyStart"
	KeyNoticeEnd       = "noticeEnd"
	KeyReason          = "reason"
)

// FieldKeys lists the recognised free-text keys, excluding the notice type.
var FieldKeys = []string{
	KeyLandlordName,
	KeyLandlordAddress,
	KeyTenantName,
	KeyTenantAddress,
	KeyPropertyAddress,
	KeyTenancyStart,
	KeyNoticeEnd,
	KeyReason,
}

// FieldSet is the data needed to fill in a notice.
// After Validate every field is present; optional ones may be empty.
type FieldSet struct {
	Type            Type
	LandlordName    string
	LandlordAddress string
	TenantName      string
	TenantAddress   string
	PropertyAddress string
	TenancyStart    string
	NoticeEnd       string
	Reason          string
}

// Validate checks the notice type against the catalog and copies the
// recognised fields out of raw. Missing fields become empty strings.
// Field contents are free text; they are only checked to be printable.
func Validate(typeID string, raw map[string]string) (FieldSet, error) {
	if err := validateType(typeID); err != nil {
		return FieldSet{}, err
	}

	for _, key := range FieldKeys {
		if err := printable(key, raw[key]); err != nil {
			return FieldSet{}, err
		}
	}

	return FieldSet{
		Type:            Type(typeID),
		LandlordName:    raw[KeyLandlordName],
		LandlordAddress: raw[KeyLandlordAddress],
		TenantName:      raw[KeyTenantName],
		TenantAddress:   raw[KeyTenantAddress],
		PropertyAddress: raw[KeyPropertyAddress],
		TenancyStart:    raw[KeyTenancyStart],
		NoticeEnd:       raw[KeyNoticeEnd],
		Reason:          raw[KeyReason],
	}, nil
}

func validateType(typeID string) error {
	known := make([]any, 0, len(order))
	for _, t := range order {
		known = append(known, string(t))
	}

	err := validation.Validate(typeID,
		validation.Required,
		validation.In(known...),
	)
	if err != nil {
		return ErrInvalidNoticeType
	}
	return nil
}

// printable fails with ErrUnprintableText if the typeface has no glyph for
// some character of value.
func printable(key, value string) error {
	missing, err := fonts.Unsupported(value)
	if err != nil {
		return errl.Error(err)
	}
	if len(missing) > 0 {
		return errl.Errorf("%w: %s contains %q", ErrUnprintableText, key, string(missing))
	}
	return nil
}

// Metadata flattens the field set into the string map carried by a payment session.
func (f FieldSet) Metadata() map[string]string {
	return map[string]string{
		KeyType:            string(f.Type),
		KeyLandlordName:    f.LandlordName,
		KeyLandlordAddress: f.LandlordAddress,
		KeyTenantName:      f.TenantName,
		KeyTenantAddress:   f.TenantAddress,
		KeyPropertyAddress: f.PropertyAddress,
		KeyTenancyStart:    f.TenancyStart,
		KeyNoticeEnd:       f.NoticeEnd,
		KeyReason:          f.Reason,
	}
}

// FieldSetFromMetadata rebuilds a field set from session metadata.
// The notice type is validated again since the map came back from a third party.
func FieldSetFromMetadata(md map[string]string) (FieldSet, error) {
	if md == nil {
		return FieldSet{}, errors.New("empty session metadata")
	}
	return Validate(md[KeyType], md)
}
