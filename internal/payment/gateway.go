// Package payment creates hosted payment sessions and resolves them back to the
// notice fields they were created for.
//
// The fields travel as session metadata: a flat string-to-string map that the
// provider stores and returns untouched. Nothing else about the notice is
// persisted.
package payment

import (
	"context"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/evidenceledger/noticegen/internal/notice"
)

// SessionIDPlaceholder is replaced by the provider with the session id in the success URL.
const SessionIDPlaceholder = "{CHECKOUT_SESSION_ID}"

// Provider metadata limits.
const (
	MaxMetadataKeys        = 50
	MaxMetadataKeyLength   = 40
	MaxMetadataValueLength = 500
)

var (
	// ErrGateway is the class of all session creation and retrieval failures.
	ErrGateway = errors.New("payment gateway error")

	// ErrGatewayUnconfigured is returned when no payment credential was supplied.
	ErrGatewayUnconfigured = errors.New("payment gateway is not configured")

	ErrSessionNotFound  = fmt.Errorf("%w: session not found", ErrGateway)
	ErrMetadataTooLarge = fmt.Errorf("%w: metadata exceeds provider limits", ErrGateway)
	ErrNotPaid          = fmt.Errorf("%w: session has not been paid", ErrGateway)
)

// Session is a hosted payment session.
type Session struct {
	ID     string
	URL    string
	Paid   bool
	Fields notice.FieldSet
}

// Gateway is the payment provider boundary.
type Gateway interface {
	// CreateSession starts a payment for one notice and attaches fs as metadata.
	CreateSession(ctx context.Context, meta notice.Metadata, fs notice.FieldSet, successURL, cancelURL string) (*Session, error)
	// RetrieveSession returns the session with the fields attached at creation.
	RetrieveSession(ctx context.Context, id string) (*Session, error)
}

// EncodeMetadata flattens fs and checks the result against the provider limits.
func EncodeMetadata(fs notice.FieldSet) (map[string]string, error) {
	md := fs.Metadata()

	if len(md) > MaxMetadataKeys {
		return nil, fmt.Errorf("%w: %d keys", ErrMetadataTooLarge, len(md))
	}
	for key, value := range md {
		if err := validation.Validate(key, validation.RuneLength(1, MaxMetadataKeyLength)); err != nil {
			return nil, fmt.Errorf("%w: key %q: %v", ErrMetadataTooLarge, key, err)
		}
		if err := validation.Validate(value, validation.RuneLength(0, MaxMetadataValueLength)); err != nil {
			return nil, fmt.Errorf("%w: value of %q: %v", ErrMetadataTooLarge, key, err)
		}
	}

	return md, nil
}

// DecodeMetadata rebuilds the field set attached to a session.
func DecodeMetadata(md map[string]string) (notice.FieldSet, error) {
	fs, err := notice.FieldSetFromMetadata(md)
	if err != nil {
		return notice.FieldSet{}, fmt.Errorf("%w: decoding session metadata: %w", ErrGateway, err)
	}
	return fs, nil
}

// Unconfigured is used when no credential is available. Every call fails with
// ErrGatewayUnconfigured.
type Unconfigured struct{}

func (Unconfigured) CreateSession(context.Context, notice.Metadata, notice.FieldSet, string, string) (*Session, error) {
	return nil, ErrGatewayUnconfigured
}

func (Unconfigured) RetrieveSession(context.Context, string) (*Session, error) {
	return nil, ErrGatewayUnconfigured
}
