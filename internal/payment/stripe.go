package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/evidenceledger/noticegen/internal/notice"
)

// Stripe creates Stripe Checkout sessions charged in pounds sterling.
type Stripe struct {
	api *client.API
}

// NewStripe creates a gateway using secretKey. backends may be nil to use the
// live Stripe API.
func NewStripe(secretKey string, backends *stripe.Backends) (*Stripe, error) {
	if secretKey == "" {
		return nil, ErrGatewayUnconfigured
	}
	return &Stripe{api: client.New(secretKey, backends)}, nil
}

func (s *Stripe) CreateSession(ctx context.Context, meta notice.Metadata, fs notice.FieldSet, successURL, cancelURL string) (*Session, error) {
	md, err := EncodeMetadata(fs)
	if err != nil {
		return nil, err
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyGBP)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(meta.Name),
						Description: stripe.String(meta.Description),
					},
					UnitAmount: stripe.Int64(meta.Price),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	params.Context = ctx
	for key, value := range md {
		params.AddMetadata(key, value)
	}

	cs, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, wrapStripeError("creating checkout session", err)
	}

	return &Session{
		ID:     cs.ID,
		URL:    cs.URL,
		Paid:   isPaid(cs),
		Fields: fs,
	}, nil
}

func (s *Stripe) RetrieveSession(ctx context.Context, id string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	cs, err := s.api.CheckoutSessions.Get(id, params)
	if err != nil {
		return nil, wrapStripeError("retrieving checkout session", err)
	}

	fs, err := DecodeMetadata(cs.Metadata)
	if err != nil {
		return nil, err
	}

	return &Session{
		ID:     cs.ID,
		URL:    cs.URL,
		Paid:   isPaid(cs),
		Fields: fs,
	}, nil
}

func isPaid(cs *stripe.CheckoutSession) bool {
	return cs.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid ||
		cs.PaymentStatus == stripe.CheckoutSessionPaymentStatusNoPaymentRequired
}

func wrapStripeError(op string, err error) error {
	var serr *stripe.Error
	if errors.As(err, &serr) && serr.Code == stripe.ErrorCodeResourceMissing {
		return fmt.Errorf("%w: %s: %v", ErrSessionNotFound, op, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrGateway, op, err)
}
