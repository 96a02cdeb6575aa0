package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/paymentintent"
)

// Charge is the outcome of a successful gateway sale.
type Charge struct {
	ID            string
	Status        string
	PaymentMethod string
}

type PaymentGateway interface {
	Charge(ctx context.Context, amount decimal.Decimal, nonce string) (*Charge, error)
}

// StripeGateway charges through a PaymentIntent confirmed on creation.
type StripeGateway struct {
	currency string
}

func NewStripeGateway(secretKey, currency string) *StripeGateway {
	stripe.Key = secretKey
	if currency == "" {
		currency = string(stripe.CurrencyINR)
	}
	return &StripeGateway{currency: currency}
}

func (s *StripeGateway) Charge(ctx context.Context, amount decimal.Decimal, nonce string) (*Charge, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount.Shift(2).Round(0).IntPart()),
		Currency:           stripe.String(s.currency),
		PaymentMethod:      stripe.String(nonce),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Confirm:            stripe.Bool(true),
	}
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentDeclined, err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded && pi.Status != stripe.PaymentIntentStatusProcessing {
		return nil, fmt.Errorf("%w: status %s", ErrPaymentDeclined, pi.Status)
	}

	method := "card"
	if pi.PaymentMethod != nil && pi.PaymentMethod.Type != "" {
		method = string(pi.PaymentMethod.Type)
	}
	return &Charge{ID: pi.ID, Status: string(pi.Status), PaymentMethod: method}, nil
}
