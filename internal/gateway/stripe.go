package gateway

import (
	"context"
	"errors"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
)

// StripeGateway places manual-capture PaymentIntents on Stripe.
type StripeGateway struct {
	sc       *client.API
	currency string
}

// NewStripe creates a Stripe-backed gateway. apiURL overrides the API
// endpoint (stripe-mock, test servers); empty uses api.stripe.com.
func NewStripe(secretKey, apiURL string) *StripeGateway {
	var backends *stripe.Backends
	if apiURL != "" {
		backends = &stripe.Backends{
			API: stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
				URL: stripe.String(apiURL),
			}),
		}
	}
	return &StripeGateway{
		sc:       client.New(secretKey, backends),
		currency: string(stripe.CurrencyUSD),
	}
}

func (g *StripeGateway) CreateHold(ctx context.Context, req HoldRequest) (HoldResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(req.AmountCents),
		Currency:      stripe.String(g.currency),
		PaymentMethod: stripe.String(req.PaymentMethodRef),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	pi, err := g.sc.PaymentIntents.New(params)
	if err != nil {
		return HoldResult{}, stripeError(err)
	}
	return HoldResult{
		AuthRef:    pi.ID,
		Authorized: pi.Status == stripe.PaymentIntentStatusRequiresCapture,
		Status:     string(pi.Status),
	}, nil
}

func (g *StripeGateway) CancelHold(ctx context.Context, authRef string) error {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx
	if _, err := g.sc.PaymentIntents.Cancel(authRef, params); err != nil {
		return stripeError(err)
	}
	return nil
}

func (g *StripeGateway) CaptureHold(ctx context.Context, authRef string) error {
	params := &stripe.PaymentIntentCaptureParams{}
	params.Context = ctx
	if _, err := g.sc.PaymentIntents.Capture(authRef, params); err != nil {
		return stripeError(err)
	}
	return nil
}

// stripeError reduces a Stripe API error to its human-readable message,
// which is what ends up on the member's hold.
func stripeError(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) && se.Msg != "" {
		return errors.New(se.Msg)
	}
	return err
}
