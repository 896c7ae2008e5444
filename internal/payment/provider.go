package payment

import "context"

type CheckoutRequest struct {
	ProductName     string
	Amount          int64
	Currency        string
	SuccessURL      string
	CancelURL       string
	ClientReference string
}

type CheckoutSession struct {
	ID              string
	URL             string
	AmountTotal     int64
	Currency        string
	PaymentIntentID string
	PaymentStatus   string
}

// Provider is a hosted checkout service.
type Provider interface {
	CreateSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)
	GetSession(ctx context.Context, sessionID string) (CheckoutSession, error)
}
