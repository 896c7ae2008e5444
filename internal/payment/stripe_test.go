package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
)

func TestCheckoutParams(t *testing.T) {
	params := checkoutParams(CheckoutRequest{
		ProductName:     "Cup",
		Amount:          100,
		Currency:        "usd",
		SuccessURL:      "https://x/payments/success?session_id={CHECKOUT_SESSION_ID}&participant=3",
		CancelURL:       "https://x/payments/cancel?participant=3",
		ClientReference: "3",
	})
	require.Len(t, params.LineItems, 1)
	item := params.LineItems[0]
	assert.Equal(t, int64(1), *item.Quantity)
	assert.Equal(t, int64(100), *item.PriceData.UnitAmount)
	assert.Equal(t, "usd", *item.PriceData.Currency)
	assert.Equal(t, "Cup", *item.PriceData.ProductData.Name)
	assert.Equal(t, string(stripe.CheckoutSessionModePayment), *params.Mode)
	assert.Equal(t, "3", *params.ClientReferenceID)
	require.Len(t, params.PaymentMethodTypes, 1)
	assert.Equal(t, "card", *params.PaymentMethodTypes[0])
}

func TestSessionFromStripe(t *testing.T) {
	s := sessionFromStripe(&stripe.CheckoutSession{
		ID:            "cs_1",
		URL:           "https://checkout/cs_1",
		AmountTotal:   100,
		Currency:      stripe.CurrencyUSD,
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
		PaymentIntent: &stripe.PaymentIntent{ID: "pi_1"},
	})
	assert.Equal(t, CheckoutSession{
		ID:              "cs_1",
		URL:             "https://checkout/cs_1",
		AmountTotal:     100,
		Currency:        "usd",
		PaymentIntentID: "pi_1",
		PaymentStatus:   "paid",
	}, s)

	s = sessionFromStripe(&stripe.CheckoutSession{ID: "cs_2"})
	assert.Empty(t, s.PaymentIntentID)
}

func TestBuildMailsSkipsUnknownRecipients(t *testing.T) {
	msgs, err := buildMails(manualMails, "", mailData{})
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
