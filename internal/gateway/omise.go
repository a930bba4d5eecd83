package gateway

import (
	"context"
	"fmt"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
	"github.com/shopspring/decimal"
)

// omiseGateway charges through the Omise API. Amounts are converted to
// minor units (cents/satang) as the API requires.
type omiseGateway struct {
	client *omise.Client
}

func NewOmiseGateway(publicKey, secretKey string) (Gateway, error) {
	client, err := omise.NewClient(publicKey, secretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create omise client: %w", err)
	}
	client.SetDebug(false)
	return &omiseGateway{client: client}, nil
}

func (g *omiseGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	charge := &omise.Charge{}
	op := &operations.CreateCharge{
		Amount:   req.Amount.Mul(decimal.NewFromInt(100)).IntPart(),
		Currency: req.Currency,
		Metadata: map[string]interface{}{"reference": req.Reference},
	}
	if err := g.client.Do(charge, op); err != nil {
		return nil, fmt.Errorf("omise charge failed: %w", err)
	}

	switch string(charge.Status) {
	case "successful", "pending":
		return &ChargeResult{TransactionID: charge.ID, Status: string(charge.Status)}, nil
	default:
		reason := "declined"
		if charge.FailureMessage != nil {
			reason = *charge.FailureMessage
		}
		return nil, fmt.Errorf("%w: %s", ErrDeclined, reason)
	}
}

func (g *omiseGateway) Refund(ctx context.Context, transactionID string, amount decimal.Decimal, currency string) (*RefundResult, error) {
	refund := &omise.Refund{}
	op := &operations.CreateRefund{
		ChargeID: transactionID,
		Amount:   amount.Mul(decimal.NewFromInt(100)).IntPart(),
	}
	if err := g.client.Do(refund, op); err != nil {
		return nil, fmt.Errorf("omise refund failed: %w", err)
	}
	return &RefundResult{
		RefundID: refund.ID,
		Amount:   decimal.NewFromInt(refund.Amount).Div(decimal.NewFromInt(100)),
	}, nil
}
