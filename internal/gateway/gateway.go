// Package gateway abstracts the external payment processor.
package gateway

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var ErrDeclined = errors.New("payment declined by gateway")

type ChargeRequest struct {
	Amount    decimal.Decimal
	Currency  string
	Method    string
	Reference string
}

type ChargeResult struct {
	TransactionID string
	Status        string
}

type RefundResult struct {
	RefundID string
	Amount   decimal.Decimal
}

type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	Refund(ctx context.Context, transactionID string, amount decimal.Decimal, currency string) (*RefundResult, error)
}
