package gateway

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// simulatedGateway approves or declines charges at fixed per-method rates.
// Used in development when no Omise keys are configured.
type simulatedGateway struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulatedGateway(seed int64) Gateway {
	return &simulatedGateway{rng: rand.New(rand.NewSource(seed))}
}

func (g *simulatedGateway) successRate(method string) float64 {
	switch method {
	case "card":
		return 0.95
	case "mobile-money":
		return 0.98
	default:
		return 0.97
	}
}

func (g *simulatedGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	g.mu.Lock()
	roll := g.rng.Float64()
	g.mu.Unlock()

	if roll > g.successRate(req.Method) {
		return nil, fmt.Errorf("%w: %s charge rejected", ErrDeclined, req.Method)
	}
	txnID := "txn_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:24]
	return &ChargeResult{TransactionID: txnID, Status: "successful"}, nil
}

func (g *simulatedGateway) Refund(ctx context.Context, transactionID string, amount decimal.Decimal, currency string) (*RefundResult, error) {
	refundID := "rfnd_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:24]
	return &RefundResult{RefundID: refundID, Amount: amount}, nil
}
