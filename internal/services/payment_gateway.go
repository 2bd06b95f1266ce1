package services

import (
	"context"
	"math/rand/v2"

	"github.com/google/uuid"
)

// AuthorizationRequest is what the payment network sees. The full card
// number never leaves PaymentService.
type AuthorizationRequest struct {
	PaymentID  string
	Amount     float64
	Currency   string
	CardLast4  string
	HolderName string
}

type GatewayResult struct {
	Approved      bool
	TransactionID string
	Reason        string
}

// Gateway is the external payment network.
type Gateway interface {
	Authorize(ctx context.Context, req AuthorizationRequest) (GatewayResult, error)
}

// SimulatedGateway approves a SuccessRate share of requests at random.
type SimulatedGateway struct {
	SuccessRate float64
	Rand        func() float64
}

func (g SimulatedGateway) Authorize(ctx context.Context, req AuthorizationRequest) (GatewayResult, error) {
	if err := ctx.Err(); err != nil {
		return GatewayResult{}, err
	}
	roll := rand.Float64
	if g.Rand != nil {
		roll = g.Rand
	}
	res := GatewayResult{TransactionID: uuid.NewString()}
	if roll() < g.SuccessRate {
		res.Approved = true
		return res, nil
	}
	res.Reason = "declined by issuer"
	return res, nil
}

// FixedGateway always answers the same way.
type FixedGateway struct {
	Approve bool
	Err     error
}

func (g FixedGateway) Authorize(ctx context.Context, req AuthorizationRequest) (GatewayResult, error) {
	if g.Err != nil {
		return GatewayResult{}, g.Err
	}
	res := GatewayResult{Approved: g.Approve, TransactionID: "txn-" + req.PaymentID}
	if !g.Approve {
		res.Reason = "declined"
	}
	return res, nil
}
