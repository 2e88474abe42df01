package oms

import (
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"

	"omsrelay/internal/domain/model"
)

// Generator fabricates random orders for demo mode, bypassing the
// upstream APIs entirely. Statuses are drawn from the closed set so
// the fabricated traffic exercises every routing branch.
type Generator struct {
	account string
	rng     *rand.Rand
}

var syntheticStatuses = []model.Status{
	model.StatusWaitingSellerConfirmation,
	model.StatusPaymentApproved,
	model.StatusCanceled,
}

func NewGenerator(account string) *Generator {
	return &Generator{
		account: account,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Batch returns n fabricated orders with random minor-unit values.
func (g *Generator) Batch(n int) []*model.Order {
	orders := make([]*model.Order, 0, n)
	now := time.Now().UTC().Format(time.RFC3339)
	for i := 0; i < n; i++ {
		orders = append(orders, &model.Order{
			AccountName:  g.account,
			OrderID:      uuid.NewString(),
			Origin:       "synthetic",
			AffiliateID:  "",
			SalesChannel: "2",
			Value:        strconv.Itoa(g.rng.Intn(999900) + 100),
			CreationDate: now,
			LastChange:   now,
			Status:       syntheticStatuses[g.rng.Intn(len(syntheticStatuses))],
		})
	}
	return orders
}
