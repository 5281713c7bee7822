package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allOrderStatuses = []OrderStatus{
	OrderStatusPendingConsultation,
	OrderStatusPendingOrderReceived,
	OrderStatusOrderReceived,
	OrderStatusInProduction,
	OrderStatusPendingApproval,
	OrderStatusReadyForDelivery,
	OrderStatusShipped,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{OrderStatusPendingConsultation, OrderStatusPendingOrderReceived, true},
		{OrderStatusPendingConsultation, OrderStatusOrderReceived, false},
		{OrderStatusPendingOrderReceived, OrderStatusOrderReceived, true},
		{OrderStatusPendingOrderReceived, OrderStatusInProduction, false},
		{OrderStatusOrderReceived, OrderStatusInProduction, true},
		{OrderStatusOrderReceived, OrderStatusPendingApproval, true},
		{OrderStatusOrderReceived, OrderStatusShipped, false},
		{OrderStatusInProduction, OrderStatusPendingApproval, true},
		{OrderStatusInProduction, OrderStatusReadyForDelivery, true},
		{OrderStatusInProduction, OrderStatusCompleted, false},
		{OrderStatusPendingApproval, OrderStatusInProduction, true},
		{OrderStatusPendingApproval, OrderStatusReadyForDelivery, true},
		{OrderStatusReadyForDelivery, OrderStatusShipped, true},
		{OrderStatusReadyForDelivery, OrderStatusInProduction, false},
		{OrderStatusShipped, OrderStatusCompleted, true},
		{OrderStatusShipped, OrderStatusReadyForDelivery, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.from)+" to "+string(tc.to), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestOrderStatus_CancelFromAnyNonTerminal(t *testing.T) {
	for _, status := range allOrderStatuses {
		got := status.CanTransitionTo(OrderStatusCancelled)
		assert.Equal(t, !status.IsTerminal(), got, "статус %s", status)
	}
}

func TestOrderStatus_TerminalStatusesFrozen(t *testing.T) {
	for _, terminal := range []OrderStatus{OrderStatusCompleted, OrderStatusCancelled} {
		for _, target := range allOrderStatuses {
			assert.False(t, terminal.CanTransitionTo(target), "%s не должен переходить в %s", terminal, target)
		}
	}
}

func TestOrderStatus_IsValid(t *testing.T) {
	for _, status := range allOrderStatuses {
		assert.True(t, status.IsValid(), "статус %s", status)
	}

	assert.False(t, OrderStatus("delivering").IsValid())
	assert.False(t, OrderStatus("").IsValid())
}

func TestOrderStatus_UnknownStatusCannotTransition(t *testing.T) {
	unknown := OrderStatus("delivering")
	assert.False(t, unknown.CanTransitionTo(OrderStatusCompleted))
	assert.False(t, unknown.CanTransitionTo(OrderStatusCancelled))
}

func TestProductionOrder_EscrowRemaining(t *testing.T) {
	order := &ProductionOrder{EscrowAmount: 5000, EscrowRefundedTotal: 1200}
	assert.Equal(t, float64(3800), order.EscrowRemaining())

	fullyRefunded := &ProductionOrder{EscrowAmount: 900, EscrowRefundedTotal: 900}
	assert.Equal(t, float64(0), fullyRefunded.EscrowRemaining())
}
