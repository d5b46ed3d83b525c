package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusForwardTransitions(t *testing.T) {
	cases := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusConfirmed, OrderStatusPreparing, true},
		{OrderStatusPreparing, OrderStatusDelivering, true},
		{OrderStatusDelivering, OrderStatusDelivered, true},
		{OrderStatusPending, OrderStatusPreparing, false},
		{OrderStatusDelivered, OrderStatusPending, false},
		{OrderStatusConfirmed, OrderStatusDelivered, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestOrderStatusCancellation(t *testing.T) {
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusCancelled))
	assert.True(t, OrderStatusDelivering.CanTransitionTo(OrderStatusCancelled))
	assert.False(t, OrderStatusDelivered.CanTransitionTo(OrderStatusCancelled))
	assert.False(t, OrderStatusCancelled.CanTransitionTo(OrderStatusCancelled))
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("preparing")
	assert.NoError(t, err)
	assert.Equal(t, OrderStatusPreparing, status)

	_, err = ParseOrderStatus("shipped")
	assert.Error(t, err)
}
