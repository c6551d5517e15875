package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{OrderStatusWIP, OrderStatusFinished, true},
		{OrderStatusFinished, OrderStatusDeleted, true},
		{OrderStatusWIP, OrderStatusDeleted, false},
		{OrderStatusFinished, OrderStatusWIP, false},
		{OrderStatusFinished, OrderStatusFinished, false},
		{OrderStatusDeleted, OrderStatusWIP, false},
		{OrderStatusDeleted, OrderStatusFinished, false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}
