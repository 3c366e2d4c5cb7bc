package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransferStatusValid(t *testing.T) {
	assert.True(t, TransferApproved.Valid())
	assert.True(t, TransferRejected.Valid())
	assert.True(t, TransferCompleted.Valid())
	assert.True(t, TransferCancelled.Valid())

	// PENDING is assigned at creation, never requested.
	assert.False(t, TransferPending.Valid())
	assert.False(t, TransferStatus("SHIPPED").Valid())
}

func TestTransferStatusTerminal(t *testing.T) {
	assert.True(t, TransferRejected.Terminal())
	assert.True(t, TransferCompleted.Terminal())
	assert.True(t, TransferCancelled.Terminal())
	assert.False(t, TransferPending.Terminal())
	assert.False(t, TransferApproved.Terminal())
}

func TestMovementMagnitude(t *testing.T) {
	out := StockMovement{QuantityChange: -15}
	in := StockMovement{QuantityChange: 15}
	assert.Equal(t, int64(15), out.Magnitude())
	assert.Equal(t, int64(15), in.Magnitude())
}
