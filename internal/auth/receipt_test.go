package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsbarre1/jwt-pizza/internal/model"
)

func testOrder() model.Order {
	return model.Order{
		ID:          23,
		DinerID:     3,
		FranchiseID: 2,
		StoreID:     4,
		Items: []model.OrderItem{
			{MenuID: 1, Description: "Veggie", Price: 0.0038},
			{MenuID: 2, Description: "Pepperoni", Price: 0.0042},
		},
		Date: time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestReceiptRoundTrip(t *testing.T) {
	signer := NewReceiptSigner(StaticKey("receipt-secret"))
	order := testOrder()

	token, err := signer.Sign(order)
	require.NoError(t, err)

	got, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, order, got)
	assert.InDelta(t, 0.008, got.Total(), 1e-12)
}

func TestReceiptRejectsAnyMutation(t *testing.T) {
	signer := NewReceiptSigner(StaticKey("receipt-secret"))
	token, err := signer.Sign(testOrder())
	require.NoError(t, err)

	// The final character carries two unused base64 bits, so a flip
	// there can decode to the same signature. Every other byte must
	// break verification.
	for i := 0; i < len(token)-1; i++ {
		mutated := []byte(token)
		if mutated[i] == 'x' {
			mutated[i] = 'y'
		} else {
			mutated[i] = 'x'
		}
		if string(mutated) == token {
			continue
		}
		_, err := signer.Verify(string(mutated))
		assert.ErrorIs(t, err, ErrInvalidReceipt, "mutation at byte %d must invalidate the receipt", i)
	}
}

func TestReceiptRejectsWrongKey(t *testing.T) {
	token, err := NewReceiptSigner(StaticKey("receipt-secret")).Sign(testOrder())
	require.NoError(t, err)

	_, err = NewReceiptSigner(StaticKey("rotated")).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidReceipt)
}
