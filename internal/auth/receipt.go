package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jsbarre1/jwt-pizza/internal/model"
)

// ErrInvalidReceipt is returned when a receipt token fails
// signature or structure verification.
var ErrInvalidReceipt = errors.New("invalid receipt token")

// receiptClaims embeds the full order payload in the token. The
// receipt is deliberately self-contained: verification is a pure
// decode with no storage lookup, so a diner can prove what they
// bought even after the order row is archived.
type receiptClaims struct {
	Order model.Order `json:"order"`
	jwt.RegisteredClaims
}

// ReceiptSigner signs and verifies order receipts. Receipts carry
// no expiry; a purchase record stays verifiable indefinitely under
// the same key.
type ReceiptSigner struct {
	keys KeyProvider
}

func NewReceiptSigner(keys KeyProvider) *ReceiptSigner {
	return &ReceiptSigner{keys: keys}
}

// Sign mints a receipt token embedding the order and the moment of
// issue.
func (s *ReceiptSigner) Sign(order model.Order) (string, error) {
	claims := receiptClaims{
		Order: order,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now().UTC()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.keys.SigningKey())
}

// Verify checks the token signature and returns the embedded order.
func (s *ReceiptSigner) Verify(raw string) (model.Order, error) {
	claims := &receiptClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidReceipt
		}
		return s.keys.SigningKey(), nil
	})
	if err != nil || !tok.Valid {
		return model.Order{}, ErrInvalidReceipt
	}
	return claims.Order, nil
}
