package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

type normalizedSellInput struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

// FingerprintSale builds a deterministic hash of the sale payload (excluding the idempotency key).
func FingerprintSale(product string, quantity int) (string, error) {
	payload, err := json.Marshal(normalizedSellInput{Product: product, Quantity: quantity})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
