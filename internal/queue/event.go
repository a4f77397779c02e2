// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderPlacedEvent is published after an order has been committed.
// EventID is a random idempotency key: consumers that see the same
// id twice must treat the second delivery as a duplicate. The event
// carries enough for downstream receipt mailing or analytics
// without querying the primary database.
type OrderPlacedEvent struct {
	EventID     string   `json:"event_id"`
	OrderID     uint64   `json:"order_id"`
	DinerID     uint64   `json:"diner_id"`
	FranchiseID uint64   `json:"franchise_id"`
	StoreID     uint64   `json:"store_id"`
	Items       []string `json:"items"`
	Total       float64  `json:"total"`
	PlacedAt    string   `json:"placed_at"`
}
