package model

import "time"

// Franchise groups stores under a name and a set of administrator
// users. Admins are weak references: deleting a user never touches
// the franchises that listed them.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – unique franchise name.
//  Admins    – users allowed to manage this franchise's stores.
//  Stores    – stores owned by the franchise.
//  CreatedAt – timestamp when the franchise was created.
type Franchise struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Admins    []UserRef `json:"admins,omitempty"`
	Stores    []Store   `json:"stores"`
	CreatedAt time.Time `json:"-"`
}

// Store is a single outlet of a franchise. TotalRevenue is the
// authoritative running total of completed orders, credited in the
// same transaction that persists each order.
type Store struct {
	ID           uint64  `json:"id"`
	FranchiseID  uint64  `json:"franchiseId,omitempty"`
	Name         string  `json:"name"`
	TotalRevenue float64 `json:"totalRevenue"`
}
