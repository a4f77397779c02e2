package model

import (
	"bytes"
	"strconv"
	"time"
)

// MenuItem is one entry of the read-only pizza catalog. The catalog
// is externally supplied and seeded at startup; the API never
// mutates it.
type MenuItem struct {
	ID          uint64  `json:"id"`
	Title       string  `json:"title"`
	Image       string  `json:"image"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

// OrderItem is a line of an order. Description and Price are copies
// of the menu item taken at purchase time, so an order stays a
// faithful receipt when the catalog later changes.
type OrderItem struct {
	MenuID      uint64  `json:"menuId"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// Order is an immutable record of a completed purchase. It always
// references a store inside the franchise it names; referential
// integrity is checked at creation and never revisited. DinerID is
// kept as a historical reference even after the user is deleted.
//
// Fields:
//  ID          – primary key identifier.
//  DinerID     – user who placed the order.
//  FranchiseID – franchise of the store ordered from.
//  StoreID     – store the order was placed against.
//  Items       – purchased lines with prices frozen at order time.
//  Date        – creation timestamp.
type Order struct {
	ID          uint64      `json:"id"`
	DinerID     uint64      `json:"dinerId,omitempty"`
	FranchiseID uint64      `json:"franchiseId"`
	StoreID     uint64      `json:"storeId"`
	Items       []OrderItem `json:"items"`
	Date        time.Time   `json:"date,omitzero"`
}

// Total returns the derived order total, the sum of item prices.
func (o Order) Total() float64 {
	var t float64
	for _, it := range o.Items {
		t += it.Price
	}
	return t
}

// FlexID is a uint64 that also accepts JSON string encodings. The
// web client posts store ids as strings ("storeId":"4") while
// franchise ids arrive numeric; both decode into a FlexID.
type FlexID uint64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexID) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	n, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return err
	}
	*f = FlexID(n)
	return nil
}
