package domain

import (
	"fmt"
	"math"
)

// OrderStatus is the lifecycle state of a sale order.
type OrderStatus string

const (
	OrderStatusOpen      OrderStatus = "OPEN"
	OrderStatusSold      OrderStatus = "SOLD"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// NoExpiry marks orders that never expire.
const NoExpiry int64 = math.MaxInt64

// ZeroAddress is the empty EVM address used for unset buyers.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// Order is a sale order derived from an edition listing.
// Price is denominated in the reference currency; NativePrice is the listed wei amount.
type Order struct {
	ID                 string      `json:"id"`
	MarketplaceAddress string      `json:"marketplaceAddress"`
	ContractAddress    string      `json:"contractAddress"`
	TokenID            string      `json:"tokenId"`
	Owner              string      `json:"owner"`
	Buyer              string      `json:"buyer"`
	Price              string      `json:"price"`
	NativePrice        string      `json:"ethPrice"`
	Status             OrderStatus `json:"status"`
	ExpiresAt          int64       `json:"expiresAt"`
	CreatedAt          int64       `json:"createdAt"`
	UpdatedAt          int64       `json:"updatedAt"`
	Vendor             Vendor      `json:"vendor"`
	ChainID            ChainID     `json:"chainId"`
	Network            Network     `json:"network"`
}

// OrderID builds the id of the order derived from fragmentID.
func OrderID(vendor Vendor, fragmentID string) string {
	return fmt.Sprintf("%s-order-%s", vendor, fragmentID)
}
