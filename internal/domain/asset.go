package domain

import "fmt"

// Vendor tags every entity with the marketplace it was sourced from.
type Vendor string

const VendorKnownOrigin Vendor = "KNOWN_ORIGIN"

// Network names the chain family an entity lives on.
type Network string

const (
	NetworkEthereum Network = "ETHEREUM"
	NetworkMatic    Network = "MATIC"
)

// ChainID is the EIP-155 chain id.
type ChainID int64

const (
	ChainIDEthereumMainnet ChainID = 1
	ChainIDEthereumSepolia ChainID = 11155111
)

// Category classifies assets for browsing.
type Category string

const CategoryArt Category = "art"

// AssetData is vendor-specific descriptive data.
type AssetData struct {
	Description string `json:"description"`
	IsEdition   bool   `json:"isEdition"`
}

// Asset is the canonical, vendor-tagged representation of a token.
type Asset struct {
	ID              string    `json:"id"`
	TokenID         string    `json:"tokenId"`
	ContractAddress string    `json:"contractAddress"`
	ActiveOrderID   string    `json:"activeOrderId"`
	Owner           string    `json:"owner"`
	Name            string    `json:"name"`
	Image           string    `json:"image"`
	URL             string    `json:"url"`
	Data            AssetData `json:"data"`
	Category        Category  `json:"category"`
	Vendor          Vendor    `json:"vendor"`
	ChainID         ChainID   `json:"chainId"`
	Network         Network   `json:"network"`
}

// AssetID builds the canonical asset id: "<contractAddress>-<tokenId>".
func AssetID(contractAddress, tokenID string) string {
	return fmt.Sprintf("%s-%s", contractAddress, tokenID)
}
