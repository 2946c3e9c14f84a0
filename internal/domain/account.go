package domain

import (
	"github.com/samber/lo"
)

// Account groups the assets one address owns within a single result.
type Account struct {
	ID      string   `json:"id"`
	Address string   `json:"address"`
	NFTIDs  []string `json:"nftIds"`
}

// NewAccount creates an empty account for address.
func NewAccount(address string) Account {
	return Account{ID: address, Address: address, NFTIDs: []string{}}
}

// AddToAccount appends assetID to the account owned by address, creating the account the
// first time address is seen. Lookup is a linear scan; callers keep accounts page-sized.
func AddToAccount(accounts []Account, address, assetID string) []Account {
	_, idx, found := lo.FindIndexOf(accounts, func(a Account) bool {
		return a.Address == address
	})
	if !found {
		accounts = append(accounts, NewAccount(address))
		idx = len(accounts) - 1
	}
	accounts[idx].NFTIDs = append(accounts[idx].NFTIDs, assetID)
	return accounts
}
