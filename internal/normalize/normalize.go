// Package normalize maps raw subgraph fragments into canonical assets and sale orders.
package normalize

import (
	"fmt"
	"strings"

	"github.com/mtlprog/knownorigin/internal/domain"
	"github.com/mtlprog/knownorigin/internal/registry"
)

// Scope is everything a batch of fragments shares. It is resolved once per call and
// discarded afterwards, so registry changes are picked up by the next call.
type Scope struct {
	ContractAddress    string
	MarketplaceAddress string
	Origin             string
	Vendor             domain.Vendor
	ChainID            domain.ChainID
	Network            domain.Network
}

// Chain identifies the chain a scope is resolved for.
type Chain struct {
	ID      domain.ChainID
	Network domain.Network
}

// ResolveScope reads the digital-asset contract and the vendor origin. The marketplace
// address is only resolved when withMarketplace is set, since token-only reads never need it.
func ResolveScope(reg registry.Registry, origins registry.OriginResolver, chain Chain, withMarketplace bool) (Scope, error) {
	contract, err := reg.ResolveAddress(registry.RoleDigitalAsset)
	if err != nil {
		return Scope{}, fmt.Errorf("resolving digital asset contract: %w", err)
	}

	origin, err := origins.ResolveOrigin(domain.VendorKnownOrigin)
	if err != nil {
		return Scope{}, fmt.Errorf("resolving origin: %w", err)
	}

	scope := Scope{
		ContractAddress: contract,
		Origin:          origin,
		Vendor:          domain.VendorKnownOrigin,
		ChainID:         chain.ID,
		Network:         chain.Network,
	}

	if withMarketplace {
		scope.MarketplaceAddress, err = reg.ResolveAddress(registry.RoleMarketplaceAdapter)
		if err != nil {
			return Scope{}, fmt.Errorf("resolving marketplace adapter: %w", err)
		}
	}

	return scope, nil
}

// Normalize maps fragment to an Asset. ActiveOrderID is left empty; callers that derive
// an order set it.
func Normalize(scope Scope, fragment domain.Fragment) (domain.Asset, error) {
	owner, err := domain.FragmentOwner(fragment)
	if err != nil {
		return domain.Asset{}, err
	}

	meta := fragment.FragmentMetadata()
	tokenID := fragment.FragmentID()

	return domain.Asset{
		ID:              domain.AssetID(scope.ContractAddress, tokenID),
		TokenID:         tokenID,
		ContractAddress: scope.ContractAddress,
		Owner:           owner,
		Name:            meta.Name,
		Image:           meta.Image,
		URL:             AssetURL(scope.Origin, fragment.Type(), tokenID),
		Data: domain.AssetData{
			Description: meta.Description,
			IsEdition:   true,
		},
		Category: domain.CategoryArt,
		Vendor:   scope.Vendor,
		ChainID:  scope.ChainID,
		Network:  scope.Network,
	}, nil
}

// AssetURL builds "<origin>/<lowercase type>/<id>".
func AssetURL(origin string, t domain.FragmentType, id string) string {
	return fmt.Sprintf("%s/%s/%s", origin, strings.ToLower(string(t)), id)
}
