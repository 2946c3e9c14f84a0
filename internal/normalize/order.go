package normalize

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/knownorigin/internal/domain"
	"github.com/mtlprog/knownorigin/internal/price"
)

// DeriveOrder builds the open sale order for an edition. The marketplace fee is applied to
// the wei amount first; the total is then converted at oneUnitInReference, the value of one
// native unit in the reference currency.
func DeriveOrder(scope Scope, fee price.FeePolicy, edition domain.EditionFragment, oneUnitInReference string) (domain.Order, error) {
	wei, err := domain.ParseWei(edition.PriceInWei)
	if err != nil {
		return domain.Order{}, fmt.Errorf("edition %s: %w", edition.ID, err)
	}

	rate, err := decimal.NewFromString(oneUnitInReference)
	if err != nil {
		return domain.Order{}, fmt.Errorf("parsing rate %q: %w", oneUnitInReference, err)
	}

	total := fee.ApplyFee(wei)

	return domain.Order{
		ID:                 domain.OrderID(scope.Vendor, edition.ID),
		MarketplaceAddress: scope.MarketplaceAddress,
		ContractAddress:    scope.ContractAddress,
		TokenID:            edition.ID,
		Owner:              edition.ArtistAccount,
		Buyer:              domain.ZeroAddress,
		Price:              domain.FormatAmount(domain.ConvertWei(total, rate)),
		NativePrice:        wei.String(),
		Status:             domain.OrderStatusOpen,
		ExpiresAt:          domain.NoExpiry,
		CreatedAt:          edition.CreatedTimestamp,
		UpdatedAt:          edition.CreatedTimestamp,
		Vendor:             scope.Vendor,
		ChainID:            scope.ChainID,
		Network:            scope.Network,
	}, nil
}
