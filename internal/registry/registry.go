package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mtlprog/knownorigin/internal/domain"
)

// Role names a contract a component needs to talk to.
type Role string

const (
	RoleDigitalAsset       Role = "digital-asset"
	RoleMarketplaceAdapter Role = "marketplace-adapter"
)

// DefaultKnownOriginOrigin is the public site assets link to.
const DefaultKnownOriginOrigin = "https://knownorigin.io"

// ErrUnknownRole is returned when no address is registered for a role.
var ErrUnknownRole = errors.New("no contract registered for role")

// ErrUnknownVendor is returned when no origin is registered for a vendor.
var ErrUnknownVendor = errors.New("no origin registered for vendor")

// Registry resolves contract addresses by role.
type Registry interface {
	ResolveAddress(role Role) (string, error)
}

// OriginResolver resolves the public base URL of a vendor.
type OriginResolver interface {
	ResolveOrigin(vendor domain.Vendor) (string, error)
}

// StaticRegistry is a fixed role → address table for one network.
type StaticRegistry struct {
	network   domain.Network
	addresses map[Role]string
}

// NewStaticRegistry creates a registry for network. Roles with empty addresses are left unregistered.
func NewStaticRegistry(network domain.Network, addresses map[Role]string) *StaticRegistry {
	table := make(map[Role]string, len(addresses))
	for role, addr := range addresses {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		table[role] = strings.ToLower(addr)
	}
	return &StaticRegistry{network: network, addresses: table}
}

// Network returns the network the registry serves.
func (r *StaticRegistry) Network() domain.Network {
	return r.network
}

func (r *StaticRegistry) ResolveAddress(role Role) (string, error) {
	addr, ok := r.addresses[role]
	if !ok {
		return "", fmt.Errorf("%w: %s on %s", ErrUnknownRole, role, r.network)
	}
	return addr, nil
}

// StaticOrigins maps vendors to their public origin.
type StaticOrigins map[domain.Vendor]string

// NewStaticOrigins registers the KnownOrigin origin; an empty value falls back to the public site.
func NewStaticOrigins(knownOrigin string) StaticOrigins {
	if knownOrigin == "" {
		knownOrigin = DefaultKnownOriginOrigin
	}
	return StaticOrigins{domain.VendorKnownOrigin: strings.TrimRight(knownOrigin, "/")}
}

func (o StaticOrigins) ResolveOrigin(vendor domain.Vendor) (string, error) {
	origin, ok := o[vendor]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownVendor, vendor)
	}
	return origin, nil
}
