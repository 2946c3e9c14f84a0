package registry

import (
	"errors"
	"testing"

	"github.com/mtlprog/knownorigin/internal/domain"
)

func TestStaticRegistryResolve(t *testing.T) {
	r := NewStaticRegistry(domain.NetworkEthereum, map[Role]string{
		RoleDigitalAsset:       " 0xFBEEF911Dc5821886e1dda71586d90eD28174B7d ",
		RoleMarketplaceAdapter: "",
	})

	addr, err := r.ResolveAddress(RoleDigitalAsset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr != "0xfbeef911dc5821886e1dda71586d90ed28174b7d" {
		t.Errorf("address = %q, want lowercased and trimmed", addr)
	}

	_, err = r.ResolveAddress(RoleMarketplaceAdapter)
	if !errors.Is(err, ErrUnknownRole) {
		t.Errorf("empty role error = %v, want ErrUnknownRole", err)
	}
}

func TestStaticOrigins(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"default", "", DefaultKnownOriginOrigin},
		{"trailing slash trimmed", "https://staging.knownorigin.io/", "https://staging.knownorigin.io"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewStaticOrigins(tt.input).ResolveOrigin(domain.VendorKnownOrigin)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("origin = %q, want %q", got, tt.want)
			}
		})
	}

	_, err := NewStaticOrigins("").ResolveOrigin(domain.Vendor("OPENSEA"))
	if !errors.Is(err, ErrUnknownVendor) {
		t.Errorf("unknown vendor error = %v, want ErrUnknownVendor", err)
	}
}
