package domain

import (
	"errors"
	"testing"
)

func TestAssetID(t *testing.T) {
	got := AssetID("0xfbeef911dc5821886e1dda71586d90ed28174b7d", "7")
	if got != "0xfbeef911dc5821886e1dda71586d90ed28174b7d-7" {
		t.Errorf("AssetID() = %q", got)
	}
}

func TestOrderID(t *testing.T) {
	if got := OrderID(VendorKnownOrigin, "7"); got != "KNOWN_ORIGIN-order-7" {
		t.Errorf("OrderID() = %q, want KNOWN_ORIGIN-order-7", got)
	}
}

func TestParseFragmentType(t *testing.T) {
	tests := []struct {
		input   string
		want    FragmentType
		wantErr bool
	}{
		{"TOKEN", FragmentTypeToken, false},
		{"EDITION", FragmentTypeEdition, false},
		{"token", "", true},
		{"AUCTION", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFragmentType(tt.input)
			if tt.wantErr {
				var shapeErr *UnrecognizedShapeError
				if !errors.As(err, &shapeErr) {
					t.Fatalf("ParseFragmentType(%q) error = %v, want UnrecognizedShapeError", tt.input, err)
				}
				if shapeErr.Type != tt.input {
					t.Errorf("shapeErr.Type = %q, want %q", shapeErr.Type, tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseFragmentType(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFragmentOwner(t *testing.T) {
	token := TokenFragment{ID: "1", CurrentOwner: Owner{ID: "0xowner"}}
	edition := EditionFragment{ID: "2", ArtistAccount: "0xartist"}

	if got, err := FragmentOwner(token); err != nil || got != "0xowner" {
		t.Errorf("FragmentOwner(token) = %q, %v", got, err)
	}
	if got, err := FragmentOwner(edition); err != nil || got != "0xartist" {
		t.Errorf("FragmentOwner(edition) = %q, %v", got, err)
	}

	_, err := FragmentOwner(nil)
	var shapeErr *UnrecognizedShapeError
	if !errors.As(err, &shapeErr) {
		t.Errorf("FragmentOwner(nil) error = %v, want UnrecognizedShapeError", err)
	}
}

func TestFiltersSelectedType(t *testing.T) {
	var none *Filters
	if got := none.SelectedType(); got != FragmentTypeEdition {
		t.Errorf("nil filters select %q, want EDITION", got)
	}
	if got := (&Filters{}).SelectedType(); got != FragmentTypeEdition {
		t.Errorf("empty filters select %q, want EDITION", got)
	}
	if got := (&Filters{IsToken: true}).SelectedType(); got != FragmentTypeToken {
		t.Errorf("isToken filters select %q, want TOKEN", got)
	}
}

func TestCountParams(t *testing.T) {
	got := Params{First: 24, Skip: 48}.CountParams()
	if got.First != MaxPageSize || got.Skip != 0 {
		t.Errorf("CountParams() = %+v, want first=%d skip=0", got, MaxPageSize)
	}
}

func TestErrUnauthenticatedIsPrecondition(t *testing.T) {
	if !IsPrecondition(ErrUnauthenticated) {
		t.Error("ErrUnauthenticated should be a PreconditionError")
	}
	if IsPrecondition(errors.New("other")) {
		t.Error("plain error should not be a PreconditionError")
	}
}
