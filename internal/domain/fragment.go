package domain

import "fmt"

// FragmentType is the discriminant shared by every raw source record.
type FragmentType string

const (
	FragmentTypeToken   FragmentType = "TOKEN"
	FragmentTypeEdition FragmentType = "EDITION"
)

// ParseFragmentType validates a discriminant read from an external payload.
func ParseFragmentType(s string) (FragmentType, error) {
	switch t := FragmentType(s); t {
	case FragmentTypeToken, FragmentTypeEdition:
		return t, nil
	default:
		return "", &UnrecognizedShapeError{Type: s}
	}
}

// Metadata is the descriptive block both shapes carry.
type Metadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// Fragment is a single raw record from the data source, before normalization.
// The interface is sealed: TokenFragment and EditionFragment are its only implementations.
type Fragment interface {
	Type() FragmentType
	FragmentID() string
	FragmentMetadata() Metadata
	sealed()
}

// Owner identifies the current holder of a token.
type Owner struct {
	ID string `json:"id"`
}

// TokenFragment is a singly-owned token record.
type TokenFragment struct {
	ID           string   `json:"id"`
	Metadata     Metadata `json:"metadata"`
	CurrentOwner Owner    `json:"currentOwner"`
}

func (TokenFragment) Type() FragmentType           { return FragmentTypeToken }
func (f TokenFragment) FragmentID() string         { return f.ID }
func (f TokenFragment) FragmentMetadata() Metadata { return f.Metadata }
func (TokenFragment) sealed()                      {}

// EditionFragment is a limited-run record sold directly from the artist account.
// PriceInWei is an integer string in the native currency's smallest unit;
// CreatedTimestamp is unix seconds.
type EditionFragment struct {
	ID               string   `json:"id"`
	Metadata         Metadata `json:"metadata"`
	ArtistAccount    string   `json:"artistAccount"`
	PriceInWei       string   `json:"priceInWei"`
	CreatedTimestamp int64    `json:"createdTimestamp"`
}

func (EditionFragment) Type() FragmentType           { return FragmentTypeEdition }
func (f EditionFragment) FragmentID() string         { return f.ID }
func (f EditionFragment) FragmentMetadata() Metadata { return f.Metadata }
func (EditionFragment) sealed()                      {}

// FragmentOwner returns the owner address for either shape.
func FragmentOwner(f Fragment) (string, error) {
	switch v := f.(type) {
	case TokenFragment:
		return v.CurrentOwner.ID, nil
	case EditionFragment:
		return v.ArtistAccount, nil
	default:
		return "", newUnrecognizedShape(f)
	}
}

func newUnrecognizedShape(f Fragment) *UnrecognizedShapeError {
	if f == nil {
		return &UnrecognizedShapeError{Type: "<nil>"}
	}
	return &UnrecognizedShapeError{Type: fmt.Sprintf("%T", f)}
}

// MaxPageSize is the largest page the data source serves in one query.
const MaxPageSize = 1000

// Params holds source pagination.
type Params struct {
	First int `json:"first"`
	Skip  int `json:"skip"`
}

// CountParams returns params suitable for counting: the whole first page, no offset.
func (p Params) CountParams() Params {
	return Params{First: MaxPageSize, Skip: 0}
}

// Filters narrows which source a query reads. A nil *Filters means no filter.
type Filters struct {
	IsToken bool `json:"isToken"`
}

// SelectedType returns the shape a (possibly nil) filter set reads from.
// Editions are the default.
func (f *Filters) SelectedType() FragmentType {
	if f != nil && f.IsToken {
		return FragmentTypeToken
	}
	return FragmentTypeEdition
}
