package subgraph

import (
	"fmt"
	"strconv"

	"github.com/mtlprog/knownorigin/internal/domain"
)

// SubgraphMetadata is the metadata entity attached to tokens and editions. It may be null.
type SubgraphMetadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// SubgraphToken is a token entity as returned by the subgraph.
type SubgraphToken struct {
	ID           string            `json:"id"`
	Metadata     *SubgraphMetadata `json:"metadata"`
	CurrentOwner *struct {
		ID string `json:"id"`
	} `json:"currentOwner"`
}

// SubgraphEdition is an edition entity. BigInt fields arrive as decimal strings.
type SubgraphEdition struct {
	ID               string            `json:"id"`
	Metadata         *SubgraphMetadata `json:"metadata"`
	ArtistAccount    string            `json:"artistAccount"`
	PriceInWei       string            `json:"priceInWei"`
	CreatedTimestamp string            `json:"createdTimestamp"`
}

type idRecord struct {
	ID string `json:"id"`
}

func (m *SubgraphMetadata) toDomain() domain.Metadata {
	if m == nil {
		return domain.Metadata{}
	}
	return domain.Metadata{Name: m.Name, Description: m.Description, Image: m.Image}
}

func (t SubgraphToken) toFragment() domain.TokenFragment {
	f := domain.TokenFragment{ID: t.ID, Metadata: t.Metadata.toDomain()}
	if t.CurrentOwner != nil {
		f.CurrentOwner = domain.Owner{ID: t.CurrentOwner.ID}
	}
	return f
}

func (e SubgraphEdition) toFragment() (domain.EditionFragment, error) {
	var created int64
	if e.CreatedTimestamp != "" {
		n, err := strconv.ParseInt(e.CreatedTimestamp, 10, 64)
		if err != nil {
			return domain.EditionFragment{}, fmt.Errorf("edition %s: invalid createdTimestamp %q: %w", e.ID, e.CreatedTimestamp, err)
		}
		created = n
	}
	return domain.EditionFragment{
		ID:               e.ID,
		Metadata:         e.Metadata.toDomain(),
		ArtistAccount:    e.ArtistAccount,
		PriceInWei:       e.PriceInWei,
		CreatedTimestamp: created,
	}, nil
}

func pageVars(params domain.Params) map[string]any {
	first := params.First
	if first <= 0 || first > domain.MaxPageSize {
		first = domain.MaxPageSize
	}
	return map[string]any{"first": first, "skip": max(params.Skip, 0)}
}
