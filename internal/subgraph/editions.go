package subgraph

import (
	"context"
	"fmt"

	"github.com/mtlprog/knownorigin/internal/domain"
)

const editionFields = `id metadata { name description image } artistAccount priceInWei createdTimestamp`

// Only editions still on sale are listed.
const activeEditions = `where: { active: true, remainingSupply_gt: 0 }`

const (
	editionsQuery    = `query Editions($first: Int!, $skip: Int!) { editions(first: $first, skip: $skip, orderBy: createdTimestamp, orderDirection: desc, ` + activeEditions + `) { ` + editionFields + ` } }`
	editionIDsQuery  = `query EditionIDs($first: Int!, $skip: Int!) { editions(first: $first, skip: $skip, ` + activeEditions + `) { id } }`
	editionByIDQuery = `query Edition($id: ID!) { edition(id: $id) { ` + editionFields + ` } }`
)

// EditionSource serves EDITION fragments.
type EditionSource struct {
	client *Client
}

// NewEditionSource creates an EditionSource.
func NewEditionSource(client *Client) *EditionSource {
	return &EditionSource{client: client}
}

func (s *EditionSource) Fetch(ctx context.Context, params domain.Params) ([]domain.Fragment, error) {
	var resp struct {
		Editions []SubgraphEdition `json:"editions"`
	}
	if err := s.client.query(ctx, editionsQuery, pageVars(params), &resp); err != nil {
		return nil, fmt.Errorf("fetching editions: %w", err)
	}

	fragments := make([]domain.Fragment, 0, len(resp.Editions))
	for _, e := range resp.Editions {
		f, err := e.toFragment()
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, f)
	}
	return fragments, nil
}

func (s *EditionSource) Count(ctx context.Context, params domain.Params) (int, error) {
	var resp struct {
		Editions []idRecord `json:"editions"`
	}
	if err := s.client.query(ctx, editionIDsQuery, pageVars(params), &resp); err != nil {
		return 0, fmt.Errorf("counting editions: %w", err)
	}
	return len(resp.Editions), nil
}

func (s *EditionSource) FetchOne(ctx context.Context, id string) (domain.Fragment, error) {
	var resp struct {
		Edition *SubgraphEdition `json:"edition"`
	}
	if err := s.client.query(ctx, editionByIDQuery, map[string]any{"id": id}, &resp); err != nil {
		return nil, fmt.Errorf("fetching edition %s: %w", id, err)
	}
	if resp.Edition == nil {
		return nil, nil
	}
	f, err := resp.Edition.toFragment()
	if err != nil {
		return nil, err
	}
	return f, nil
}
