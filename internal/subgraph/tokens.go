package subgraph

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/mtlprog/knownorigin/internal/domain"
)

const tokenFields = `id metadata { name description image } currentOwner { id }`

const (
	tokensQuery    = `query Tokens($first: Int!, $skip: Int!) { tokens(first: $first, skip: $skip, orderBy: id) { ` + tokenFields + ` } }`
	tokenIDsQuery  = `query TokenIDs($first: Int!, $skip: Int!) { tokens(first: $first, skip: $skip) { id } }`
	tokenByIDQuery = `query Token($id: ID!) { token(id: $id) { ` + tokenFields + ` } }`
)

// TokenSource serves TOKEN fragments.
type TokenSource struct {
	client *Client
}

// NewTokenSource creates a TokenSource.
func NewTokenSource(client *Client) *TokenSource {
	return &TokenSource{client: client}
}

func (s *TokenSource) Fetch(ctx context.Context, params domain.Params) ([]domain.Fragment, error) {
	var resp struct {
		Tokens []SubgraphToken `json:"tokens"`
	}
	if err := s.client.query(ctx, tokensQuery, pageVars(params), &resp); err != nil {
		return nil, fmt.Errorf("fetching tokens: %w", err)
	}
	return lo.Map(resp.Tokens, func(t SubgraphToken, _ int) domain.Fragment {
		return t.toFragment()
	}), nil
}

func (s *TokenSource) Count(ctx context.Context, params domain.Params) (int, error) {
	var resp struct {
		Tokens []idRecord `json:"tokens"`
	}
	if err := s.client.query(ctx, tokenIDsQuery, pageVars(params), &resp); err != nil {
		return 0, fmt.Errorf("counting tokens: %w", err)
	}
	return len(resp.Tokens), nil
}

func (s *TokenSource) FetchOne(ctx context.Context, id string) (domain.Fragment, error) {
	var resp struct {
		Token *SubgraphToken `json:"token"`
	}
	if err := s.client.query(ctx, tokenByIDQuery, map[string]any{"id": id}, &resp); err != nil {
		return nil, fmt.Errorf("fetching token %s: %w", id, err)
	}
	if resp.Token == nil {
		return nil, nil
	}
	return resp.Token.toFragment(), nil
}
