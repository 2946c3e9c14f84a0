package chain

import (
	"context"
	"errors"
	"sync"

	"github.com/mtlprog/knownorigin/internal/transfer"
)

// ErrNoSession is returned when no signer is connected.
var ErrNoSession = errors.New("no active wallet session")

// SessionProvider holds the signer of the currently connected wallet.
type SessionProvider struct {
	mu     sync.RWMutex
	signer transfer.Signer
}

// NewSessionProvider creates a provider with no connected signer.
func NewSessionProvider() *SessionProvider {
	return &SessionProvider{}
}

// Connect binds signer to the session, replacing any previous one.
func (p *SessionProvider) Connect(signer transfer.Signer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signer = signer
}

// Disconnect clears the session.
func (p *SessionProvider) Disconnect() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signer = nil
}

func (p *SessionProvider) CurrentSigner(ctx context.Context) (transfer.Signer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.signer == nil {
		return nil, ErrNoSession
	}
	return p.signer, nil
}
