package domain

// Identity is a connected wallet. Operations that need one take *Identity; nil means no
// wallet is connected.
type Identity struct {
	Address string `json:"address"`
}
