package host

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// DefaultNonceLifetime is how long a nonce verifies after it was issued.
const DefaultNonceLifetime = 24 * time.Hour

// Nonces issues and verifies action-bound form tokens. A token is valid for
// the half-lifetime tick it was issued in and the one after.
type Nonces struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// NewNonces returns a nonce issuer keyed by secret. An empty secret is
// replaced with random bytes, so tokens do not survive a restart.
func NewNonces(secret []byte, lifetime time.Duration) *Nonces {
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			panic(fmt.Sprintf("host: nonce secret: %v", err))
		}
	}
	if lifetime <= 0 {
		lifetime = DefaultNonceLifetime
	}
	return &Nonces{
		secret:   append([]byte(nil), secret...),
		lifetime: lifetime,
		now:      time.Now,
	}
}

func (n *Nonces) tick() int64 {
	half := int64(n.lifetime / 2)
	if half <= 0 {
		half = 1
	}
	return n.now().UnixNano() / half
}

func (n *Nonces) sign(action string, tick int64) string {
	mac := hmac.New(sha256.New, n.secret)
	mac.Write([]byte(action))
	mac.Write([]byte{0})
	mac.Write([]byte(strconv.FormatInt(tick, 10)))
	return hex.EncodeToString(mac.Sum(nil)[:10])
}

// Create issues a nonce for action.
func (n *Nonces) Create(action string) string {
	return n.sign(action, n.tick())
}

// Verify checks nonce against action. It returns ErrInvalidNonce when the
// token is empty, forged or expired.
func (n *Nonces) Verify(action, nonce string) error {
	if nonce == "" {
		return ErrInvalidNonce
	}
	tick := n.tick()
	for _, candidate := range []int64{tick, tick - 1} {
		if hmac.Equal([]byte(n.sign(action, candidate)), []byte(nonce)) {
			return nil
		}
	}
	return ErrInvalidNonce
}

// NonceAction is the action a settings form nonce is bound to.
func NonceAction(group string) string {
	return group + "-options"
}
