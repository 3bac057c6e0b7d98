// Package vapid manages the server identity keypair for web push.
// VAPID requires a real ECDSA P-256 keypair; key material is persisted
// in the settings store, base64url-encoded without padding, ready to
// hand to browser clients.
package vapid

import (
	"fmt"

	webpush "github.com/SherClockHolmes/webpush-go"

	"pushpress/internal/db"
)

// Keys holds one VAPID keypair. The public half is shipped to every
// client; the private half signs outgoing push requests.
type Keys struct {
	Public  string
	Private string
}

// Configured reports whether both halves are present.
func (k Keys) Configured() bool {
	return k.Public != "" && k.Private != ""
}

// Manager loads and persists the site-wide VAPID keypair.
type Manager struct {
	store db.Store
}

func NewManager(store db.Store) *Manager {
	return &Manager{store: store}
}

// Keys returns the stored keypair, which may be unconfigured.
func (m *Manager) Keys() (Keys, error) {
	pub, err := m.store.GetSetting(db.SettingVAPIDPublicKey)
	if err != nil {
		return Keys{}, err
	}
	priv, err := m.store.GetSetting(db.SettingVAPIDPrivateKey)
	if err != nil {
		return Keys{}, err
	}
	return Keys{Public: pub, Private: priv}, nil
}

// EnsureKeys generates and persists a new P-256 keypair only when none
// is stored; otherwise the existing pair is returned unchanged.
func (m *Manager) EnsureKeys() (Keys, error) {
	keys, err := m.Keys()
	if err != nil {
		return Keys{}, err
	}
	if keys.Configured() {
		return keys, nil
	}
	return m.Regenerate()
}

// Regenerate unconditionally replaces the stored keypair. This is an
// explicit administrative action: every existing subscription was
// created against the old public key, so subscribers stop receiving
// pushes until they re-subscribe. Callers must surface that warning.
func (m *Manager) Regenerate() (Keys, error) {
	priv, pub, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		return Keys{}, fmt.Errorf("generate vapid keys: %w", err)
	}
	if err := m.store.SetSetting(db.SettingVAPIDPublicKey, pub); err != nil {
		return Keys{}, err
	}
	if err := m.store.SetSetting(db.SettingVAPIDPrivateKey, priv); err != nil {
		return Keys{}, err
	}
	return Keys{Public: pub, Private: priv}, nil
}
