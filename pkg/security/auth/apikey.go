package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrInvalidKey is returned for a key that is not configured.
	ErrInvalidKey = errors.New("invalid API key")
	// ErrKeyDisabled is returned for a configured but disabled key.
	ErrKeyDisabled = errors.New("API key disabled")
)

// KeyValidator checks presented keys against a fixed set.
type KeyValidator struct {
	mu   sync.RWMutex
	keys []*KeyInfo
}

// NewKeyValidator creates a validator for keys. Keys with an empty value are
// skipped.
func NewKeyValidator(keys []*KeyInfo) *KeyValidator {
	v := &KeyValidator{}
	for _, k := range keys {
		v.Add(k)
	}
	return v
}

// KeysFromConfig turns configured key values into enabled keys named
// key-1, key-2 and so on.
func KeysFromConfig(values []string) []*KeyInfo {
	keys := make([]*KeyInfo, 0, len(values))
	for i, val := range values {
		keys = append(keys, &KeyInfo{Name: fmt.Sprintf("key-%d", i+1), Key: val, Enabled: true})
	}
	return keys
}

// Validate returns the info of the key matching key. Every configured key is
// compared in constant time.
func (v *KeyValidator) Validate(key string) (*KeyInfo, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	var match *KeyInfo
	for _, k := range v.keys {
		if subtle.ConstantTimeCompare([]byte(k.Key), []byte(key)) == 1 {
			match = k
		}
	}
	if match == nil {
		return nil, ErrInvalidKey
	}
	if !match.Enabled {
		return nil, ErrKeyDisabled
	}
	return match, nil
}

// Add adds a key, replacing any key with the same value.
func (v *KeyValidator) Add(info *KeyInfo) {
	if info == nil || info.Key == "" {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, k := range v.keys {
		if k.Key == info.Key {
			v.keys[i] = info
			return
		}
	}
	v.keys = append(v.keys, info)
}

// Remove deletes the key with the given value.
func (v *KeyValidator) Remove(key string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, k := range v.keys {
		if k.Key == key {
			v.keys = append(v.keys[:i], v.keys[i+1:]...)
			return
		}
	}
}

// Len returns the number of configured keys.
func (v *KeyValidator) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.keys)
}
