package auth

// KeyInfo is a configured API key.
type KeyInfo struct {
	// Name identifies the key in logs. The key value is never logged.
	Name    string
	Key     string
	Enabled bool
}

// KeyStore validates presented keys.
type KeyStore interface {
	Validate(key string) (*KeyInfo, error)
}
