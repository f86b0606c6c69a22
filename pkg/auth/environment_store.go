package auth

import (
	"os"
	"time"
)

const (
	// EnvSecurity holds a .ROBLOSECURITY value for unattended runs
	EnvSecurity  = "RBLXLOCATE_SECURITY"
	EnvUserAgent = "RBLXLOCATE_USER_AGENT"

	envAccountName = "env"
)

// EnvironmentStore implements CredentialStore using environment variables.
// It is read-only.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve returns the environment account. An empty name or "env" matches it.
func (e *EnvironmentStore) Retrieve(name string) (*Account, error) {
	token := NormalizeToken(os.Getenv(EnvSecurity))
	if token == "" {
		return nil, ErrCredentialsNotFound
	}
	if name != "" && name != envAccountName {
		return nil, ErrCredentialsNotFound
	}

	return &Account{
		Name:          envAccountName,
		SecurityToken: token,
		UserAgent:     os.Getenv(EnvUserAgent),
		LastModified:  time.Now(),
	}, nil
}

// List returns a single account if the environment carries a token
func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist
func (e *EnvironmentStore) Exists(name string) bool {
	_, err := e.Retrieve(name)
	return err == nil
}
