package session

import (
	"sync"

	"cheatsheets/pkg/models"
	"cheatsheets/pkg/storage"
)

// Durable slot keys for the signed-in session
const (
	TokenKey   = "auth-token"
	ProfileKey = "auth-user"
)

// Vault holds the bearer token and the signed-in profile and mirrors both
// to the durable store. It implements remote.TokenSource.
type Vault struct {
	mutex   sync.RWMutex
	token   string
	user    *models.User
	tokens  storage.Slot[string]
	profile storage.Slot[*models.User]
}

// NewVault loads any token and profile saved by an earlier run
func NewVault(store *storage.Store) *Vault {
	v := &Vault{
		tokens:  storage.NewSlot(store, TokenKey, ""),
		profile: storage.NewSlot(store, ProfileKey, (*models.User)(nil)),
	}
	v.token = v.tokens.Get()
	if v.token != "" {
		v.user = v.profile.Get()
	}
	return v
}

// Token returns the bearer token, or "" when signed out
func (v *Vault) Token() string {
	v.mutex.RLock()
	defer v.mutex.RUnlock()
	return v.token
}

// User returns a copy of the saved profile
func (v *Vault) User() (models.User, bool) {
	v.mutex.RLock()
	defer v.mutex.RUnlock()
	if v.user == nil {
		return models.User{}, false
	}
	return *v.user, true
}

// Save stores a fresh token together with its user
func (v *Vault) Save(token string, user models.User) {
	v.mutex.Lock()
	v.token = token
	v.user = &user
	v.mutex.Unlock()

	v.tokens.Set(token)
	v.profile.Set(&user)
}

// SetUser replaces the profile and keeps the token
func (v *Vault) SetUser(user models.User) {
	v.mutex.Lock()
	v.user = &user
	v.mutex.Unlock()

	v.profile.Set(&user)
}

// Clear forgets the token and the profile
func (v *Vault) Clear() {
	v.mutex.Lock()
	v.token = ""
	v.user = nil
	v.mutex.Unlock()

	v.tokens.Remove()
	v.profile.Remove()
}
