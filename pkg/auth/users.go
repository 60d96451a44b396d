package auth

import (
	"strings"
	"sync"
	"time"

	"cheatsheets/pkg/errors"
	"cheatsheets/pkg/models"
	"cheatsheets/pkg/storage"
	"cheatsheets/pkg/utils"
)

// UsersKey is the durable slot holding every account
const UsersKey = "users"

// Account is a user plus the bcrypt hash of their password
type Account struct {
	User         models.User `json:"user"`
	PasswordHash string      `json:"passwordHash"`
}

// Directory keeps accounts keyed by normalized email in the durable store
type Directory struct {
	mutex    sync.Mutex
	accounts storage.Slot[map[string]Account]
}

func NewDirectory(store *storage.Store) *Directory {
	return &Directory{accounts: storage.NewSlot(store, UsersKey, map[string]Account{})}
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// Register creates an account. The email must not be registered yet.
func (d *Directory) Register(email, name, password string) (models.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return models.User{}, errors.Wrap(err, errors.ErrTypeApp, "HASH_FAILED", "failed to hash password")
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	email = normalizeEmail(email)
	accounts := d.load()
	if _, taken := accounts[email]; taken {
		return models.User{}, errors.ErrEmailTaken.WithContext("email", email)
	}

	user := models.User{
		ID:        utils.NewID(),
		Email:     email,
		Name:      strings.TrimSpace(name),
		CreatedAt: time.Now().UTC(),
	}
	accounts[email] = Account{User: user, PasswordHash: hash}
	d.accounts.Set(accounts)
	return user, nil
}

// Authenticate checks a password against the stored hash
func (d *Directory) Authenticate(email, password string) (models.User, error) {
	d.mutex.Lock()
	account, ok := d.load()[normalizeEmail(email)]
	d.mutex.Unlock()

	if !ok || !ComparePassword(account.PasswordHash, password) {
		return models.User{}, errors.ErrInvalidCredentials
	}
	return account.User, nil
}

// Get finds a user by id
func (d *Directory) Get(id string) (models.User, bool) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	for _, account := range d.load() {
		if account.User.ID == id {
			return account.User, true
		}
	}
	return models.User{}, false
}

func (d *Directory) load() map[string]Account {
	accounts := d.accounts.Get()
	if accounts == nil {
		accounts = map[string]Account{}
	}
	return accounts
}
