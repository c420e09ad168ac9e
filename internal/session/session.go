// Package session provides the signed-in user's identity. LocalProvider keeps
// accounts on disk with bcrypt password hashes and remembers the current
// session between runs.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/julianstephens/habitual/internal/constants"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/validation"
)

var (
	// ErrNotLoggedIn indicates that no user is signed in.
	ErrNotLoggedIn = errors.New("user not logged in")
	// ErrInvalidCredentials indicates that the email or password was incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountExists indicates that the email is already registered.
	ErrAccountExists = errors.New("an account with this email already exists")
)

// Provider exposes the identity of the current user. Email is the tenant key.
type Provider interface {
	CurrentUser() (models.User, error)
}

type accountsFile struct {
	Version  int              `json:"version"`
	Accounts []models.Account `json:"accounts"`
}

// Option configures a LocalProvider
type Option func(*LocalProvider)

// WithSessionStore overrides where the signed-in email is remembered.
func WithSessionStore(store SessionStore) Option {
	return func(p *LocalProvider) { p.sessions = store }
}

// WithBcryptCost sets the hashing cost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(p *LocalProvider) { p.cost = cost }
}

// WithClock overrides the time source for account creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *LocalProvider) { p.now = now }
}

// LocalProvider is a Provider backed by <dataDir>/accounts.json.
type LocalProvider struct {
	accountsPath string
	sessions     SessionStore
	cost         int
	now          func() time.Time
}

var _ Provider = (*LocalProvider)(nil)

func NewLocalProvider(dataDir string, opts ...Option) *LocalProvider {
	p := &LocalProvider{
		accountsPath: filepath.Join(dataDir, constants.AccountsFileName),
		cost:         bcrypt.DefaultCost,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.sessions == nil {
		p.sessions = NewSessionStore(dataDir)
	}
	return p
}

// Register creates an account and signs it in.
func (p *LocalProvider) Register(name, email, password string) (models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if err := validation.ValidateUserName(name); err != nil {
		return models.User{}, err
	}
	if err := validation.ValidateEmail(email); err != nil {
		return models.User{}, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return models.User{}, err
	}

	accounts, err := p.loadAccounts()
	if err != nil {
		return models.User{}, err
	}
	if _, ok := findAccount(accounts, email); ok {
		return models.User{}, ErrAccountExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	account := models.Account{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    p.now(),
	}
	accounts = append(accounts, account)
	if err := p.saveAccounts(accounts); err != nil {
		return models.User{}, err
	}
	if err := p.sessions.Set(email); err != nil {
		return models.User{}, err
	}

	logger.Info("Registered account", "email", email)
	return account.User(), nil
}

// Login checks the password and signs the account in.
func (p *LocalProvider) Login(email, password string) (models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return models.User{}, apperrors.Invalid("credentials", "email and password are required")
	}

	accounts, err := p.loadAccounts()
	if err != nil {
		return models.User{}, err
	}
	idx, ok := findAccount(accounts, email)
	if !ok {
		return models.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(accounts[idx].PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	if err := p.sessions.Set(email); err != nil {
		return models.User{}, err
	}
	logger.Debug("Signed in", "email", email)
	return accounts[idx].User(), nil
}

// Logout forgets the current session. It is not an error if nobody is signed in.
func (p *LocalProvider) Logout() error {
	return p.sessions.Clear()
}

// CurrentUser returns the signed-in user or ErrNotLoggedIn.
func (p *LocalProvider) CurrentUser() (models.User, error) {
	email, err := p.sessions.Get()
	if err != nil {
		return models.User{}, err
	}
	if email == "" {
		return models.User{}, ErrNotLoggedIn
	}

	accounts, err := p.loadAccounts()
	if err != nil {
		return models.User{}, err
	}
	idx, ok := findAccount(accounts, email)
	if !ok {
		logger.Warn("Session refers to an unknown account", "email", email)
		return models.User{}, ErrNotLoggedIn
	}
	return accounts[idx].User(), nil
}

// UpdateProfile changes the current user's display name and, when
// newPassword is set, the password. Changing the password requires the
// current one. The email never changes since it keys the user's habits.
func (p *LocalProvider) UpdateProfile(name, currentPassword, newPassword string) (models.User, error) {
	user, err := p.CurrentUser()
	if err != nil {
		return models.User{}, err
	}

	name = strings.TrimSpace(name)
	if err := validation.ValidateUserName(name); err != nil {
		return models.User{}, err
	}

	accounts, err := p.loadAccounts()
	if err != nil {
		return models.User{}, err
	}
	idx, _ := findAccount(accounts, user.Email)
	account := accounts[idx]
	account.Name = name

	if newPassword != "" {
		if currentPassword == "" {
			return models.User{}, apperrors.Invalid("password", "current password is required to set a new password")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(currentPassword)); err != nil {
			return models.User{}, apperrors.Invalid("password", "current password is incorrect")
		}
		if err := validation.ValidatePassword(newPassword); err != nil {
			return models.User{}, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), p.cost)
		if err != nil {
			return models.User{}, fmt.Errorf("failed to hash password: %w", err)
		}
		account.PasswordHash = string(hash)
	}

	accounts[idx] = account
	if err := p.saveAccounts(accounts); err != nil {
		return models.User{}, err
	}
	return account.User(), nil
}

func findAccount(accounts []models.Account, email string) (int, bool) {
	for i, a := range accounts {
		if a.Email == email {
			return i, true
		}
	}
	return -1, false
}

func (p *LocalProvider) loadAccounts() ([]models.Account, error) {
	data, err := os.ReadFile(p.accountsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Account{}, nil
		}
		return nil, fmt.Errorf("failed to read accounts: %w", err)
	}

	var file accountsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse accounts: %w", err)
	}
	if file.Version != constants.SchemaVersion {
		return nil, fmt.Errorf("%w: accounts file version %d", apperrors.ErrUnsupportedVersion, file.Version)
	}
	return file.Accounts, nil
}

func (p *LocalProvider) saveAccounts(accounts []models.Account) error {
	data, err := json.MarshalIndent(accountsFile{Version: constants.SchemaVersion, Accounts: accounts}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize accounts: %w", err)
	}
	return storage.WriteFileAtomic(p.accountsPath, data, 0600)
}
