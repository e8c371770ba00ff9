package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/photoshare-api/internal/logger"
	"github.com/iliyamo/photoshare-api/internal/model"
	"github.com/iliyamo/photoshare-api/internal/repository"
	"github.com/iliyamo/photoshare-api/internal/utils"
)

// UserStore is the persistence the authenticator needs.  FindByEmail
// reports a missing user with repository.ErrUserNotFound and Create
// reports a duplicate with repository.ErrUserExists.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (model.User, error)
	Create(ctx context.Context, u *model.User) error
	// CreateFirstAdmin inserts u as admin only if no user exists yet and
	// reports whether it did.
	CreateFirstAdmin(ctx context.Context, u *model.User) (bool, error)
	Save(ctx context.Context, u *model.User) error
	ListAll(ctx context.Context) ([]model.User, error)
}

// AuthPolicy holds token lifetimes and the login confirmation rule.
type AuthPolicy struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	EmailTTL   time.Duration
	// RequireConfirmedLogin rejects logins of users who have not
	// confirmed their email address yet.
	RequireConfirmedLogin bool
}

// DefaultAuthPolicy returns 15 minute access tokens, 7 day refresh
// tokens, 1 day confirmation tokens and requires confirmation at login.
func DefaultAuthPolicy() AuthPolicy {
	return AuthPolicy{
		AccessTTL:             utils.DefaultAccessTTL,
		RefreshTTL:            utils.DefaultRefreshTTL,
		EmailTTL:              utils.DefaultEmailTTL,
		RequireConfirmedLogin: true,
	}
}

// TokenPair is what login and refresh hand back to the client.
type TokenPair struct {
	Access  utils.Token
	Refresh utils.Token
}

// Authenticator turns credentials and bearer tokens into users.  It is
// safe for concurrent use.
type Authenticator struct {
	users  UserStore
	codec  *utils.TokenCodec
	hasher utils.Hasher
	cache  SessionCache
	policy AuthPolicy

	// mu serialises signups so that only one of several concurrent
	// first signups is promoted to admin.
	mu           sync.Mutex
	adminPending bool
}

// NewAuthenticator wires the authenticator.  A nil cache disables caching.
func NewAuthenticator(users UserStore, codec *utils.TokenCodec, hasher utils.Hasher, cache SessionCache, policy AuthPolicy) *Authenticator {
	if cache == nil {
		cache = NoopSessionCache{}
	}
	def := DefaultAuthPolicy()
	if policy.AccessTTL <= 0 {
		policy.AccessTTL = def.AccessTTL
	}
	if policy.RefreshTTL <= 0 {
		policy.RefreshTTL = def.RefreshTTL
	}
	if policy.EmailTTL <= 0 {
		policy.EmailTTL = def.EmailTTL
	}
	return &Authenticator{users: users, codec: codec, hasher: hasher, cache: cache, policy: policy}
}

// Bootstrap arms the first-admin rule: when the store holds no users,
// the next identity created by Signup becomes admin.  It runs once at
// start-up; later calls re-evaluate against the current store.
func (a *Authenticator) Bootstrap(ctx context.Context) error {
	all, err := a.users.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap: list users: %w", err)
	}
	a.mu.Lock()
	a.adminPending = len(all) == 0
	a.mu.Unlock()
	if len(all) == 0 {
		logger.Log.Info("no users yet, next signup becomes admin")
	}
	return nil
}

// Signup creates an unconfirmed user with the default role, or admin
// when the bootstrap rule is armed.
func (a *Authenticator) Signup(ctx context.Context, username, email, password string) (model.User, error) {
	digest, err := a.hasher.Hash(password)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := model.User{
		Username:     strings.TrimSpace(username),
		Email:        strings.TrimSpace(email),
		PasswordHash: digest,
		Role:         model.RoleUser,
		IsActive:     true,
	}
	u.Avatar = GravatarURL(u.Email)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.adminPending {
		// The store only promotes when the table is still empty, so other
		// API instances racing on their own flag cannot add a second admin.
		first, err := a.users.CreateFirstAdmin(ctx, &u)
		if err != nil {
			if errors.Is(err, repository.ErrUserExists) {
				return model.User{}, ErrConflict
			}
			return model.User{}, err
		}
		a.adminPending = false
		if first {
			logger.Log.Info("bootstrap admin created", "user_id", u.ID)
			return u, nil
		}
	}
	if err := a.users.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return model.User{}, ErrConflict
		}
		return model.User{}, err
	}
	return u, nil
}

// Login checks the credentials and issues a token pair.  The refresh
// token is stored on the user so that only the latest one is accepted.
func (a *Authenticator) Login(ctx context.Context, email, password string) (TokenPair, error) {
	u, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, err
	}
	if !a.hasher.Verify(password, u.PasswordHash) {
		return TokenPair{}, ErrInvalidCredentials
	}
	if a.policy.RequireConfirmedLogin && !u.Confirmed {
		return TokenPair{}, ErrInvalidCredentials
	}
	return a.issuePair(ctx, &u)
}

// Refresh exchanges a refresh token for a new pair.  A well-formed token
// that is not the one currently stored on the user is stale.
func (a *Authenticator) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	email, err := a.codec.Verify(refreshToken, utils.PurposeRefresh)
	if err != nil {
		return TokenPair{}, ErrInvalidToken
	}
	u, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return TokenPair{}, ErrInvalidToken
		}
		return TokenPair{}, err
	}
	if u.RefreshToken != refreshToken {
		logger.Log.Warn("stale refresh token presented", "user_id", u.ID)
		return TokenPair{}, ErrStaleToken
	}
	return a.issuePair(ctx, &u)
}

func (a *Authenticator) issuePair(ctx context.Context, u *model.User) (TokenPair, error) {
	access, err := a.codec.Issue(u.Email, utils.PurposeAccess, a.policy.AccessTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := a.codec.Issue(u.Email, utils.PurposeRefresh, a.policy.RefreshTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}
	u.RefreshToken = refresh.Raw
	if err := a.users.Save(ctx, u); err != nil {
		return TokenPair{}, fmt.Errorf("save refresh token: %w", err)
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// Authenticate resolves an access token to its user, reading through
// the session cache.
func (a *Authenticator) Authenticate(ctx context.Context, accessToken string) (model.User, error) {
	email, err := a.codec.Verify(accessToken, utils.PurposeAccess)
	if err != nil {
		return model.User{}, ErrInvalidToken
	}
	if u, ok := a.cache.Get(ctx, email); ok {
		return u, nil
	}
	u, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.User{}, ErrUnauthorized
		}
		return model.User{}, err
	}
	if err := a.cache.Put(ctx, email, u); err != nil {
		logger.Log.Warn("session cache put failed", "error", err)
	}
	return u, nil
}

// Logout forgets the user's refresh token and cached session.
func (a *Authenticator) Logout(ctx context.Context, email string) error {
	u, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUnauthorized
		}
		return err
	}
	u.RefreshToken = ""
	if err := a.users.Save(ctx, &u); err != nil {
		return err
	}
	a.invalidate(ctx, email)
	return nil
}

// IssueEmailToken mints an email-confirmation token for email.
func (a *Authenticator) IssueEmailToken(email string) (utils.Token, error) {
	return a.codec.Issue(email, utils.PurposeEmail, a.policy.EmailTTL)
}

// ConfirmEmail marks the token's subject as confirmed.  Confirming an
// already confirmed user is a no-op.
func (a *Authenticator) ConfirmEmail(ctx context.Context, token string) error {
	email, err := a.codec.Verify(token, utils.PurposeEmail)
	if err != nil {
		return ErrInvalidToken
	}
	u, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrNotFound
		}
		return err
	}
	if u.Confirmed {
		return nil
	}
	u.Confirmed = true
	if err := a.users.Save(ctx, &u); err != nil {
		return err
	}
	a.invalidate(ctx, email)
	return nil
}

// PendingConfirmation returns the user behind email when it still needs
// to confirm its address.  Confirmed users yield ErrConflict.
func (a *Authenticator) PendingConfirmation(ctx context.Context, email string) (model.User, error) {
	u, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, err
	}
	if u.Confirmed {
		return model.User{}, ErrConflict
	}
	return u, nil
}

// ChangeRole sets targetEmail's role.  Only an existing admin may do so.
func (a *Authenticator) ChangeRole(ctx context.Context, adminEmail, targetEmail string, role model.Role) error {
	admin, err := a.users.FindByEmail(ctx, adminEmail)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrForbidden
		}
		return err
	}
	if err := CheckRole(admin, model.RoleAdmin); err != nil {
		return err
	}
	if !role.Valid() {
		return ErrInvalidRole
	}
	target, err := a.users.FindByEmail(ctx, targetEmail)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrNotFound
		}
		return err
	}
	if target.Role == role {
		return nil
	}
	target.Role = role
	if err := a.users.Save(ctx, &target); err != nil {
		return err
	}
	a.invalidate(ctx, targetEmail)
	logger.Log.Info("role changed", "admin_id", admin.ID, "user_id", target.ID, "role", role)
	return nil
}

// ChangePassword replaces the password of email after checking the old
// one.  Outstanding refresh tokens stop working.
func (a *Authenticator) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	u, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUnauthorized
		}
		return err
	}
	if !a.hasher.Verify(oldPassword, u.PasswordHash) {
		return ErrInvalidCredentials
	}
	digest, err := a.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = digest
	u.RefreshToken = ""
	if err := a.users.Save(ctx, &u); err != nil {
		return err
	}
	a.invalidate(ctx, email)
	return nil
}

// UpdateAvatar stores a new avatar URL for email.
func (a *Authenticator) UpdateAvatar(ctx context.Context, email, url string) (model.User, error) {
	u, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.User{}, ErrUnauthorized
		}
		return model.User{}, err
	}
	u.Avatar = url
	if err := a.users.Save(ctx, &u); err != nil {
		return model.User{}, err
	}
	a.invalidate(ctx, email)
	return u, nil
}

// ListUsers returns every user.
func (a *Authenticator) ListUsers(ctx context.Context) ([]model.User, error) {
	return a.users.ListAll(ctx)
}

func (a *Authenticator) invalidate(ctx context.Context, email string) {
	if err := a.cache.Delete(ctx, email); err != nil {
		logger.Log.Warn("session cache delete failed", "error", err)
	}
}
