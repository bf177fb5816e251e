package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/salestracker/internal/domain/models"
	repo "github.com/mamadbah2/salestracker/internal/repository/mongodb"
	"github.com/mamadbah2/salestracker/pkg/clients/identity"
)

// Store keeps session tokens mapped to their signed-in user.
type Store interface {
	Save(ctx context.Context, token string, user models.SessionUser, ttl time.Duration) error
	Load(ctx context.Context, token string) (models.SessionUser, error)
	Delete(ctx context.Context, token string) error
}

// Options tune the gate.
type Options struct {
	TTL       time.Duration
	SignupCap int64
}

// Gate authenticates users against the identity provider and tracks their
// sessions.
type Gate struct {
	identity identity.Client
	users    repo.UserRepository
	sessions Store
	opts     Options
	logger   *zap.Logger
	now      func() time.Time
	newToken func() string
}

// NewGate wires a session gate.
func NewGate(idp identity.Client, users repo.UserRepository, sessions Store, opts Options, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return &Gate{
		identity: idp,
		users:    users,
		sessions: sessions,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
		newToken: func() string { return uuid.NewString() },
	}
}

// Session is a started session: its token and the user it belongs to.
type Session struct {
	Token string             `json:"-"`
	User  models.SessionUser `json:"user"`
}

// SignupAllowed reports whether fewer companion documents exist than the cap.
// The check is advisory.
func (g *Gate) SignupAllowed(ctx context.Context) (bool, error) {
	n, err := g.users.Count(ctx)
	if err != nil {
		return false, models.StoreError("count users", err)
	}
	return n < g.opts.SignupCap, nil
}

// SignUp creates an account, writes its companion document and starts a session.
func (g *Gate) SignUp(ctx context.Context, email, password, confirm string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Session{}, fmt.Errorf("%w: email and password are required", models.ErrValidation)
	}
	if password != confirm {
		return Session{}, models.ErrPasswordMismatch
	}

	allowed, err := g.SignupAllowed(ctx)
	if err != nil {
		return Session{}, err
	}
	if !allowed {
		return Session{}, models.ErrSignupCapReached
	}

	account, err := g.identity.SignUp(ctx, email, password)
	if err != nil {
		return Session{}, authError("Sign-up", models.ErrSignupRejected, err)
	}

	if err := g.users.Insert(ctx, models.UserDoc{UID: account.UID, Email: account.Email}); err != nil {
		return Session{}, models.StoreError("insert user", err)
	}

	g.logger.Info("account created", zap.String("uid", account.UID))
	return g.start(ctx, account)
}

// SignIn verifies credentials and starts a session.
func (g *Gate) SignIn(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Session{}, fmt.Errorf("%w: email and password are required", models.ErrValidation)
	}

	account, err := g.identity.SignIn(ctx, email, password)
	if err != nil {
		return Session{}, authError("Login", models.ErrInvalidCredentials, err)
	}
	return g.start(ctx, account)
}

// SignOut ends the session. Unknown tokens are ignored.
func (g *Gate) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := g.sessions.Delete(ctx, token); err != nil {
		return models.StoreError("delete session", err)
	}
	return nil
}

// CurrentUser returns the user behind token, or ErrUnauthenticated.
func (g *Gate) CurrentUser(ctx context.Context, token string) (models.SessionUser, error) {
	if token == "" {
		return models.SessionUser{}, models.ErrUnauthenticated
	}
	user, err := g.sessions.Load(ctx, token)
	if errors.Is(err, models.ErrNotFound) {
		return models.SessionUser{}, models.ErrUnauthenticated
	}
	if err != nil {
		return models.SessionUser{}, models.StoreError("load session", err)
	}
	return user, nil
}

func (g *Gate) start(ctx context.Context, account *identity.Account) (Session, error) {
	user := models.SessionUser{
		UID:      account.UID,
		Email:    account.Email,
		SignedIn: g.now().UTC(),
	}
	token := g.newToken()
	if err := g.sessions.Save(ctx, token, user, g.opts.TTL); err != nil {
		return Session{}, models.StoreError("save session", err)
	}
	return Session{Token: token, User: user}, nil
}

// authError surfaces provider rejections verbatim. Transport failures are
// reported with the same kind and the error text.
func authError(op string, kind, err error) error {
	message := err.Error()
	if rejected, ok := identity.IsRejected(err); ok {
		message = rejected.Message
	}
	return &models.AuthError{Op: op, Message: message, Kind: kind}
}
