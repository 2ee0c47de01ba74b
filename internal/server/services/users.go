package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ISTE-SCTCE/Admin/internal/common"
	"github.com/ISTE-SCTCE/Admin/internal/cryptox"
	"github.com/ISTE-SCTCE/Admin/internal/logging"
	"github.com/ISTE-SCTCE/Admin/internal/server/auth"
	"github.com/ISTE-SCTCE/Admin/internal/server/config"
	"github.com/ISTE-SCTCE/Admin/internal/server/models"
	"github.com/ISTE-SCTCE/Admin/internal/server/policy"
	"github.com/ISTE-SCTCE/Admin/internal/server/repositories/repomanager"
)

// Session is a signed session token and the identity it carries.
type Session struct {
	Token     string
	Identity  auth.Identity
	ExpiresAt time.Time
}

// UserService handles signup, login and session issuing.
type UserService struct {
	repomanager repomanager.RepositoryManager
	directory   *DirectoryService
	jwtSecret   []byte
	sessionTTL  time.Duration
	signupRole  string
	logger      logging.Logger
}

func NewUserService(m repomanager.RepositoryManager, directory *DirectoryService, cfg *config.Config, logger logging.Logger) *UserService {
	role := policy.ParseRole(cfg.SignupRole)
	if role == policy.RoleUnknown {
		role = policy.RoleMember
	}

	return &UserService{
		repomanager: m,
		directory:   directory,
		jwtSecret:   []byte(cfg.SecretKey),
		sessionTTL:  cfg.SessionTTL,
		signupRole:  role.String(),
		logger:      logger.With("module", "users"),
	}
}

// IdentityOf is the identity a session for u carries.
func IdentityOf(u *models.User) auth.Identity {
	return auth.Identity{UserID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// Signup creates a user with the configured signup role and provisions the
// matching member. An email already in use is common.ErrAlreadyExists.
func (s *UserService) Signup(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: missing required fields", common.ErrValidation)
	}

	repo := s.repomanager.Users()

	if _, err := repo.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: user already exists", common.ErrAlreadyExists)
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	u, err := repo.Create(ctx, &models.User{
		Name:     name,
		Email:    email,
		Password: cryptox.HashPassword(password),
		Role:     s.signupRole,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	if _, _, err := s.directory.Provision(ctx, u, nil); err != nil {
		return nil, fmt.Errorf("error provisioning member: %w", err)
	}

	s.logger.Info(ctx, "user signed up", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Login verifies the credentials and issues a session. Unknown emails and
// wrong passwords are both common.ErrNotAuthenticated. A legacy plaintext
// password is replaced by its hash after a successful login.
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	repo := s.repomanager.Users()

	u, err := repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", common.ErrNotAuthenticated)
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	ok, err := cryptox.VerifyPassword(u.Password, password)
	if err != nil {
		s.logger.Error(ctx, "stored password unreadable", "user_id", u.ID, "error", err)
		return nil, fmt.Errorf("%w: invalid credentials", common.ErrNotAuthenticated)
	}
	if !ok {
		return nil, fmt.Errorf("%w: invalid credentials", common.ErrNotAuthenticated)
	}

	if !cryptox.IsHashed(u.Password) {
		hashed := cryptox.HashPassword(password)
		if _, err := repo.Update(ctx, u.ID, func(stored *models.User) error {
			stored.Password = hashed
			return nil
		}); err != nil {
			s.logger.Warn(ctx, "rehash of legacy password failed", "user_id", u.ID, "error", err)
		}
	}

	return s.IssueToken(u)
}

// Me returns the stored user behind caller.
func (s *UserService) Me(ctx context.Context, caller *auth.Identity) (*models.User, error) {
	return resolveCaller(ctx, s.repomanager, caller)
}

// IssueToken signs a session for u valid for the configured session TTL.
func (s *UserService) IssueToken(u *models.User) (*Session, error) {
	id := IdentityOf(u)
	token, err := auth.GenerateToken(id, s.jwtSecret, s.sessionTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: signing session: %v", common.ErrorInternal, err)
	}

	return &Session{Token: token, Identity: id, ExpiresAt: time.Now().Add(s.sessionTTL)}, nil
}

// Authenticate verifies a session token. Any failure wraps
// common.ErrNotAuthenticated.
func (s *UserService) Authenticate(token string) (auth.Identity, error) {
	id, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("%w: %w", common.ErrNotAuthenticated, err)
	}
	return id, nil
}

// SessionTTL is how long issued sessions stay valid.
func (s *UserService) SessionTTL() time.Duration { return s.sessionTTL }
