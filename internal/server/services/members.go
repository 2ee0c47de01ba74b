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
	"github.com/ISTE-SCTCE/Admin/internal/server/metrics"
	"github.com/ISTE-SCTCE/Admin/internal/server/models"
	"github.com/ISTE-SCTCE/Admin/internal/server/policy"
	"github.com/ISTE-SCTCE/Admin/internal/server/presence"
	"github.com/ISTE-SCTCE/Admin/internal/server/repositories/repomanager"
)

const joinedDateLayout = "2006-01-02"

// NewMember is the input of DirectoryService.Create. Password is used only
// when the paired user has to be created.
type NewMember struct {
	models.Member
	Password string `json:"password,omitempty"`
}

// DirectoryService manages the member roster and keeps the paired users in
// step with it.
type DirectoryService struct {
	repomanager repomanager.RepositoryManager
	presence    *presence.Tracker
	metrics     *metrics.Metrics
	logger      logging.Logger
	now         func() time.Time
}

func NewDirectoryService(m repomanager.RepositoryManager, tracker *presence.Tracker, met *metrics.Metrics, logger logging.Logger) *DirectoryService {
	return &DirectoryService{
		repomanager: m,
		presence:    tracker,
		metrics:     met,
		logger:      logger.With("module", "directory"),
		now:         time.Now,
	}
}

// List returns every member except the caller, each with the id and presence
// status of the user sharing its email. Members without a user are offline.
func (s *DirectoryService) List(ctx context.Context, caller *auth.Identity) ([]models.MemberView, error) {
	callerEmail := ""
	if caller != nil {
		callerEmail = caller.Email
		// the stored address wins over a claim minted before an email change
		if u, err := s.repomanager.Users().FindByID(ctx, caller.UserID); err == nil {
			callerEmail = u.Email
		}
	}

	all, err := s.repomanager.Members().FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing members: %w", err)
	}

	users, err := s.repomanager.Users().FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}

	byEmail := make(map[string]*models.User, len(users))
	for i := range users {
		byEmail[emailKey(users[i].Email)] = &users[i]
	}

	views := make([]models.MemberView, 0, len(all))
	for _, m := range all {
		if callerEmail != "" && emailKey(m.Email) == emailKey(callerEmail) {
			continue
		}
		u := byEmail[emailKey(m.Email)]
		v := models.MemberView{Member: m, Status: s.presence.Status(u)}
		if u != nil {
			v.UserID = u.ID
		}
		views = append(views, v)
	}

	return views, nil
}

// Create adds a member on behalf of an execom caller. The paired user is
// created when missing, with the given password or a random one.
func (s *DirectoryService) Create(ctx context.Context, caller *auth.Identity, in NewMember) (m *models.Member, err error) {
	defer func() { s.metrics.MemberWrite("create", err) }()

	if err := policy.Authorize(callerRole(caller), policy.ActionCreateMember); err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" || in.Email == "" {
		return nil, fmt.Errorf("%w: name and email are required", common.ErrValidation)
	}

	if in.Role == "" {
		in.Role = policy.RoleMember.String()
	}
	role, err := policy.ValidateRole(in.Role)
	if err != nil {
		return nil, err
	}
	in.Role = role.String()

	users := s.repomanager.Users()
	u, err := users.FindByEmail(ctx, in.Email)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		password := in.Password
		if password == "" {
			if password, err = common.MakeRandHexString(16); err != nil {
				return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
			}
		}
		u, err = users.Create(ctx, &models.User{
			Name:     in.Name,
			Email:    in.Email,
			Role:     in.Role,
			Password: cryptox.HashPassword(password),
		})
		if err != nil {
			return nil, fmt.Errorf("error creating user: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	created, ok, err := s.Provision(ctx, u, &in.Member)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: member %s already exists", common.ErrAlreadyExists, in.Email)
	}

	s.logger.Info(ctx, "member created", "member_id", created.ID, "by", callerEmail(caller))
	return created, nil
}

// Provision creates the member paired with u unless one with the same email
// exists, in which case the existing member is returned with false. Fields of
// extra override the defaults derived from u.
func (s *DirectoryService) Provision(ctx context.Context, u *models.User, extra *models.Member) (*models.Member, bool, error) {
	repo := s.repomanager.Members()

	existing, err := repo.FindByEmail(ctx, u.Email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, false, fmt.Errorf("error searching member: %w", err)
	}

	m := models.Member{}
	if extra != nil {
		m = *extra
	}
	m.ID = 0
	m.Email = u.Email
	if m.Name == "" {
		m.Name = u.Name
	}
	if m.Role == "" {
		m.Role = u.Role
	}
	if m.JoinedDate == "" {
		m.JoinedDate = s.now().UTC().Format(joinedDateLayout)
	}

	created, err := repo.Create(ctx, &m)
	if err != nil {
		return nil, false, fmt.Errorf("error creating member: %w", err)
	}
	return created, true, nil
}

// Update applies patch to member id and syncs role, name, password and email
// to the user found by the member's email before the update. Failing to sync
// is logged, never returned.
func (s *DirectoryService) Update(ctx context.Context, caller *auth.Identity, id int64, patch models.MemberPatch) (m *models.Member, err error) {
	defer func() { s.metrics.MemberWrite("edit", err) }()

	if err := policy.Authorize(callerRole(caller), policy.ActionEditMember); err != nil {
		return nil, err
	}
	return s.write(ctx, caller, id, patch)
}

// Appoint sets an execom role on member id. It shares Update's write and
// sync path.
func (s *DirectoryService) Appoint(ctx context.Context, caller *auth.Identity, id int64, role string) (m *models.Member, err error) {
	defer func() { s.metrics.MemberWrite("appoint", err) }()

	if err := policy.Authorize(callerRole(caller), policy.ActionAppointMember); err != nil {
		return nil, err
	}

	r, err := policy.ValidateRole(role)
	if err != nil {
		return nil, err
	}
	if !r.IsExecom() {
		return nil, fmt.Errorf("%w: %s is not an execom role", common.ErrValidation, r)
	}

	canonical := r.String()
	return s.write(ctx, caller, id, models.MemberPatch{Role: &canonical})
}

func (s *DirectoryService) write(ctx context.Context, caller *auth.Identity, id int64, patch models.MemberPatch) (*models.Member, error) {
	repo := s.repomanager.Members()

	current, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := normalizePatch(&patch); err != nil {
		return nil, err
	}

	updated, err := repo.Update(ctx, id, func(m *models.Member) error {
		patch.Apply(m)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error updating member: %w", err)
	}

	s.logger.Info(ctx, "member updated", "member_id", id, "by", callerEmail(caller))

	if err := s.syncUser(ctx, current.Email, patch); err != nil {
		s.metrics.SyncFailure()
		s.logger.Error(ctx, "failed to sync user data", "member_id", id, "email", current.Email, "error", err)
	}

	return updated, nil
}

// normalizePatch validates patch and rewrites role and email to their
// stored form.
func normalizePatch(p *models.MemberPatch) error {
	if p.Role != nil {
		r, err := policy.ValidateRole(*p.Role)
		if err != nil {
			return err
		}
		canonical := r.String()
		p.Role = &canonical
	}
	if p.Email != nil {
		email := strings.TrimSpace(*p.Email)
		if email == "" {
			return fmt.Errorf("%w: email must not be empty", common.ErrValidation)
		}
		p.Email = &email
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return fmt.Errorf("%w: name must not be empty", common.ErrValidation)
	}
	return nil
}

func (s *DirectoryService) syncUser(ctx context.Context, oldEmail string, p models.MemberPatch) error {
	changed := p.Role != nil || p.Name != nil ||
		(p.Password != nil && *p.Password != "") ||
		(p.Email != nil && emailKey(*p.Email) != emailKey(oldEmail))
	if !changed {
		return nil
	}

	users := s.repomanager.Users()
	u, err := users.FindByEmail(ctx, oldEmail)
	if err != nil {
		return fmt.Errorf("find user by email: %w", err)
	}

	var hashed string
	if p.Password != nil && *p.Password != "" {
		hashed = cryptox.HashPassword(*p.Password)
	}

	_, err = users.Update(ctx, u.ID, func(u *models.User) error {
		if p.Role != nil {
			u.Role = *p.Role
		}
		if p.Name != nil {
			u.Name = *p.Name
		}
		if hashed != "" {
			u.Password = hashed
		}
		if p.Email != nil {
			u.Email = *p.Email
		}
		return nil
	})
	return err
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func callerRole(caller *auth.Identity) string {
	if caller == nil {
		return ""
	}
	return caller.Role
}

func callerEmail(caller *auth.Identity) string {
	if caller == nil {
		return ""
	}
	return caller.Email
}
