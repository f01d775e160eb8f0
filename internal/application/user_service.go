package application

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-clean-starter/internal/domain/entity"
	"github.com/oksasatya/go-clean-starter/internal/domain/errs"
	repo "github.com/oksasatya/go-clean-starter/internal/domain/repository"
	"github.com/oksasatya/go-clean-starter/internal/domain/service"
	"github.com/oksasatya/go-clean-starter/pkg/pagination"
	"github.com/oksasatya/go-clean-starter/pkg/result"
)

// searchHitLimit caps how many ids a full text search may feed into a listing.
const searchHitLimit = 1000

const CodeStorageUnavailable = "STORAGE_UNAVAILABLE"

var userSortFields = map[string]bool{
	"createdAt": true,
	"updatedAt": true,
	"email":     true,
	"firstName": true,
	"lastName":  true,
}

// UserService holds the user use cases. Email, Index and Storage are optional.
type UserService struct {
	Users        repo.UserRepository
	Hasher       service.PasswordHasher
	Email        service.EmailService
	Index        service.UserIndex
	Storage      service.ObjectStorage
	Logger       *logrus.Logger
	WelcomeEmail bool

	effects sideEffects
}

func NewUserService(users repo.UserRepository, hasher service.PasswordHasher, logger *logrus.Logger) *UserService {
	return &UserService{Users: users, Hasher: hasher, Logger: logger, WelcomeEmail: true}
}

// Wait blocks until background emails started by the service are done.
func (s *UserService) Wait() { s.effects.wait() }

type CreateUserInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
}

func (in CreateUserInput) validate() error {
	if err := entity.ValidateEmail(entity.NormalizeEmail(in.Email)); err != nil {
		return err
	}
	if err := entity.ValidatePersonName("firstName", strings.TrimSpace(in.FirstName)); err != nil {
		return err
	}
	if err := entity.ValidatePersonName("lastName", strings.TrimSpace(in.LastName)); err != nil {
		return err
	}
	return ValidatePassword(in.Password)
}

// ValidatePassword requires at least 8 characters with an upper case letter,
// a lower case letter and a digit.
func ValidatePassword(pw string) error {
	if len(pw) < 8 {
		return errs.Validation("password", "password must be at least 8 characters")
	}
	if len(pw) > 72 {
		return errs.Validation("password", "password must be at most 72 bytes")
	}
	var upper, lower, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return errs.Validation("password", "password must contain upper case, lower case and a digit")
	}
	return nil
}

// CreateUser registers a new user and sends the welcome email in the background.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) result.Result[*entity.User] {
	if err := in.validate(); err != nil {
		return result.Fail[*entity.User](err)
	}
	email := entity.NormalizeEmail(in.Email)
	exists, err := s.Users.ExistsByEmail(ctx, email)
	if err != nil {
		return result.Fail[*entity.User](err)
	}
	if exists {
		return result.Fail[*entity.User](errs.Conflict(errs.CodeEmailAlreadyExists, "email already registered").With("email", email))
	}
	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return result.Fail[*entity.User](fmt.Errorf("hash password: %w", err))
	}
	u, err := entity.CreateUser(email, in.FirstName, in.LastName)
	if err != nil {
		return result.Fail[*entity.User](err)
	}
	if err := s.Users.Create(ctx, u, hash); err != nil {
		return result.Fail[*entity.User](err)
	}

	log := loggerOrStd(s.Logger).WithField("user_id", u.ID())
	log.Info("user created")
	s.indexUser(ctx, u)
	if s.Email != nil && s.WelcomeEmail {
		s.effects.run(ctx, log, "welcome email", func(c context.Context) error {
			return s.Email.SendWelcome(c, u)
		})
	}
	return result.Ok(u)
}

func (s *UserService) GetUser(ctx context.Context, id string) result.Result[*entity.User] {
	id, err := validateID("id", id)
	if err != nil {
		return result.Fail[*entity.User](err)
	}
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		return result.Fail[*entity.User](err)
	}
	if u == nil {
		return result.Fail[*entity.User](errs.NotFound("user", id))
	}
	return result.Ok(u)
}

type ListUsersInput struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
	Search    string
	IsActive  *bool
	Role      string
}

func (s *UserService) ListUsers(ctx context.Context, in ListUsersInput) result.Result[pagination.Page[*entity.User]] {
	type page = pagination.Page[*entity.User]
	params := pagination.Clamp(in.Page, in.Limit)
	sortBy, order, err := normalizeSort(in.SortBy, in.SortOrder, userSortFields)
	if err != nil {
		return result.Fail[page](err)
	}
	q := repo.UserQuery{
		Filter:    repo.UserFilter{Search: strings.TrimSpace(in.Search), IsActive: in.IsActive},
		Page:      params,
		SortBy:    sortBy,
		SortOrder: order,
	}
	if in.Role != "" {
		role, err := entity.ParseRole(in.Role)
		if err != nil {
			return result.Fail[page](err)
		}
		q.Filter.Role = role
	}

	if q.Filter.Search != "" && s.Index != nil {
		ids, _, err := s.Index.Search(ctx, q.Filter.Search, 0, searchHitLimit)
		if err != nil {
			loggerOrStd(s.Logger).WithError(err).Warn("user search failed, falling back to repository")
		} else {
			if len(ids) == 0 {
				return result.Ok(pagination.NewPage[*entity.User](nil, 0, params))
			}
			q.Filter.Search = ""
			q.Filter.IDs = ids
		}
	}

	items, total, err := s.Users.List(ctx, q)
	if err != nil {
		return result.Fail[page](err)
	}
	return result.Ok(pagination.NewPage(items, total, params))
}

type UpdateUserInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Avatar    *string
	IsActive  *bool
	Roles     []string
}

func (in UpdateUserInput) toUpdate() (entity.UserUpdate, error) {
	upd := entity.UserUpdate{
		Email: in.Email, FirstName: in.FirstName, LastName: in.LastName,
		Avatar: in.Avatar, IsActive: in.IsActive,
	}
	if upd.Empty() && in.Roles == nil {
		return upd, errs.Validation("body", "at least one field must be provided")
	}
	if in.Email != nil {
		e := entity.NormalizeEmail(*in.Email)
		if err := entity.ValidateEmail(e); err != nil {
			return upd, err
		}
		upd.Email = &e
	}
	if in.FirstName != nil {
		if err := entity.ValidatePersonName("firstName", strings.TrimSpace(*in.FirstName)); err != nil {
			return upd, err
		}
	}
	if in.LastName != nil {
		if err := entity.ValidatePersonName("lastName", strings.TrimSpace(*in.LastName)); err != nil {
			return upd, err
		}
	}
	if in.Roles != nil {
		upd.Roles = make([]entity.Role, 0, len(in.Roles))
		for _, r := range in.Roles {
			role, err := entity.ParseRole(r)
			if err != nil {
				return upd, err
			}
			upd.Roles = append(upd.Roles, role)
		}
	}
	return upd, nil
}

// UpdateUser applies a partial update and notifies the user about what changed.
func (s *UserService) UpdateUser(ctx context.Context, id string, in UpdateUserInput) result.Result[*entity.User] {
	id, err := validateID("id", id)
	if err != nil {
		return result.Fail[*entity.User](err)
	}
	upd, err := in.toUpdate()
	if err != nil {
		return result.Fail[*entity.User](err)
	}
	current, err := s.Users.GetByID(ctx, id)
	if err != nil {
		return result.Fail[*entity.User](err)
	}
	if upd.Email != nil && *upd.Email != current.Email() {
		exists, err := s.Users.ExistsByEmail(ctx, *upd.Email)
		if err != nil {
			return result.Fail[*entity.User](err)
		}
		if exists {
			return result.Fail[*entity.User](errs.Conflict(errs.CodeEmailAlreadyExists, "email already registered").With("email", *upd.Email))
		}
	}
	updated, err := current.Update(upd)
	if err != nil {
		return result.Fail[*entity.User](err)
	}
	if err := s.Users.Update(ctx, updated); err != nil {
		return result.Fail[*entity.User](err)
	}

	log := loggerOrStd(s.Logger).WithField("user_id", id)
	s.indexUser(ctx, updated)
	if changes := userChanges(current, updated); len(changes) > 0 && s.Email != nil {
		s.effects.run(ctx, log, "profile updated email", func(c context.Context) error {
			return s.Email.SendProfileUpdated(c, updated, changes)
		})
	}
	return result.Ok(updated)
}

// userChanges lists the fields that differ, keyed by their API name.
func userChanges(before, after *entity.User) map[string]string {
	out := map[string]string{}
	if before.Email() != after.Email() {
		out["email"] = after.Email()
	}
	if before.FirstName() != after.FirstName() {
		out["firstName"] = after.FirstName()
	}
	if before.LastName() != after.LastName() {
		out["lastName"] = after.LastName()
	}
	if before.Avatar() != after.Avatar() {
		out["avatar"] = after.Avatar()
	}
	if before.IsActive() != after.IsActive() {
		out["isActive"] = strconv.FormatBool(after.IsActive())
	}
	if !sameRoles(before.Roles(), after.Roles()) {
		names := make([]string, 0, len(after.Roles()))
		for _, r := range after.Roles() {
			names = append(names, string(r))
		}
		out["roles"] = strings.Join(names, ", ")
	}
	return out
}

func sameRoles(a, b []entity.Role) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// DeleteUser removes the user from listings. Repositories keep the row and
// mark it deleted.
func (s *UserService) DeleteUser(ctx context.Context, id string) result.Result[struct{}] {
	id, err := validateID("id", id)
	if err != nil {
		return result.Fail[struct{}](err)
	}
	if err := s.Users.Delete(ctx, id); err != nil {
		return result.Fail[struct{}](err)
	}
	if s.Index != nil {
		if err := s.Index.Remove(ctx, id); err != nil {
			loggerOrStd(s.Logger).WithError(err).WithField("user_id", id).Warn("remove from index failed")
		}
	}
	return result.Ok(struct{}{})
}

type AvatarUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// UploadAvatar stores an image and points the user's avatar at it.
func (s *UserService) UploadAvatar(ctx context.Context, id string, in AvatarUpload) result.Result[*entity.User] {
	id, err := validateID("id", id)
	if err != nil {
		return result.Fail[*entity.User](err)
	}
	if !strings.HasPrefix(strings.ToLower(in.ContentType), "image/") {
		return result.Fail[*entity.User](errs.Validation("avatar", "avatar must be an image"))
	}
	if in.Body == nil {
		return result.Fail[*entity.User](errs.Validation("avatar", "avatar file is required"))
	}
	if s.Storage == nil {
		return result.Fail[*entity.User](errs.Domain(CodeStorageUnavailable, "object storage is not configured"))
	}
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		return result.Fail[*entity.User](err)
	}

	ext := strings.ToLower(filepath.Ext(in.Filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", id, uuid.NewString()+ext))
	url, err := s.Storage.Upload(ctx, objectPath, in.ContentType, in.Body)
	if err != nil {
		return result.Fail[*entity.User](err)
	}
	updated, err := u.Update(entity.UserUpdate{Avatar: &url})
	if err != nil {
		return result.Fail[*entity.User](err)
	}
	if err := s.Users.Update(ctx, updated); err != nil {
		return result.Fail[*entity.User](err)
	}
	s.indexUser(ctx, updated)
	return result.Ok(updated)
}

func (s *UserService) indexUser(ctx context.Context, u *entity.User) {
	if s.Index == nil {
		return
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := s.Index.Index(c, u); err != nil {
		loggerOrStd(s.Logger).WithError(err).WithField("user_id", u.ID()).Warn("index user failed")
	}
}
