package application

import (
	"context"
	"strings"

	"github.com/oksasatya/go-clean-starter/internal/domain/entity"
	"github.com/oksasatya/go-clean-starter/internal/domain/errs"
	"github.com/oksasatya/go-clean-starter/pkg/result"
)

// authorizeUserChange lets a user change their own profile. Changing someone
// else, or anyone's roles or active flag, takes an active admin.
func (s *UserService) authorizeUserChange(ctx context.Context, actorID, targetID string, privileged bool) error {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return errs.Unauthorized("authentication required")
	}
	if actorID == targetID && !privileged {
		return nil
	}
	actor, err := s.Users.GetByID(ctx, actorID)
	if errs.IsNotFound(err) {
		return errs.Unauthorized("unknown user")
	}
	if err != nil {
		return err
	}
	if !actor.IsActive() {
		return errs.Unauthorized("account is inactive")
	}
	if !actor.IsAdmin() {
		if privileged {
			return errs.Forbidden("only admins may change roles or account status")
		}
		return errs.Forbidden("not allowed to modify another user")
	}
	return nil
}

// UpdateUserAs runs UpdateUser on behalf of actorID.
func (s *UserService) UpdateUserAs(ctx context.Context, actorID, id string, in UpdateUserInput) result.Result[*entity.User] {
	id, err := validateID("id", id)
	if err != nil {
		return result.Fail[*entity.User](err)
	}
	if _, err := in.toUpdate(); err != nil {
		return result.Fail[*entity.User](err)
	}
	if err := s.authorizeUserChange(ctx, actorID, id, in.IsActive != nil || in.Roles != nil); err != nil {
		return result.Fail[*entity.User](err)
	}
	return s.UpdateUser(ctx, id, in)
}

// DeleteUserAs runs DeleteUser on behalf of actorID.
func (s *UserService) DeleteUserAs(ctx context.Context, actorID, id string) result.Result[struct{}] {
	id, err := validateID("id", id)
	if err != nil {
		return result.Fail[struct{}](err)
	}
	if err := s.authorizeUserChange(ctx, actorID, id, false); err != nil {
		return result.Fail[struct{}](err)
	}
	return s.DeleteUser(ctx, id)
}

// UploadAvatarAs runs UploadAvatar on behalf of actorID.
func (s *UserService) UploadAvatarAs(ctx context.Context, actorID, id string, in AvatarUpload) result.Result[*entity.User] {
	id, err := validateID("id", id)
	if err != nil {
		return result.Fail[*entity.User](err)
	}
	if err := s.authorizeUserChange(ctx, actorID, id, false); err != nil {
		return result.Fail[*entity.User](err)
	}
	return s.UploadAvatar(ctx, id, in)
}
