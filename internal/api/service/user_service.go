package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/models"
	"reviewhub/internal/api/policy"
	"reviewhub/internal/api/repository"
)

type UserService interface {
	GetMe(ctx context.Context, actor policy.Actor) (*dto.UserResponse, error)
	UpdateMe(ctx context.Context, actor policy.Actor, req dto.UpdateProfileRequest) (*dto.UserResponse, error)
	GetProfile(ctx context.Context, actor policy.Actor, username string) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, actor policy.Actor, username string, req dto.UpdateProfileRequest) (*dto.UserResponse, error)
	SetRole(ctx context.Context, actor policy.Actor, username, role string) (*dto.UserResponse, error)
	DeleteUser(ctx context.Context, actor policy.Actor, username string) error
	List(ctx context.Context, actor policy.Actor, page, pageSize int) (*dto.PaginatedUserResponse, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// GetMe returns the caller's own profile.
func (s *userService) GetMe(ctx context.Context, actor policy.Actor) (*dto.UserResponse, error) {
	if actor.Anonymous() {
		return nil, ErrUnauthenticated
	}
	user, err := s.userRepo.FindByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return dto.FromModelToUserResponse(user), nil
}

// UpdateMe edits the caller's own profile.
func (s *userService) UpdateMe(ctx context.Context, actor policy.Actor, req dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	if actor.Anonymous() {
		return nil, ErrUnauthenticated
	}
	user, err := s.userRepo.FindByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.applyProfileUpdate(ctx, user, req)
}

// GetProfile returns a user record; readable by the user themself or an
// admin.
func (s *userService) GetProfile(ctx context.Context, actor policy.Actor, username string) (*dto.UserResponse, error) {
	user, err := s.findUser(ctx, username)
	if err != nil {
		return nil, err
	}

	if d := policy.Decide(actor, policy.ActionRead, policy.Resource{Kind: policy.KindUser, OwnerID: user.ID}); !d.Allowed {
		return nil, denialError(d)
	}

	return dto.FromModelToUserResponse(user), nil
}

// UpdateProfile changes username/bio; the role field is only honored for
// admin actors via SetRole.
func (s *userService) UpdateProfile(ctx context.Context, actor policy.Actor, username string, req dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.findUser(ctx, username)
	if err != nil {
		return nil, err
	}

	if d := policy.Decide(actor, policy.ActionUpdate, policy.Resource{Kind: policy.KindUser, OwnerID: user.ID}); !d.Allowed {
		return nil, denialError(d)
	}

	return s.applyProfileUpdate(ctx, user, req)
}

func (s *userService) applyProfileUpdate(ctx context.Context, user *models.User, req dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	if req.Username != "" && req.Username != user.Username {
		if _, err := s.userRepo.FindByUsername(ctx, req.Username); err == nil {
			return nil, ErrNameInUse
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Username = req.Username
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return dto.FromModelToUserResponse(user), nil
}

// SetRole changes a user's role tag; admin only. The new role takes effect
// on the target's next request since authorization re-reads the stored role.
func (s *userService) SetRole(ctx context.Context, actor policy.Actor, username, role string) (*dto.UserResponse, error) {
	if actor.Role != models.RoleAdmin {
		if actor.Anonymous() {
			return nil, ErrUnauthenticated
		}
		return nil, ErrForbidden
	}

	if role != models.RoleUser && role != models.RoleModerator && role != models.RoleAdmin {
		return nil, ErrUnknownRole
	}

	user, err := s.findUser(ctx, username)
	if err != nil {
		return nil, err
	}

	user.Role = role
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return dto.FromModelToUserResponse(user), nil
}

// DeleteUser removes an account; admin only, and never the caller's own.
func (s *userService) DeleteUser(ctx context.Context, actor policy.Actor, username string) error {
	user, err := s.findUser(ctx, username)
	if err != nil {
		return err
	}

	if d := policy.Decide(actor, policy.ActionDelete, policy.Resource{Kind: policy.KindUser, OwnerID: user.ID}); !d.Allowed {
		return denialError(d)
	}
	if actor.ID == user.ID {
		// admins cannot delete themselves
		return ErrForbidden
	}

	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *userService) List(ctx context.Context, actor policy.Actor, page, pageSize int) (*dto.PaginatedUserResponse, error) {
	if d := policy.Decide(actor, policy.ActionRead, policy.Resource{Kind: policy.KindUser}); !d.Allowed {
		return nil, denialError(d)
	}

	users, total, err := s.userRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}

	userResponses := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		userResponses = append(userResponses, *dto.FromModelToUserResponse(&user))
	}

	return dto.NewPaginatedUserResponse(userResponses, int(total), page, pageSize), nil
}

func (s *userService) findUser(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
