package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/f1-draft/internal/domain/state"
	"github.com/riskibarqy/f1-draft/internal/domain/user"
	"github.com/riskibarqy/f1-draft/internal/platform/id"
	"github.com/riskibarqy/f1-draft/internal/platform/logging"
)

const defaultAvatar = "🏎️"

type UserService struct {
	store  *StateStore
	ids    id.Generator
	logger *logging.Logger
}

func NewUserService(store *StateStore, ids id.Generator, logger *logging.Logger) *UserService {
	if logger == nil {
		logger = logging.Default()
	}
	return &UserService{
		store:  store,
		ids:    ids,
		logger: logger,
	}
}

type AddUserInput struct {
	Username string
	Avatar   string
}

func (s *UserService) List(ctx context.Context) ([]user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserService.List")
	defer span.End()

	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]user.User, 0, len(snapshot.Users))
	for _, u := range snapshot.Users {
		u.IsAdmin = snapshot.IsAdmin(u.ID)
		out = append(out, u)
	}
	return out, nil
}

// Resolve maps a user id to the acting principal.
func (s *UserService) Resolve(ctx context.Context, userID int64) (user.Principal, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserService.Resolve")
	defer span.End()

	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return user.Principal{}, err
	}
	if _, _, ok := user.Find(snapshot.Users, userID); !ok {
		return user.Principal{}, fmt.Errorf("%w: unknown user=%d", ErrUnauthorized, userID)
	}
	return user.Principal{UserID: userID, IsAdmin: snapshot.IsAdmin(userID)}, nil
}

// AddUser signs up a new user. The first user becomes admin.
func (s *UserService) AddUser(ctx context.Context, input AddUserInput) (user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserService.AddUser")
	defer span.End()

	username := strings.TrimSpace(input.Username)
	if username == "" {
		return user.User{}, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	avatar := strings.TrimSpace(input.Avatar)
	if avatar == "" {
		avatar = defaultAvatar
	}

	var created user.User
	_, err := s.store.Update(ctx, func(snapshot *state.Snapshot) error {
		if len(snapshot.Users) >= user.MaxUsers {
			return fmt.Errorf("%w: %w", ErrConflict, user.ErrLeagueFull)
		}
		if user.UsernameTaken(snapshot.Users, username) {
			return fmt.Errorf("%w: %w", ErrConflict, user.ErrUsernameTaken)
		}

		created = user.User{
			ID:       s.nextID(*snapshot),
			Username: username,
			Avatar:   avatar,
			IsAdmin:  len(snapshot.Users) == 0,
		}
		if err := created.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}

		snapshot.Users = append(snapshot.Users, created)
		snapshot.TurnOrder = append(snapshot.TurnOrder, created.ID)
		return nil
	})
	if err != nil {
		return user.User{}, fmt.Errorf("add user: %w", err)
	}

	s.logger.InfoContext(ctx, "user added", "user_id", created.ID, "is_admin", created.IsAdmin)
	return created, nil
}

// DeleteUser removes a user and everything recorded for them.
func (s *UserService) DeleteUser(ctx context.Context, actor user.Principal, userID int64) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserService.DeleteUser")
	defer span.End()

	_, err := s.store.Update(ctx, func(snapshot *state.Snapshot) error {
		if err := requireAdmin(*snapshot, actor); err != nil {
			return err
		}
		if _, _, ok := user.Find(snapshot.Users, userID); !ok {
			return fmt.Errorf("%w: user=%d", ErrNotFound, userID)
		}
		if snapshot.IsAdmin(userID) && snapshot.AdminCount() == 1 {
			return fmt.Errorf("%w: %w", ErrConflict, user.ErrLastAdmin)
		}

		wasHead := len(snapshot.TurnOrder) > 0 && snapshot.TurnOrder[0] == userID
		snapshot.RemoveUser(userID)
		if wasHead && len(snapshot.TurnOrder) > 0 {
			_, idx, ok := user.Find(snapshot.Users, snapshot.TurnOrder[0])
			if ok {
				snapshot.Users[idx].IsAdmin = true
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.logger.InfoContext(ctx, "user deleted", "user_id", userID, "actor_id", actor.UserID)
	return nil
}

func (s *UserService) MakeAdmin(ctx context.Context, actor user.Principal, userID int64) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserService.MakeAdmin")
	defer span.End()

	_, err := s.store.Update(ctx, func(snapshot *state.Snapshot) error {
		if err := requireAdmin(*snapshot, actor); err != nil {
			return err
		}
		_, idx, ok := user.Find(snapshot.Users, userID)
		if !ok {
			return fmt.Errorf("%w: user=%d", ErrNotFound, userID)
		}
		snapshot.Users[idx].IsAdmin = true
		return nil
	})
	if err != nil {
		return fmt.Errorf("make admin: %w", err)
	}
	return nil
}

func (s *UserService) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return false, err
	}
	return snapshot.IsAdmin(userID), nil
}

// TurnOrder returns the normalized draft order.
func (s *UserService) TurnOrder(ctx context.Context) (user.TurnOrder, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserService.TurnOrder")
	defer span.End()

	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot.TurnOrder, nil
}

func (s *UserService) ReorderTurnOrder(ctx context.Context, actor user.Principal, order []int64) (user.TurnOrder, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserService.ReorderTurnOrder")
	defer span.End()

	saved, err := s.store.Update(ctx, func(snapshot *state.Snapshot) error {
		if err := requireAdmin(*snapshot, actor); err != nil {
			return err
		}
		if err := user.ValidatePermutation(order, snapshot.Users); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		snapshot.TurnOrder = append(user.TurnOrder(nil), order...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reorder turn order: %w", err)
	}
	return saved.TurnOrder, nil
}

func (s *UserService) nextID(snapshot state.Snapshot) int64 {
	if observer, ok := s.ids.(interface{ Observe(int64) }); ok {
		for _, u := range snapshot.Users {
			observer.Observe(u.ID)
		}
	}
	return s.ids.NextID()
}
