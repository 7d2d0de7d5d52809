package blog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"inkwell/apperr"
	"inkwell/auth"
	"inkwell/model"
	"inkwell/policy"
	"inkwell/store"
	Logger "inkwell/utils/log"
)

const minPasswordLength = 8

// RegisterInput is the registration request. Role defaults to reader when
// empty; it is fixed at registration and no API path can change it later.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	Password2 string
	FirstName string
	LastName  string
	Role      model.Role
}

// AuthResult is what a successful register or authenticate hands back.
type AuthResult struct {
	User    *model.UserView    `json:"user"`
	Profile *model.ProfileView `json:"profile"`
	Tokens  *auth.TokenPair    `json:"tokens"`
}

// Register creates a user and its profile atomically and issues a first token
// pair. Validation problems are collected per field and returned together; a
// failed registration leaves no partial records behind.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	v := apperr.NewValidation()

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if in.Username == "" {
		v.Add("username", "This field is required")
	}
	if in.Email == "" {
		v.Add("email", "This field is required")
	} else if !strings.Contains(in.Email, "@") {
		v.Add("email", "Enter a valid email address")
	}
	if len(in.Password) < minPasswordLength {
		v.Add("password", "Password must be at least 8 characters")
	}
	if in.Password != in.Password2 {
		v.Add("password", "Passwords don't match")
	}
	role := in.Role
	if role == "" {
		role = model.RoleReader
	}
	if !role.Valid() {
		v.Add("role", "Role must be reader or author")
	}

	if in.Username != "" {
		if _, err := s.store.UserByUsername(ctx, in.Username); err == nil {
			v.Add("username", "Username already exists")
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, s.unavailable("checking username", err)
		}
	}
	if in.Email != "" {
		if _, err := s.store.UserByEmail(ctx, in.Email); err == nil {
			v.Add("email", "Email already exists")
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, s.unavailable("checking email", err)
		}
	}
	if !v.Empty() {
		return nil, v
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, s.unavailable("hashing password", err)
	}

	user := &model.User{
		Id:           uuid.New().String(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	}
	profile := &model.Profile{
		Id:     uuid.New().String(),
		UserID: user.Id,
		Role:   role,
	}

	if err := s.store.CreateUserWithProfile(ctx, user, profile); err != nil {
		if isConflict(err) {
			// Raced another registration past the pre-checks; report the field
			// that actually collided.
			return nil, s.conflictFields(ctx, in.Username, in.Email)
		}
		return nil, s.unavailable("creating user", err)
	}

	Logger.Log.Info("registered user ", user.Username, " with role ", role)
	return s.authResult(ctx, user, profile)
}

// conflictFields re-checks which unique field collided after a create-time
// conflict so the error cites it precisely.
func (s *Service) conflictFields(ctx context.Context, username, email string) error {
	v := apperr.NewValidation()
	if _, err := s.store.UserByUsername(ctx, username); err == nil {
		v.Add("username", "Username already exists")
	}
	if _, err := s.store.UserByEmail(ctx, email); err == nil {
		v.Add("email", "Email already exists")
	}
	if v.Empty() {
		v.Add("username", "Username or email already exists")
	}
	return v
}

// Authenticate verifies credentials and issues a token pair. Unknown username
// and bad password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.store.UserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.ErrUnauthenticated
		}
		return nil, s.unavailable("loading user", err)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, apperr.ErrUnauthenticated
	}
	profile, err := s.store.ProfileByUserID(ctx, user.Id)
	if err != nil {
		return nil, s.unavailable("loading profile", err)
	}
	return s.authResult(ctx, user, profile)
}

// ChangePassword rotates the actor's password after verifying the old one. A
// wrong old password is a validation problem, not a permission one: the actor
// is already authenticated.
func (s *Service) ChangePassword(ctx context.Context, actor policy.Actor, oldPassword, newPassword string) error {
	if !actor.Authenticated() {
		return apperr.ErrUnauthenticated
	}
	user, err := s.store.UserByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.ErrUnauthenticated
		}
		return s.unavailable("loading user", err)
	}

	v := apperr.NewValidation()
	if !auth.CheckPassword(user.PasswordHash, oldPassword) {
		v.Add("old_password", "Wrong password")
	}
	if len(newPassword) < minPasswordLength {
		v.Add("new_password", "Password must be at least 8 characters")
	}
	if !v.Empty() {
		return v
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return s.unavailable("hashing password", err)
	}
	user.PasswordHash = hash
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return s.unavailable("updating user", err)
	}
	Logger.Log.Info("password changed for user ", user.Username)
	return nil
}

func (s *Service) authResult(ctx context.Context, user *model.User, profile *model.Profile) (*AuthResult, error) {
	tokens, err := s.tokens.Issue(ctx, user.Id)
	if err != nil {
		return nil, err
	}
	stats, err := s.store.ProfileStats(ctx, user.Id)
	if err != nil {
		return nil, s.unavailable("loading profile stats", err)
	}
	return &AuthResult{
		User:    model.NewUserView(user),
		Profile: model.NewProfileView(user, profile, stats),
		Tokens:  tokens,
	}, nil
}
