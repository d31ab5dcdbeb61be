package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"financetracker/internal/auth"
	"financetracker/internal/core"
	"financetracker/internal/storage"
)

const (
	maxUsernameLength = 150
	maxNameLength     = 30
	minPasswordLength = 8
)

// RegistrationForm is the sign-up payload.
type RegistrationForm struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password1 string `json:"password1"`
	Password2 string `json:"password2"`
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &core.ValidationError{Field: field, Message: "This field is required."}
	}
	return nil
}

func tooLong(field string, max int) error {
	return &core.ValidationError{Field: field, Message: fmt.Sprintf("Ensure this value has at most %d characters.", max)}
}

// Validate checks every field and returns the first problem found.
func (f RegistrationForm) Validate() error {
	fields := []struct{ name, value string }{
		{"username", f.Username},
		{"first_name", f.FirstName},
		{"last_name", f.LastName},
		{"email", f.Email},
		{"password1", f.Password1},
		{"password2", f.Password2},
	}
	for _, fl := range fields {
		if err := required(fl.name, fl.value); err != nil {
			return err
		}
	}

	if utf8.RuneCountInString(f.Username) > maxUsernameLength {
		return tooLong("username", maxUsernameLength)
	}
	for _, r := range f.Username {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !strings.ContainsRune("@.+-_", r) {
			return &core.ValidationError{Field: "username",
				Message: "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."}
		}
	}
	if utf8.RuneCountInString(f.FirstName) > maxNameLength {
		return tooLong("first_name", maxNameLength)
	}
	if utf8.RuneCountInString(f.LastName) > maxNameLength {
		return tooLong("last_name", maxNameLength)
	}
	if addr, err := mail.ParseAddress(f.Email); err != nil || addr.Address != strings.TrimSpace(f.Email) {
		return &core.ValidationError{Field: "email", Message: "Enter a valid email address."}
	}

	if f.Password1 != f.Password2 {
		return &core.ValidationError{Field: "password2", Message: "The two password fields didn't match."}
	}
	if utf8.RuneCountInString(f.Password1) < minPasswordLength {
		return &core.ValidationError{Field: "password2",
			Message: fmt.Sprintf("This password is too short. It must contain at least %d characters.", minPasswordLength)}
	}
	if strings.IndexFunc(f.Password1, func(r rune) bool { return !unicode.IsDigit(r) }) < 0 {
		return &core.ValidationError{Field: "password2", Message: "This password is entirely numeric."}
	}
	return nil
}

// Session is the result of a successful register or login.
type Session struct {
	User      core.User
	Token     string
	ExpiresAt time.Time
}

// AccountService registers users and signs them in.
type AccountService struct {
	repo   *storage.SQLiteRepository
	issuer *auth.Issuer
}

func NewAccountService(repo *storage.SQLiteRepository, issuer *auth.Issuer) *AccountService {
	return &AccountService{repo: repo, issuer: issuer}
}

// Register creates the user together with the default categories in one
// database transaction, then signs the user in.
func (s *AccountService) Register(ctx context.Context, form RegistrationForm) (Session, error) {
	if err := form.Validate(); err != nil {
		return Session{}, err
	}
	hash, err := auth.HashPassword(form.Password1)
	if err != nil {
		return Session{}, err
	}

	var user core.User
	err = s.repo.InTx(ctx, func(q *storage.Queries) error {
		u, err := q.CreateUser(ctx, core.User{
			Username:  strings.TrimSpace(form.Username),
			FirstName: strings.TrimSpace(form.FirstName),
			LastName:  strings.TrimSpace(form.LastName),
			Email:     strings.TrimSpace(form.Email),
		}, hash)
		if err != nil {
			return err
		}
		for _, c := range core.DefaultCategoriesFor(u.ID) {
			if _, err := q.CreateCategory(ctx, u.ID, c); err != nil {
				return fmt.Errorf("provision category %q: %w", c.Name, err)
			}
		}
		user = u
		return nil
	})
	if errors.Is(err, storage.ErrDuplicate) {
		return Session{}, &core.ValidationError{Field: "username",
			Message: "A user with that username already exists.", Err: core.ErrDuplicate}
	}
	if err != nil {
		return Session{}, fmt.Errorf("register user: %w", err)
	}

	slog.InfoContext(ctx, "User registered",
		"user_id", user.ID,
		"username", user.Username,
		"default_categories", len(core.DefaultCategories))

	return s.session(user)
}

// Login verifies the password. Unknown users and wrong passwords both yield
// auth.ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, username, password string) (Session, error) {
	user, hash, err := s.repo.GetUserCredentials(ctx, strings.TrimSpace(username))
	if errors.Is(err, storage.ErrNotFound) {
		return Session{}, auth.ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("load credentials: %w", err)
	}
	if err := auth.CheckPassword(hash, password); err != nil {
		return Session{}, err
	}
	return s.session(user)
}

func (s *AccountService) session(u core.User) (Session, error) {
	token, exp, err := s.issuer.Issue(u)
	if err != nil {
		return Session{}, err
	}
	return Session{User: u, Token: token, ExpiresAt: exp}, nil
}
