package app

import (
	"strings"
	"time"

	"kodechat/internal/model"
	"kodechat/internal/pkg/sessiontoken"
	"kodechat/internal/repository"
)

// AuthService turns an identity-provider-verified profile into a local session.
// It never sees credentials; the provider integration calls EstablishSession
// only after its own verification has succeeded.
type AuthService struct {
	userRepo      *repository.UserRepository
	sessionSecret string
	sessionTTL    time.Duration
}

type SessionInput struct {
	Email string
	Name  string
}

type SessionResult struct {
	Token string
	User  *model.User
}

func NewAuthService(userRepo *repository.UserRepository, sessionSecret string, sessionTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		sessionSecret: sessionSecret,
		sessionTTL:    sessionTTL,
	}
}

// EstablishSession upserts the user by email (first sign-in creates the record)
// and mints a signed session token carrying the profile.
func (s *AuthService) EstablishSession(input SessionInput) (*SessionResult, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	name := strings.TrimSpace(input.Name)
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidInput
	}

	user, err := s.userRepo.GetOrCreateByEmail(email, name)
	if err != nil {
		return nil, err
	}

	token, err := sessiontoken.Generate(s.sessionSecret, s.sessionTTL, user.Email, user.Name)
	if err != nil {
		return nil, err
	}
	return &SessionResult{Token: token, User: user}, nil
}

func (s *AuthService) SessionTTL() time.Duration {
	return s.sessionTTL
}
