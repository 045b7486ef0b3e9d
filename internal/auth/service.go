package auth

import (
	"context"

	"arvel.dev/salesline/internal/account"
)

type Service struct {
	accounts *account.Service
	codec    *Codec
	config   Config
}

func NewService(accounts *account.Service, codec *Codec, config Config) *Service {
	return &Service{
		accounts: accounts,
		codec:    codec,
		config:   config,
	}
}

// Login verifies the submitted credentials and mints a fresh token pair.
// Unknown email and wrong password both fail with ErrInvalidCredentials so
// the response cannot be used to enumerate accounts. Issuance is stateless;
// no session record is written.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenPair, *account.User, error) {
	user, err := s.accounts.GetCredentials(ctx, email)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !account.VerifyPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	user.PasswordHash = ""
	tokenPair, err := s.IssueTokenPair(user)
	if err != nil {
		return nil, nil, err
	}

	return tokenPair, user, nil
}

// Refresh verifies a refresh token and mints a rotated pair for the account
// it names. The account is re-read by id (a hash-free lookup), so a token
// for a deleted account can never yield a new pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, *account.User, error) {
	claims, err := s.codec.Verify(KindRefresh, refreshToken)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.accounts.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, nil, err
	}

	tokenPair, err := s.IssueTokenPair(user)
	if err != nil {
		return nil, nil, err
	}

	return tokenPair, user, nil
}

func (s *Service) IssueTokenPair(user *account.User) (*TokenPair, error) {
	access, err := s.codec.Issue(KindAccess, user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.codec.Issue(KindRefresh, user)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

func (s *Service) Codec() *Codec {
	return s.codec
}

// AccessTokenTTLSeconds is the advertised access token lifetime.
func (s *Service) AccessTokenTTLSeconds() int {
	return int(s.config.AccessTokenTTL.Seconds())
}
