package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/sourcehub/hub-backend/internal/config"
	"github.com/sourcehub/hub-backend/internal/repository"
	"github.com/sourcehub/hub-backend/internal/types"
)

// ============================================
// Auth Service
// ============================================

type AuthService interface {
	Login(ctx context.Context, email, password string) (*repository.Member, string, string, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, string, error)
	ValidateToken(token string) (*jwt.Token, error)
	GetMemberIDFromToken(token *jwt.Token) (string, error)
}

type authService struct {
	cfg        *config.Config
	memberRepo repository.MemberRepository
}

func NewAuthService(cfg *config.Config, memberRepo repository.MemberRepository) AuthService {
	return &authService{cfg: cfg, memberRepo: memberRepo}
}

func (s *authService) Login(ctx context.Context, email, password string) (*repository.Member, string, string, error) {
	member, err := s.memberRepo.FindByEmail(ctx, email)
	if err != nil || member == nil {
		return nil, "", "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	if member.MembershipStatus == types.MembershipSuspended {
		return nil, "", "", ErrMembershipInactive
	}

	accessToken, refreshToken, err := s.generateTokens(member.ID)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}

	return member, accessToken, refreshToken, nil
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, string, error) {
	token, err := s.ValidateToken(refreshToken)
	if err != nil || !token.Valid {
		return "", "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["type"] != "refresh" {
		return "", "", ErrInvalidToken
	}
	memberID, ok := claims["sub"].(string)
	if !ok {
		return "", "", ErrInvalidToken
	}

	member, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil || member == nil {
		return "", "", ErrInvalidToken
	}

	return s.generateTokensOrErr(member.ID)
}

func (s *authService) ValidateToken(tokenString string) (*jwt.Token, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	return token, nil
}

func (s *authService) GetMemberIDFromToken(token *jwt.Token) (string, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	memberID, ok := claims["sub"].(string)
	if !ok {
		return "", ErrInvalidToken
	}
	return memberID, nil
}

func (s *authService) generateTokensOrErr(memberID string) (string, string, error) {
	access, refresh, err := s.generateTokens(memberID)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}
	return access, refresh, nil
}

func (s *authService) generateTokens(memberID string) (string, string, error) {
	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": memberID,
		"exp": time.Now().Add(time.Hour * time.Duration(s.cfg.JWTExpiry)).Unix(),
		"iat": time.Now().Unix(),
	})
	accessTokenString, err := accessToken.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", "", err
	}

	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  memberID,
		"type": "refresh",
		"exp":  time.Now().Add(time.Hour * 24 * time.Duration(s.cfg.RefreshExpiry)).Unix(),
		"iat":  time.Now().Unix(),
	})
	refreshTokenString, err := refreshToken.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", "", err
	}

	return accessTokenString, refreshTokenString, nil
}
