package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"stayhub/internal/app/policies"
	domainuser "stayhub/internal/domain/user"
)

const DefaultTokenTTL = 15 * time.Hour

var ErrEmptySecret = errors.New("security: token secret is empty")

type userInfo struct {
	ID        string `json:"_id"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

type userClaims struct {
	UserInfo userInfo `json:"userInfo"`
	jwt.RegisteredClaims
}

// JWTIssuer signs HS256 access tokens carrying the user info claim.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTIssuer(secret string, ttl time.Duration) (*JWTIssuer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (j *JWTIssuer) Issue(info policies.UserInfo) (string, error) {
	now := j.now()
	claims := userClaims{
		UserInfo: userInfo{
			ID:        string(info.ID),
			Firstname: info.Firstname,
			Lastname:  info.Lastname,
			Email:     info.Email,
			Role:      string(info.Role),
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(info.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("security: sign token: %w", err)
	}
	return signed, nil
}

func (j *JWTIssuer) Parse(token string) (policies.UserInfo, error) {
	claims := &userClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return j.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(j.now))
	if err != nil {
		return policies.UserInfo{}, err
	}
	return policies.UserInfo{
		ID:        domainuser.ID(claims.UserInfo.ID),
		Firstname: claims.UserInfo.Firstname,
		Lastname:  claims.UserInfo.Lastname,
		Email:     claims.UserInfo.Email,
		Role:      domainuser.Role(claims.UserInfo.Role),
	}, nil
}
