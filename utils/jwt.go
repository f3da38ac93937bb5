package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	accessIssuer      = "splendor-access"
	refreshIssuer     = "splendor-refresh"
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenIssuer 签发和校验 HS256 令牌，access 和 refresh 使用不同密钥
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenIssuer(secret string, accessTTL time.Duration) *TokenIssuer {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	return &TokenIssuer{
		accessSecret:  []byte(secret),
		refreshSecret: []byte(secret + ":refresh"),
		AccessTTL:     accessTTL,
		RefreshTTL:    DefaultRefreshTTL,
		now:           time.Now,
	}
}

func (t *TokenIssuer) GenerateAccessToken(userID string) (string, error) {
	return t.sign(userID, accessIssuer, t.AccessTTL, t.accessSecret)
}

func (t *TokenIssuer) GenerateRefreshToken(userID string) (string, error) {
	return t.sign(userID, refreshIssuer, t.RefreshTTL, t.refreshSecret)
}

func (t *TokenIssuer) ParseAccessToken(tokenStr string) (*Claims, error) {
	return t.parse(tokenStr, accessIssuer, t.accessSecret)
}

func (t *TokenIssuer) ParseRefreshToken(tokenStr string) (*Claims, error) {
	return t.parse(tokenStr, refreshIssuer, t.refreshSecret)
}

func (t *TokenIssuer) sign(userID, issuer string, ttl time.Duration, secret []byte) (string, error) {
	now := t.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (t *TokenIssuer) parse(tokenStr, issuer string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Issuer != issuer || claims.UserID == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
