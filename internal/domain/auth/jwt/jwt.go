package jwt

import "time"

type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Claims – провалидированное содержимое токена.
type Claims struct {
	Subject   string
	ID        string
	Kind      TokenKind
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type JWTUtil interface {
	// Encode подписывает claims, добавляя exp = now+ttl и iat.
	Encode(claims map[string]any, ttl time.Duration) (string, error)
	// Decode проверяет подпись и exp; любая ошибка – ErrInvalidToken.
	Decode(token string) (map[string]any, error)

	GenerateAccessToken(userID int64) (token string, exp time.Time, jti string, err error)
	GenerateRefreshToken(userID int64) (token string, exp time.Time, jti string, err error)
	ValidateAccessToken(token string) (Claims, error)
	ValidateRefreshToken(token string) (Claims, error)

	AccessTTL() time.Duration
	RefreshTTL() time.Duration
	// Leeway – сколько после exp токен ещё принимается.
	Leeway() time.Duration
}
