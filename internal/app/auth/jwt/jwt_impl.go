package jwt

import (
	"errors"
	"strconv"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/auth/errors"
	jwt2 "github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/infra/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const claimKind = "typ"

// JwtUtilImpl подписывает токены общим секретом процесса (HMAC).
// Секрет читается один раз при старте; его ротация инвалидирует все выданные токены.
type JwtUtilImpl struct {
	secret     []byte
	method     *jwt.SigningMethodHMAC
	accessTTL  time.Duration
	refreshTTL time.Duration
	leeway     time.Duration
	now        func() time.Time
}

func NewJWTUtil(cfg *config.Config) (*JwtUtilImpl, error) {
	if cfg.SecretKey == "" {
		return nil, customErrors.WrapInternal(errors.New("empty secret"), "NewJWTUtil")
	}
	method, ok := jwt.GetSigningMethod(cfg.Algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, customErrors.NewInvalidArgument("unsupported signing algorithm " + cfg.Algorithm)
	}

	return &JwtUtilImpl{
		secret:     []byte(cfg.SecretKey),
		method:     method,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		leeway:     cfg.TokenLeeway,
		now:        time.Now,
	}, nil
}

func (j *JwtUtilImpl) AccessTTL() time.Duration  { return j.accessTTL }
func (j *JwtUtilImpl) RefreshTTL() time.Duration { return j.refreshTTL }
func (j *JwtUtilImpl) Leeway() time.Duration     { return j.leeway }

func (j *JwtUtilImpl) Encode(claims map[string]any, ttl time.Duration) (string, error) {
	signed, _, err := j.encodeAt(claims, j.now(), ttl)
	return signed, err
}

func (j *JwtUtilImpl) encodeAt(claims map[string]any, now time.Time, ttl time.Duration) (string, time.Time, error) {
	exp := now.Add(ttl)

	mc := make(jwt.MapClaims, len(claims)+2)
	for k, v := range claims {
		mc[k] = v
	}
	mc["iat"] = now.Unix()
	mc["exp"] = exp.Unix()

	signed, err := jwt.NewWithClaims(j.method, mc).SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, customErrors.WrapInternal(err, "sign token")
	}
	return signed, time.Unix(exp.Unix(), 0), nil
}

func (j *JwtUtilImpl) Decode(raw string) (map[string]any, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{j.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(j.leeway),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil || !token.Valid {
		return nil, customErrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, customErrors.ErrInvalidToken
	}
	return claims, nil
}

func (j *JwtUtilImpl) GenerateAccessToken(userID int64) (token string, exp time.Time, jti string, err error) {
	return j.issue(userID, jwt2.KindAccess, j.accessTTL)
}

func (j *JwtUtilImpl) GenerateRefreshToken(userID int64) (token string, exp time.Time, jti string, err error) {
	return j.issue(userID, jwt2.KindRefresh, j.refreshTTL)
}

func (j *JwtUtilImpl) issue(userID int64, kind jwt2.TokenKind, ttl time.Duration) (string, time.Time, string, error) {
	jti := uuid.NewString()
	signed, exp, err := j.encodeAt(map[string]any{
		"sub":     strconv.FormatInt(userID, 10),
		"jti":     jti,
		claimKind: string(kind),
	}, j.now(), ttl)
	if err != nil {
		return "", time.Time{}, "", err
	}
	return signed, exp, jti, nil
}

func (j *JwtUtilImpl) ValidateAccessToken(raw string) (jwt2.Claims, error) {
	return j.validate(raw, jwt2.KindAccess)
}

func (j *JwtUtilImpl) ValidateRefreshToken(raw string) (jwt2.Claims, error) {
	return j.validate(raw, jwt2.KindRefresh)
}

// validate дополнительно требует sub и совпадение вида токена:
// refresh нельзя предъявить как bearer, access – обменять на новую пару.
func (j *JwtUtilImpl) validate(raw string, want jwt2.TokenKind) (jwt2.Claims, error) {
	decoded, err := j.Decode(raw)
	if err != nil {
		return jwt2.Claims{}, err
	}
	mc := jwt.MapClaims(decoded)

	if kind, _ := mc[claimKind].(string); kind != string(want) {
		return jwt2.Claims{}, customErrors.ErrInvalidToken
	}
	sub, err := mc.GetSubject()
	if err != nil || sub == "" {
		return jwt2.Claims{}, customErrors.ErrInvalidToken
	}
	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return jwt2.Claims{}, customErrors.ErrInvalidToken
	}
	jti, _ := mc["jti"].(string)

	claims := jwt2.Claims{
		Subject:   sub,
		ID:        jti,
		Kind:      want,
		ExpiresAt: exp.Time,
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	return claims, nil
}
