package password

import (
	"strings"

	authErrors "github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/auth/errors"
	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

// MaxLength – предел bcrypt: всё, что длиннее, он молча обрезает.
const MaxLength = 72

const argonPrefix = "$argon2id$"

type Hasher struct {
	cost  int
	dummy []byte
}

func NewHasher(cost int) (*Hasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("rfi-dummy-password"), cost)
	if err != nil {
		return nil, authErrors.WrapInternal(err, "dummy hash")
	}
	return &Hasher{cost: cost, dummy: dummy}, nil
}

func (h *Hasher) Hash(plain string) (string, error) {
	if len(plain) > MaxLength {
		return "", authErrors.ErrPasswordTooLong
	}
	out, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", authErrors.WrapInternal(err, "bcrypt")
	}
	return string(out), nil
}

// Verify никогда не паникует: битый хэш – просто false.
func (h *Hasher) Verify(plain, hash string) bool {
	if strings.HasPrefix(hash, argonPrefix) {
		ok, err := argon2id.ComparePasswordAndHash(plain, hash)
		return err == nil && ok
	}
	if len(plain) > MaxLength {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// NeedsRehash: хэш старой схемы (argon2id) или bcrypt с другим cost.
func (h *Hasher) NeedsRehash(hash string) bool {
	if strings.HasPrefix(hash, argonPrefix) {
		return true
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return true
	}
	return cost != h.cost
}

// BurnCompare выравнивает тайминг логина для несуществующих пользователей.
func (h *Hasher) BurnCompare(plain string) {
	if len(plain) > MaxLength {
		plain = plain[:MaxLength]
	}
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(plain))
}
