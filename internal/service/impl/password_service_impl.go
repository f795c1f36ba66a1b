package impl

import (
	"voicebot/internal/service"

	"golang.org/x/crypto/bcrypt"
)

type PasswordServiceImpl struct {
	cost int
}

var _ service.PasswordService = (*PasswordServiceImpl)(nil)

func NewPasswordService(cost int) *PasswordServiceImpl {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordServiceImpl{cost: cost}
}

func (p *PasswordServiceImpl) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (p *PasswordServiceImpl) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
