package persistence

import (
	"golang.org/x/crypto/bcrypt"
)

const defaultBcryptCost = 12

// BcryptHasher hashes account credentials before they reach the database.
// Provisioned accounts authenticate at the provider, but the stored
// credential still has to be a proper hash: it becomes live the moment an
// admin or the reset flow turns it into a usable password.
type BcryptHasher struct {
	Cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = defaultBcryptCost
	}
	return &BcryptHasher{Cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	return string(bytes), err
}

func (h *BcryptHasher) Compare(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
