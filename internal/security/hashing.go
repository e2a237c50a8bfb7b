package security

import "golang.org/x/crypto/bcrypt"

// Hasher hashes and verifies storefront account passwords with bcrypt.
// Plaintext passwords exist only for the duration of a sign-in or
// registration request and must never be logged or stored.
type Hasher struct {
	Cost int
}

// NewHasher returns a Hasher with cost clamped to bcrypt's valid range.
// Non-positive cost selects bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	switch {
	case cost <= 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &Hasher{Cost: cost}
}

// Hash returns a bcrypt hash of password suitable for the users table.
func (h *Hasher) Hash(password []byte) (string, error) {
	b, err := bcrypt.GenerateFromPassword(password, h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare verifies password against a stored hash. A non-nil return means
// the credentials do not match (or the stored hash is malformed); callers
// map it to their invalid-credentials error rather than surfacing it.
func (h *Hasher) Compare(hash string, password []byte) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), password)
}
