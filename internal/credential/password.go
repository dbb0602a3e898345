package credential

import "golang.org/x/crypto/bcrypt"

// HashPassword returns a bcrypt hash of plain using the configured cost.
// Every call draws a fresh salt, so two hashes of the same password differ.
func (s *Service) HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), s.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword compares a bcrypt hash with a plain password.  A malformed
// or empty hash simply does not match.
func (s *Service) VerifyPassword(hash, plain string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
