package auth

import "golang.org/x/crypto/bcrypt"

// timingHash is compared against when no customer exists so both login
// failures cost one bcrypt round.
var timingHash, _ = bcrypt.GenerateFromPassword([]byte("page-for-artists"), bcrypt.DefaultCost)

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// BurnPasswordCheck performs a throwaway comparison.
func BurnPasswordCheck(plain string) {
	_ = bcrypt.CompareHashAndPassword(timingHash, []byte(plain))
}
