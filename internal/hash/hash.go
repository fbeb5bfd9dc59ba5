package hash

import "golang.org/x/crypto/bcrypt"

// Cost matches the work factor the shop has always stored hashes with.
const Cost = 12

func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = Cost
	}
	hashbytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}

	return string(hashbytes), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
