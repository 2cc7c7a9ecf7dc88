package service

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

var codeRange = big.NewInt(900000)

// generateCode returns a 6-digit numeric string uniformly drawn from
// [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeRange)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

// generateDistinctCode keeps drawing until the code differs from every taken
// one, so codes within a set are never reusable across steps.
func generateDistinctCode(taken ...string) (string, error) {
	for {
		code, err := generateCode()
		if err != nil {
			return "", err
		}
		collision := false
		for _, t := range taken {
			if code == t {
				collision = true
				break
			}
		}
		if !collision {
			return code, nil
		}
	}
}
