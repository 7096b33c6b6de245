package idgen

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"

	"github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
)

// accessCodeAlphabet omits 0, O, 1 and I so codes can be read off a phone screen
const accessCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// AccessCodeLength is the number of characters in a retrieval code
const AccessCodeLength = 6

// UUIDGenerator issues random v4 UUIDs and crypto/rand access codes
type UUIDGenerator struct{}

// NewUUIDGenerator creates the generator
func NewUUIDGenerator() core.IDGenerator {
	return &UUIDGenerator{}
}

// NewID returns a random UUID string
func (g *UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// NewAccessCode returns a random upper-case code
func (g *UUIDGenerator) NewAccessCode() (string, error) {
	alphabetSize := big.NewInt(int64(len(accessCodeAlphabet)))
	code := make([]byte, AccessCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("generate access code: %w", err)
		}
		code[i] = accessCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}
