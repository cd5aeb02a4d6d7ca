package pkg

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	gameIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	gameIDLength   = 7
)

// GenerateGameID - generates a short room code that players can type, e.g. "K3X9Q0B".
func GenerateGameID() (string, error) {
	id := make([]byte, gameIDLength)
	limit := big.NewInt(int64(len(gameIDAlphabet)))

	for i := range id {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to read random: %w", err)
		}
		id[i] = gameIDAlphabet[n.Int64()]
	}

	return string(id), nil
}

// GenerateNewSessionID - generates an opaque handle for a user or a connection.
func GenerateNewSessionID() string {
	return uuid.NewString()
}
