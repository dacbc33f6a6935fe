package auth

import (
	"crypto/rand"
	"encoding/hex"
)

// GerarTokenCompartilhamento cria token opaco de 128 bits em hexadecimal.
func GerarTokenCompartilhamento() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
