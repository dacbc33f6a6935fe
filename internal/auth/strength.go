package auth

import (
	"errors"
	"strings"
	"unicode"
)

const senhaSimbolos = "!@#$%^&*()_+-=[]{};':\"\\|,.<>/?"

var (
	ErrSenhaCurta      = errors.New("a senha deve ter pelo menos 8 caracteres")
	ErrSenhaSemMaiusc  = errors.New("a senha deve conter pelo menos uma letra maiúscula")
	ErrSenhaSemNumero  = errors.New("a senha deve conter pelo menos um número")
	ErrSenhaSemSimbolo = errors.New("a senha deve conter pelo menos um caractere especial")
)

// ValidarSenhaForte exige 8+ caracteres, maiúscula, número e símbolo.
func ValidarSenhaForte(senha string) error {
	if len([]rune(senha)) < 8 {
		return ErrSenhaCurta
	}

	var maiuscula, numero, simbolo bool
	for _, r := range senha {
		switch {
		case unicode.IsUpper(r):
			maiuscula = true
		case unicode.IsDigit(r):
			numero = true
		case strings.ContainsRune(senhaSimbolos, r):
			simbolo = true
		}
	}

	switch {
	case !maiuscula:
		return ErrSenhaSemMaiusc
	case !numero:
		return ErrSenhaSemNumero
	case !simbolo:
		return ErrSenhaSemSimbolo
	}
	return nil
}
