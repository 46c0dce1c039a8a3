// Package invitecode генерирует короткие коды приглашений в воркспейсы.
package invitecode

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// Алфавит без неоднозначных символов (0/O, 1/I/L)
const Alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const DefaultLength = 8

// Generate возвращает случайный код заданной длины из Alphabet.
func Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}

	var sb strings.Builder
	sb.Grow(length)

	max := big.NewInt(int64(len(Alphabet)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate invite code: %w", err)
		}
		sb.WriteByte(Alphabet[n.Int64()])
	}

	return sb.String(), nil
}

// Normalize приводит ввод пользователя к хранимому виду кода.
// Коды хранятся в верхнем регистре; UI тоже приводит ввод к верхнему регистру.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
