package domain

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// GenerateOTP returns a 6-digit numeric one-time code drawn from
// crypto/rand.
func GenerateOTP() string {
	var b strings.Builder
	for i := 0; i < 6; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			panic(err) // crypto/rand never fails on supported platforms
		}
		b.WriteString(n.String())
	}
	return b.String()
}

// GenerateToken returns a 256-bit URL-safe session token.
func GenerateToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}

// GenerateOrderNumber builds ORD-<timestamp>-<random suffix>. The suffix is
// 3 random bytes; the store additionally enforces uniqueness.
func GenerateOrderNumber(now time.Time) string {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102150405"), strings.ToUpper(hex.EncodeToString(buf)))
}

// Rupees renders paise as a rupee amount for logs and prompts.
func Rupees(paise int64) string {
	sign := ""
	if paise < 0 {
		sign = "-"
		paise = -paise
	}
	return fmt.Sprintf("%s₹%d.%02d", sign, paise/100, paise%100)
}
