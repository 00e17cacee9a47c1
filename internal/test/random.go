package test

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

const (
	hexDigits    = "0123456789abcdef"
	lowerLetters = "abcdefghijklmnopqrstuvwxyz"
)

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// RandomHex returns n pseudo-random lowercase hex characters, shaped like a
// download token when n is 64.
func RandomHex(n int) string {
	return randomFrom(hexDigits, n)
}

// RandomEmail returns a syntactically valid buyer address.
func RandomEmail() string {
	var b strings.Builder
	b.WriteString(randomFrom(lowerLetters, 4+randomIntn(8)))
	b.WriteString("@")
	b.WriteString(randomFrom(lowerLetters, 3+randomIntn(6)))
	b.WriteString(".test")
	return b.String()
}

func randomFrom(alphabet string, n int) string {
	if n <= 0 {
		return ""
	}
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = alphabet[randomIntn(len(alphabet))]
	}
	return string(buf)
}

func randomIntn(n int) int {
	rngMu.Lock()
	defer rngMu.Unlock()
	return rng.Intn(n)
}
