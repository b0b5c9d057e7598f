package lib

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

const (
	otpMin = 1000
	otpMax = 9999
)

type OTPGenerator interface {
	Generate() (string, error)
}

// RandomOTP generates 4-digit codes in [1000, 9999]
type RandomOTP struct{}

func (RandomOTP) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+otpMin, 10), nil
}

// FixedOTP always returns the same codes in order, cycling when exhausted. Used in tests and fixtures
type FixedOTP struct {
	Codes []string
	next  int
}

func (f *FixedOTP) Generate() (string, error) {
	if len(f.Codes) == 0 {
		return strconv.Itoa(otpMin), nil
	}
	code := f.Codes[f.next%len(f.Codes)]
	f.next++
	return code, nil
}
