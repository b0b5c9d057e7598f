package lib

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandomOTPRange(t *testing.T) {
	gen := RandomOTP{}
	for i := 0; i < 1000; i++ {
		code, err := gen.Generate()
		require.NoError(t, err)
		require.Len(t, code, 4)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, otpMin)
		require.LessOrEqual(t, n, otpMax)
	}
}

func TestFixedOTPCycles(t *testing.T) {
	gen := &FixedOTP{Codes: []string{"1111", "2222"}}
	for _, expected := range []string{"1111", "2222", "1111"} {
		code, err := gen.Generate()
		require.NoError(t, err)
		require.Equal(t, expected, code)
	}
}
