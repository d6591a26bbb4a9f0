package grid

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackUnpack_RoundTrip_BitExact(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, n := range []int{2, 5, 33, 257} {
		// GIVEN a grid function including awkward values
		u := randomGrid(t, rng, n)
		u.Sol[0] = math.Copysign(0, -1)
		u.Sol[n-1] = math.SmallestNonzeroFloat64

		// WHEN packed into a buffer sized for the finest level and unpacked
		buf := make([]byte, BufSize(257))
		written, err := u.Pack(buf)
		require.NoError(t, err)
		assert.Equal(t, (n+1)*WordSize, written)

		v, err := Unpack(buf[:written], 1.0)
		require.NoError(t, err)

		// THEN the result is bitwise identical
		require.Equal(t, u.N, v.N)
		assert.Equal(t, u.H, v.H)
		for i := range u.Sol {
			assert.Equal(t, math.Float64bits(u.Sol[i]), math.Float64bits(v.Sol[i]), "sample %d", i)
		}
	}
}

func TestPack_UndersizedBuffer_ErrBuffer(t *testing.T) {
	u, _ := New(9, 1.0)
	_, err := Pack(u, make([]byte, BufSize(8)))
	assert.ErrorIs(t, err, ErrBuffer)
}

func TestUnpack_Malformed_ErrBuffer(t *testing.T) {
	u, _ := New(9, 1.0)
	buf := make([]byte, BufSize(9))
	_, err := Pack(u, buf)
	require.NoError(t, err)

	tests := []struct {
		name string
		buf  []byte
	}{
		{"empty", nil},
		{"size slot only", buf[:WordSize]},
		{"truncated payload", buf[:len(buf)-1]},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Unpack(tc.buf, 1.0)
			assert.ErrorIs(t, err, ErrBuffer)
		})
	}
}

func TestUnpack_BadSizeField_ErrBuffer(t *testing.T) {
	for _, size := range []float64{math.NaN(), -3, 1, 4.5, math.Inf(1)} {
		buf := make([]byte, BufSize(16))
		putSize(buf, size)
		_, err := Unpack(buf, 1.0)
		assert.ErrorIs(t, err, ErrBuffer, "size=%v", size)
	}
}

func putSize(buf []byte, size float64) {
	bits := math.Float64bits(size)
	for i := 0; i < WordSize; i++ {
		buf[i] = byte(bits >> (8 * i))
	}
}
