package grid

import (
	"encoding/binary"
	"fmt"
	"math"
)

// WordSize is the width of one slot in the wire format.
const WordSize = 8

// BufSize returns the buffer size that holds any grid function with at most
// nMax points: one size slot followed by the samples.
func BufSize(nMax int) int {
	return (nMax + 1) * WordSize
}

// Pack writes u into buf as float64(N) followed by the N samples, all
// little-endian IEEE-754 doubles. It returns the number of bytes written.
func Pack(u *GridFunction, buf []byte) (int, error) {
	if u.Released() {
		return 0, fmt.Errorf("pack: %w", ErrReleased)
	}
	need := BufSize(u.N)
	if len(buf) < need {
		return 0, fmt.Errorf("pack: %w: need %d bytes, have %d", ErrBuffer, need, len(buf))
	}
	binary.LittleEndian.PutUint64(buf, math.Float64bits(float64(u.N)))
	for i, v := range u.Sol {
		binary.LittleEndian.PutUint64(buf[(i+1)*WordSize:], math.Float64bits(v))
	}
	return need, nil
}

// Unpack reads a grid function written by Pack. The spacing is recomputed
// from the domain length since it is not part of the wire format.
func Unpack(buf []byte, length float64) (*GridFunction, error) {
	if len(buf) < WordSize {
		return nil, fmt.Errorf("unpack: %w: %d bytes, no size slot", ErrBuffer, len(buf))
	}
	size := math.Float64frombits(binary.LittleEndian.Uint64(buf))
	if math.IsNaN(size) || size < 2 || size > MaxPoints || size != math.Trunc(size) {
		return nil, fmt.Errorf("unpack: %w: bad size field %v", ErrBuffer, size)
	}
	n := int(size)
	if need := BufSize(n); len(buf) < need {
		return nil, fmt.Errorf("unpack: %w: size field says %d points (%d bytes), have %d bytes",
			ErrBuffer, n, need, len(buf))
	}
	u, err := New(n, length)
	if err != nil {
		return nil, fmt.Errorf("unpack: %w", err)
	}
	for i := range u.Sol {
		u.Sol[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[(i+1)*WordSize:]))
	}
	return u, nil
}

// Pack writes u into buf; see the package-level Pack.
func (u *GridFunction) Pack(buf []byte) (int, error) {
	return Pack(u, buf)
}
