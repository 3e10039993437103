package crc

import (
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/require"
)

func TestCRC16RejectsBadLengths(t *testing.T) {
	for _, n := range []int{0, 1, 5, 7, 8} {
		_, err := CRC16(make([]byte, n))
		require.ErrorIs(t, err, ErrBadDLLPLength)
	}
	_, err := CRC16(make([]byte, 6))
	require.NoError(t, err)
}

func TestCRC32RejectsEmptyInput(t *testing.T) {
	_, err := CRC32(nil)
	require.ErrorIs(t, err, ErrEmptyInput)
	_, err = CRC32([]byte{})
	require.ErrorIs(t, err, ErrEmptyInput)
	_, err = CRC32([]byte{0})
	require.NoError(t, err)
}

func TestCRC16RoundTrip(t *testing.T) {
	f := func(data [6]byte) bool {
		c, err := CRC16(data[:])
		return err == nil && Verify16(data[:], c)
	}
	require.NoError(t, quick.Check(f, nil))
}

func TestCRC32RoundTrip(t *testing.T) {
	f := func(data []byte) bool {
		if len(data) == 0 {
			return true
		}
		c, err := CRC32(data)
		return err == nil && Verify32(data, c)
	}
	require.NoError(t, quick.Check(f, nil))
}

func TestCRC16DetectsSingleBitFlips(t *testing.T) {
	data := []byte{0x00, 0x2A, 0x00, 0x00, 0x00, 0x00}
	c, err := CRC16(data)
	require.NoError(t, err)
	// flip every data bit
	for i := range data {
		for bit := 0; bit < 8; bit++ {
			flipped := append([]byte{}, data...)
			flipped[i] ^= 1 << bit
			require.False(t, Verify16(flipped, c), "bit %d of byte %d", bit, i)
		}
	}
	// flip every CRC bit
	for bit := 0; bit < 16; bit++ {
		require.False(t, Verify16(data, c^(1<<bit)))
	}
}

func TestCRC32DetectsSingleBitFlips(t *testing.T) {
	data := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0xCA, 0xFE, 0xBA, 0xBE}
	c, err := CRC32(data)
	require.NoError(t, err)
	for i := range data {
		for bit := 0; bit < 8; bit++ {
			flipped := append([]byte{}, data...)
			flipped[i] ^= 1 << bit
			require.False(t, Verify32(flipped, c), "bit %d of byte %d", bit, i)
		}
	}
	for bit := 0; bit < 32; bit++ {
		require.False(t, Verify32(data, c^(1<<bit)))
	}
}

func TestCRC16DifferentInputsDiffer(t *testing.T) {
	c1, err := CRC16([]byte{0, 0, 0, 0, 0, 0})
	require.NoError(t, err)
	c2, err := CRC16([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF})
	require.NoError(t, err)
	require.NotEqual(t, c1, c2)
}

func TestIncrementalMatchesBatch16(t *testing.T) {
	data := []byte{0x10, 0x2A, 0x05, 0x00, 0x00, 0x00}
	want, err := CRC16(data)
	require.NoError(t, err)

	e := NewEngine16()
	for _, b := range data {
		e.Update(b)
	}
	require.Equal(t, want, e.Sum())

	// the engine restarts cleanly
	e.Reset()
	for _, b := range data {
		e.Update(b)
	}
	require.Equal(t, want, e.Sum())
}

func TestIncrementalMatchesBatch32(t *testing.T) {
	f := func(data []byte) bool {
		if len(data) == 0 {
			return true
		}
		want, err := CRC32(data)
		if err != nil {
			return false
		}
		e := NewEngine32()
		for _, b := range data {
			e.Update(b)
		}
		return e.Sum() == want
	}
	require.NoError(t, quick.Check(f, nil))
}

func TestEngineResetDiscardsState(t *testing.T) {
	e := NewEngine32()
	e.Update(0xAA)
	dirty := e.Sum()
	e.Reset()
	e.Update(0xAA)
	require.Equal(t, dirty, e.Sum())
}
