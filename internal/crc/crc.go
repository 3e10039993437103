// Package crc implements the two CRC algorithms used by the link layer: the
// 16-bit CRC protecting control packets (polynomial 0x100B) and the 32-bit
// link CRC protecting data packets (polynomial 0x04C11DB7).
//
// Both are computed by a bit-serial LFSR that consumes each byte least
// significant bit first, with the feedback taken from the most significant
// bit of the CRC register. This is the exact per-tick behavior of the
// hardware engines; the batch functions below are convenience wrappers over
// the same serial computation.
package crc

import "errors"

const (
	poly16 = 0x100B
	seed16 = 0xFFFF

	poly32 = 0x04C11DB7
	seed32 = 0xFFFFFFFF
)

var (
	// ErrBadDLLPLength is returned when the CRC-16 input is not the 6 data
	// bytes of a control packet.
	ErrBadDLLPLength = errors.New("crc16 input must be exactly 6 bytes")
	// ErrEmptyInput is returned when the CRC-32 input is empty.
	ErrEmptyInput = errors.New("crc32 input must not be empty")
)

// An Engine16 computes the control packet CRC one byte per tick.
type Engine16 struct {
	crc uint16
}

// NewEngine16 returns an engine initialized with the seed value.
func NewEngine16() *Engine16 {
	e := &Engine16{}
	e.Reset()
	return e
}

// Reset returns the CRC register to its seed value.
func (e *Engine16) Reset() { e.crc = seed16 }

// Update feeds one byte into the LFSR, least significant bit first.
func (e *Engine16) Update(b byte) {
	for i := 0; i < 8; i++ {
		fb := uint16(b>>i)&1 ^ e.crc>>15
		e.crc <<= 1
		if fb != 0 {
			e.crc ^= poly16
		}
	}
}

// Sum returns the current CRC register value.
func (e *Engine16) Sum() uint16 { return e.crc }

// An Engine32 computes the link CRC one byte per tick.
type Engine32 struct {
	crc uint32
}

// NewEngine32 returns an engine initialized with the seed value.
func NewEngine32() *Engine32 {
	e := &Engine32{}
	e.Reset()
	return e
}

// Reset returns the CRC register to its seed value.
func (e *Engine32) Reset() { e.crc = seed32 }

// Update feeds one byte into the LFSR, least significant bit first.
func (e *Engine32) Update(b byte) {
	for i := 0; i < 8; i++ {
		fb := uint32(b>>i)&1 ^ e.crc>>31
		e.crc <<= 1
		if fb != 0 {
			e.crc ^= poly32
		}
	}
}

// Sum returns the current CRC register value.
func (e *Engine32) Sum() uint32 { return e.crc }

// CRC16 computes the control packet CRC over the 6 data bytes of a DLLP.
func CRC16(data []byte) (uint16, error) {
	if len(data) != 6 {
		return 0, ErrBadDLLPLength
	}
	e := NewEngine16()
	for _, b := range data {
		e.Update(b)
	}
	return e.Sum(), nil
}

// Verify16 recomputes the CRC over data and compares it to got.
func Verify16(data []byte, got uint16) bool {
	want, err := CRC16(data)
	return err == nil && want == got
}

// CRC32 computes the link CRC over a data packet's payload bytes.
func CRC32(data []byte) (uint32, error) {
	if len(data) == 0 {
		return 0, ErrEmptyInput
	}
	e := NewEngine32()
	for _, b := range data {
		e.Update(b)
	}
	return e.Sum(), nil
}

// Verify32 recomputes the CRC over data and compares it to got. The received
// value is always checked by full recomputation, not by a residue shortcut.
func Verify32(data []byte, got uint32) bool {
	want, err := CRC32(data)
	return err == nil && want == got
}
