// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/fsh

package refpack

import "fmt"

const (
	maxLiteralRun = 112 // longest run of the 1 byte literal opcode
	maxCopyLen    = 1028
	maxOffset     = 131072

	hashBits  = 16
	maxChain  = 128
	minMatch  = 3
	noMatchAt = -1
)

// Compress encodes src as a RefPack stream without a compressed-size
// prefix. Payloads above 16 MiB set the large-file flag.
func Compress(src []byte) ([]byte, error) {
	if int64(len(src)) > int64(^uint32(0)) {
		return nil, fmt.Errorf("%w: %d bytes", ErrInputTooLarge, len(src))
	}

	flags := byte(0x10)
	if len(src) > 0xFFFFFF {
		flags |= FlagLargeFile
	}
	fieldLen := sizeFieldLength(flags)

	dst := make([]byte, 2+fieldLen, 2+fieldLen+len(src)+len(src)/maxLiteralRun+8)
	dst[0] = flags
	dst[1] = Signature
	putSize(dst[2:], len(src))

	m := newMatcher(len(src))
	literalStart := 0

	for pos := 0; pos+minMatch <= len(src); {
		length, offset := m.find(src, pos)
		if length == 0 {
			m.insert(src, pos)
			pos++
			continue
		}

		var plain []byte
		dst, plain = emitLiterals(dst, src[literalStart:pos])
		dst = emitCopy(dst, plain, length, offset)

		for end := pos + length; pos < end; pos++ {
			if pos+minMatch <= len(src) {
				m.insert(src, pos)
			}
		}
		literalStart = pos
	}

	dst, tail := emitLiterals(dst, src[literalStart:])
	dst = append(dst, byte(opStop|len(tail)))
	dst = append(dst, tail...)

	return dst, nil
}

// emitLiterals writes 1 byte literal opcodes for lit in multiples of 4 and
// returns the 0-3 leftover bytes the next opcode has to carry.
func emitLiterals(dst, lit []byte) ([]byte, []byte) {
	for len(lit) > 3 {
		n := len(lit) &^ 3
		if n > maxLiteralRun {
			n = maxLiteralRun
		}
		dst = append(dst, byte(opLiteral|((n-4)>>2)))
		dst = append(dst, lit[:n]...)
		lit = lit[n:]
	}

	return dst, lit
}

// emitCopy writes the shortest opcode able to carry a back-reference of
// length bytes at offset, preceded by up to 3 literal bytes.
func emitCopy(dst, plain []byte, length, offset int) []byte {
	p := len(plain)
	o := offset - 1

	switch {
	case length <= 10 && offset <= 1024:
		dst = append(dst,
			byte(((o>>8)<<5)|((length-3)<<2)|p),
			byte(o),
		)
	case length <= 67 && offset <= 16384:
		dst = append(dst,
			byte(opTwoByte|(length-4)),
			byte((p<<6)|(o>>8)),
			byte(o),
		)
	default:
		l := length - 5
		dst = append(dst,
			byte(opFourByte|((o>>16)<<4)|((l>>8)<<2)|p),
			byte(o>>8),
			byte(o),
			byte(l),
		)
	}

	return append(dst, plain...)
}

// matcher finds back-references with hash chains over 3 byte prefixes.
type matcher struct {
	head []int32
	prev []int32
}

func newMatcher(n int) *matcher {
	m := &matcher{
		head: make([]int32, 1<<hashBits),
		prev: make([]int32, n),
	}
	for i := range m.head {
		m.head[i] = noMatchAt
	}

	return m
}

func hash3(b []byte) uint32 {
	v := uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
	return (v * 2654435761) >> (32 - hashBits)
}

func (m *matcher) insert(src []byte, pos int) {
	h := hash3(src[pos:])
	m.prev[pos] = m.head[h]
	m.head[h] = int32(pos)
}

// find returns the longest usable match at pos, or zero length.
func (m *matcher) find(src []byte, pos int) (int, int) {
	limit := len(src) - pos
	if limit > maxCopyLen {
		limit = maxCopyLen
	}

	bestLen, bestOff := 0, 0
	cand := m.head[hash3(src[pos:])]
	for chain := 0; cand != noMatchAt && chain < maxChain; chain++ {
		offset := pos - int(cand)
		if offset > maxOffset {
			break
		}

		n := 0
		for n < limit && src[int(cand)+n] == src[pos+n] {
			n++
		}
		if n > bestLen && usable(n, offset) {
			bestLen, bestOff = n, offset
			if n == limit {
				break
			}
		}
		cand = m.prev[cand]
	}

	return bestLen, bestOff
}

// usable reports whether an opcode exists for the length and offset pair.
func usable(length, offset int) bool {
	switch {
	case offset <= 1024:
		return length >= 3
	case offset <= 16384:
		return length >= 4
	default:
		return length >= 5
	}
}
