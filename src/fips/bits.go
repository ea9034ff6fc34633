package fips

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// BitCount is the length of every sequence the battery evaluates.
	BitCount = 20_000
	// BlockCount is the number of 32-bit words backing a sequence.
	BlockCount = BitCount / 32
	// SampleBytes is how many bytes ReadBits consumes from a source.
	SampleBytes = BitCount / 8

	seed          = 871246
	lcgMultiplier = 134775813
	lcgIncrement  = 1
)

// ErrBlockCount is returned when a sequence is built from the wrong number of blocks.
var ErrBlockCount = errors.New("fips: sequence must have exactly 625 blocks")

// Bits is an immutable 20,000-bit sequence. Bit i lives in block i/32 at
// position i%32, least significant bit first.
type Bits struct {
	blocks []uint32
}

// New returns the reference sequence produced by the fixed-seed LCG.
func New() *Bits {
	blocks := make([]uint32, 0, BlockCount)
	state := uint64(seed)
	for i := 0; i < BlockCount; i++ {
		blocks = append(blocks, nextBlock(&state))
	}
	return &Bits{blocks: blocks}
}

// nextBlock advances the LCG four times, packing one byte per step
// most significant byte first.
func nextBlock(state *uint64) uint32 {
	var block uint32
	for i := 0; i < 4; i++ {
		*state = (lcgMultiplier*(*state) + lcgIncrement) & 0xFFFFFFFF

		b := uint32(*state>>16) & 0xFF
		// b is already masked to 8 bits, so the fold is a no-op and the
		// emitted byte is state bits 16-23.
		block = block<<8 | ((b >> 8) ^ (b & 0xFF))
	}
	return block
}

// FromBlocks wraps a copy of blocks. It fails unless exactly BlockCount
// blocks are given.
func FromBlocks(blocks []uint32) (*Bits, error) {
	if len(blocks) != BlockCount {
		return nil, fmt.Errorf("%w: got %d", ErrBlockCount, len(blocks))
	}
	cp := make([]uint32, BlockCount)
	copy(cp, blocks)
	return &Bits{blocks: cp}, nil
}

// ReadBits samples SampleBytes from r and packs them big-endian into
// blocks, the same byte order New uses.
func ReadBits(r io.Reader) (*Bits, error) {
	buf := make([]byte, SampleBytes)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("fips: reading sample: %w", err)
	}

	blocks := make([]uint32, BlockCount)
	for i := range blocks {
		blocks[i] = binary.BigEndian.Uint32(buf[i*4 : i*4+4])
	}
	return &Bits{blocks: blocks}, nil
}

// Len reports the number of addressable bits.
func (b *Bits) Len() int { return len(b.blocks) * 32 }

// Blocks returns a copy of the backing words.
func (b *Bits) Blocks() []uint32 {
	cp := make([]uint32, len(b.blocks))
	copy(cp, b.blocks)
	return cp
}

// Bit reports whether bit idx is set. It panics if idx is out of range.
func (b *Bits) Bit(idx int) bool {
	if idx < 0 || idx >= b.Len() {
		panic(fmt.Sprintf("fips: bit index %d out of range [0, %d)", idx, b.Len()))
	}
	return (b.blocks[idx>>5]>>(idx&31))&1 == 1
}
