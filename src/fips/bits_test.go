package fips

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Deterministic(t *testing.T) {
	a, b := New(), New()
	require.Equal(t, a.Blocks(), b.Blocks())
}

func TestNew_Length(t *testing.T) {
	b := New()
	assert.Equal(t, BitCount, b.Len())
	assert.Len(t, b.Blocks(), BlockCount)
	assert.Zero(t, BitCount%32)
}

func TestNew_FirstBlocks(t *testing.T) {
	got := New().Blocks()[:3]
	assert.Equal(t, []uint32{0x86df07ce, 0xa6f8b5e1, 0x24d8e8af}, got)
}

// Replays the LCG by hand: every emitted byte is bits 16-23 of the
// updated state, packed most significant byte first.
func TestNew_EmitsStateBits16To23(t *testing.T) {
	blocks := New().Blocks()

	state := uint64(871246)
	for i := 0; i < 8; i++ {
		var want uint32
		for j := 0; j < 4; j++ {
			state = (134775813*state + 1) % (1 << 32)
			want = want<<8 | uint32((state>>16)&0xFF)
		}
		require.Equalf(t, want, blocks[i], "block %d", i)
	}
}

func TestBit_AddressingLSBFirst(t *testing.T) {
	blocks := make([]uint32, BlockCount)
	blocks[0] = 1 << 3
	blocks[2] = 1 << 31
	b, err := FromBlocks(blocks)
	require.NoError(t, err)

	for i := 0; i < b.Len(); i++ {
		want := i == 3 || i == 2*32+31
		require.Equalf(t, want, b.Bit(i), "bit %d", i)
	}
}

func TestBit_MatchesBlocks(t *testing.T) {
	b := New()
	blocks := b.Blocks()
	for i := 0; i < BitCount; i++ {
		want := (blocks[i/32]>>(i%32))&1 == 1
		require.Equal(t, want, b.Bit(i))
	}
}

func TestBit_OutOfRangePanics(t *testing.T) {
	b := New()
	assert.Panics(t, func() { b.Bit(BitCount) })
	assert.Panics(t, func() { b.Bit(-1) })
	assert.NotPanics(t, func() { b.Bit(BitCount - 1) })
}

func TestBlocks_ReturnsCopy(t *testing.T) {
	b := New()
	blocks := b.Blocks()
	blocks[0] ^= 0xFFFFFFFF
	assert.NotEqual(t, blocks[0], b.Blocks()[0])
}

func TestFromBlocks_WrongLength(t *testing.T) {
	for _, n := range []int{0, BlockCount - 1, BlockCount + 1} {
		_, err := FromBlocks(make([]uint32, n))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrBlockCount))
	}
}

func TestFromBlocks_Copies(t *testing.T) {
	blocks := make([]uint32, BlockCount)
	b, err := FromBlocks(blocks)
	require.NoError(t, err)

	blocks[0] = 1
	assert.False(t, b.Bit(0))
}

func TestReadBits_BigEndianPacking(t *testing.T) {
	ref := New().Blocks()
	buf := make([]byte, SampleBytes)
	for i, w := range ref {
		binary.BigEndian.PutUint32(buf[i*4:], w)
	}

	b, err := ReadBits(bytes.NewReader(buf))
	require.NoError(t, err)
	assert.Equal(t, ref, b.Blocks())
}

func TestReadBits_ShortSource(t *testing.T) {
	_, err := ReadBits(bytes.NewReader(make([]byte, SampleBytes-1)))
	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
