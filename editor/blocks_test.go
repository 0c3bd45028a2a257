package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBlocks() []Block {
	return []Block{
		{Type: KindParagraph, Value: "eins"},
		{Type: KindImage, Value: "https://cdn.example/a.png", Caption: "A"},
		{Type: KindParagraph, Value: "drei"},
	}
}

func TestInsertAfterIndex(t *testing.T) {
	seq := sampleBlocks()
	out := Insert(seq, 0, KindImage)

	require.Len(t, out, 4)
	assert.Equal(t, "eins", out[0].Value)
	assert.Equal(t, KindImage, out[1].Type)
	assert.Equal(t, "", out[1].Value)
	assert.Equal(t, "https://cdn.example/a.png", out[2].Value)
	assert.Equal(t, "drei", out[3].Value)

	// Eingabe bleibt unberührt.
	assert.Equal(t, sampleBlocks(), seq)
}

func TestInsertClampsIndex(t *testing.T) {
	seq := sampleBlocks()

	front := Insert(seq, -5, KindParagraph)
	require.Len(t, front, 4)
	assert.Equal(t, Block{Type: KindParagraph}, front[0])
	assert.Equal(t, "eins", front[1].Value)

	back := Insert(seq, 99, KindParagraph)
	require.Len(t, back, 4)
	assert.Equal(t, "", back[3].Value)
}

func TestInsertThenRemoveIsIdentity(t *testing.T) {
	seq := sampleBlocks()
	for idx := -1; idx < len(seq); idx++ {
		out := Insert(seq, idx, KindImage)
		out = Remove(out, idx+1)
		assert.Equal(t, seq, out, "insert at %d then remove must restore the sequence", idx)
	}
}

func TestRemoveNeverLeavesEmptySequence(t *testing.T) {
	seq := []Block{{Type: KindImage, Value: "https://cdn.example/only.png"}}
	out := Remove(seq, 0)

	require.Len(t, out, 1)
	assert.Equal(t, KindParagraph, out[0].Type)
	assert.Equal(t, "", out[0].Value)
}

func TestRemoveOutOfRangeIsNoop(t *testing.T) {
	seq := sampleBlocks()
	assert.Equal(t, seq, Remove(seq, -1))
	assert.Equal(t, seq, Remove(seq, 3))
}

func TestMoveBoundariesAreNoops(t *testing.T) {
	seq := sampleBlocks()

	assert.Equal(t, seq, MoveUp(seq, 0))
	assert.Equal(t, seq, MoveDown(seq, len(seq)-1))
	assert.Equal(t, seq, MoveUp(seq, -1))
	assert.Equal(t, seq, MoveDown(seq, len(seq)))
}

func TestMoveSwapsNeighbours(t *testing.T) {
	seq := sampleBlocks()

	up := MoveUp(seq, 1)
	assert.Equal(t, KindImage, up[0].Type)
	assert.Equal(t, "eins", up[1].Value)
	assert.Equal(t, "drei", up[2].Value)

	down := MoveDown(seq, 1)
	assert.Equal(t, "eins", down[0].Value)
	assert.Equal(t, "drei", down[1].Value)
	assert.Equal(t, KindImage, down[2].Type)

	// MoveDown macht MoveUp rückgängig.
	assert.Equal(t, seq, MoveDown(MoveUp(seq, 1), 0))
}

func TestUpdateFieldTouchesExactlyOneBlock(t *testing.T) {
	seq := sampleBlocks()

	out := UpdateField(seq, 1, FieldCaption, "Neue Unterschrift")
	assert.Equal(t, "Neue Unterschrift", out[1].Caption)
	assert.Equal(t, seq[0], out[0])
	assert.Equal(t, seq[2], out[2])
	assert.Equal(t, "A", seq[1].Caption)

	out = UpdateField(seq, 2, FieldValue, "drei neu")
	assert.Equal(t, "drei neu", out[2].Value)
	assert.Equal(t, "drei", seq[2].Value)

	assert.Equal(t, seq, UpdateField(seq, 99, FieldValue, "x"))
}

func TestNormalizeDropsUnknownKindsAndInternalState(t *testing.T) {
	seq := []Block{
		{Type: KindParagraph, Value: "text", Caption: "wird verworfen"},
		{Type: Kind("video"), Value: "https://cdn.example/clip.mp4"},
		{Type: KindImage, Value: "https://cdn.example/a.png", Caption: "A", PublicID: "articles/a"},
	}
	out := Normalize(seq)

	require.Len(t, out, 2)
	assert.Equal(t, Block{Type: KindParagraph, Value: "text"}, out[0])
	assert.Equal(t, Block{Type: KindImage, Value: "https://cdn.example/a.png", Caption: "A", PublicID: "articles/a"}, out[1])
}

func TestEncodeDecodeBlocks(t *testing.T) {
	seq := []Block{
		{Type: KindParagraph, Value: "hallo"},
		{Type: KindImage, Value: "https://cdn.example/a.png", Caption: "A", PublicID: "articles/a"},
	}
	raw, err := EncodeBlocks(seq)
	require.NoError(t, err)

	back, err := DecodeBlocks(raw)
	require.NoError(t, err)
	assert.Equal(t, seq, back)

	empty, err := DecodeBlocks(nil)
	require.NoError(t, err)
	assert.Nil(t, empty)
}
