package idgen

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levelup-fitness/levelup-core/internal/domain/shared"
)

var (
	_ shared.IDGenerator = UUID{}
	_ shared.IDGenerator = (*Sequence)(nil)
)

func TestUUID(t *testing.T) {
	a, b := UUID{}.NewID(), UUID{}.NewID()
	assert.NotEqual(t, a, b)

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
}

func TestSequence(t *testing.T) {
	seq := NewSequence("clan")
	assert.Equal(t, "clan-1", seq.NewID())
	assert.Equal(t, "clan-2", seq.NewID())
}
