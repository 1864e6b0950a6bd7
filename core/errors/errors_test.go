package errors

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPersistence(t *testing.T) {
	t.Run("Nil", func(t *testing.T) {
		assert.NoError(t, Persistence(nil, "ctx"))
	})

	t.Run("MarksUnexpected", func(t *testing.T) {
		err := Persistence(io.ErrUnexpectedEOF, "fetch scene")
		assert.True(t, Is(err, ErrPersistence))
		assert.True(t, Is(err, io.ErrUnexpectedEOF))
		assert.Contains(t, err.Error(), "fetch scene")
	})

	t.Run("KeepsExpected", func(t *testing.T) {
		err := Persistence(Wrap(ErrNotFound, "room r1"), "fetch scene")
		assert.True(t, Is(err, ErrNotFound))
		assert.False(t, Is(err, ErrPersistence))
	})
}

func TestDecryption(t *testing.T) {
	err := Decryption(New("message authentication failed"), "open scene")
	assert.True(t, Is(err, ErrDecryption))
	assert.False(t, Is(err, ErrPersistence))
	assert.NoError(t, Decryption(nil, "x"))
}
