package redact

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Douile/gqreplay/internal/qerrors"
)

// S5 -- raw replace, verbatim from original_source's replace_string test.
func TestStringReplace_S5(t *testing.T) {
	buffer := []byte("foo: This is a foo test")

	n, err := StringReplace(buffer, "foo", "bar")
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.Equal(t, "bar: This is a bar test", string(buffer))
}

func TestRawReplace_EmptyNeedle(t *testing.T) {
	buffer := []byte("abc")

	_, err := RawReplace(buffer, nil, nil)
	require.Error(t, err)

	var fe *qerrors.FilterError
	require.True(t, errors.As(err, &fe))
	assert.ErrorIs(t, fe, qerrors.ErrEmptyReplace)
}

func TestRawReplace_MismatchedLength(t *testing.T) {
	buffer := []byte("abc")

	_, err := RawReplace(buffer, []byte("a"), []byte("bb"))
	require.Error(t, err)
	assert.ErrorIs(t, err, qerrors.ErrMismatchReplaceLen)
}

func TestRawReplace_NotFoundIsNotAnError(t *testing.T) {
	buffer := []byte("hello world")

	n, err := StringReplace(buffer, "xyz", "123")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, "hello world", string(buffer))
}

// Overlapping needle starts (e.g. "aa" within "aaaa") are each tracked as
// their own partial match, but only disjoint occurrences are replaced and
// counted.
func TestRawReplace_OverlappingPrefixes(t *testing.T) {
	buffer := []byte("aaaa")

	n, err := StringReplace(buffer, "aa", "bb")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "bbbb", string(buffer))
}
