package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscript_Append(t *testing.T) {
	t.Parallel()

	tr := NewTranscript(nil, 0)

	text, err := tr.Append([]byte("hello\r\nwor"))
	require.NoError(t, err)
	assert.Equal(t, "hello\nwor", text)

	_, err = tr.Append([]byte("ld\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"hello", "world"}, tr.Lines())
	assert.Equal(t, "hello\nworld\n", tr.Text())
}

func TestTranscript_MaxLines(t *testing.T) {
	t.Parallel()

	tr := NewTranscript(nil, 2)

	_, err := tr.Append([]byte("1\n2\n3\n4"))
	require.NoError(t, err)

	assert.Equal(t, []string{"2", "3", "4"}, tr.Lines())

	tr.SetMaxLines(1)
	assert.Equal(t, []string{"3", "4"}, tr.Lines())
	assert.Equal(t, 1, tr.MaxLines())
}

func TestTranscript_Disabled(t *testing.T) {
	t.Parallel()

	tr := NewTranscript(nil, DefaultMaxLines)
	tr.SetEnabled(false)

	text, err := tr.Append([]byte("ignored\n"))
	require.NoError(t, err)
	assert.Empty(t, text)
	assert.Empty(t, tr.Lines())
	assert.False(t, tr.Enabled())
}

func TestTranscript_DropsUndecodable(t *testing.T) {
	t.Parallel()

	tr := NewTranscript(nil, DefaultMaxLines)

	_, err := tr.Append([]byte{0xc3})
	require.ErrorIs(t, err, ErrUndecodable)
	assert.Empty(t, tr.Text())
}

func TestTranscript_Clear(t *testing.T) {
	t.Parallel()

	tr := NewTranscript(nil, DefaultMaxLines)
	_, err := tr.Append([]byte("a\nb"))
	require.NoError(t, err)

	tr.Clear()
	assert.Empty(t, tr.Lines())
	assert.Equal(t, "", tr.Text())
}
