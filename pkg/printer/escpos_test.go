package printer

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_KeyValueFillsWidth(t *testing.T) {
	doc := NewDocument(Width58mm).KeyValue("TOTAL:", "27.00")

	out := doc.Bytes()
	line := string(out[2 : len(out)-1])
	assert.Len(t, line, Width58mm)
	assert.True(t, bytes.HasPrefix(out, []byte{ESC, '@'}))
}

func TestDocument_ItemLineTruncatesLongNames(t *testing.T) {
	doc := NewDocument(Width58mm).ItemLine(12, "Extra large cappuccino with oat milk", "120.00")

	out := doc.Bytes()
	line := string(out[2 : len(out)-1])
	assert.Len(t, line, Width58mm)
	assert.Contains(t, line, "120.00")
	assert.Contains(t, line, "12x Extra")
}

func TestNew(t *testing.T) {
	p, err := New(Config{Type: "none"})
	require.NoError(t, err)
	assert.Equal(t, "none", p.Kind())
	assert.NoError(t, p.Print(context.Background(), []byte("x")))

	_, err = New(Config{Type: "usb"})
	assert.Error(t, err)

	_, err = New(Config{Type: "bluetooth"})
	assert.Error(t, err)
}
