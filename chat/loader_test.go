package chat

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chat-analyzer/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleExport = `localId,StrContent,StrTime,Remark,Type
1,早上好,2024-01-01 08:00:00,Alice,1
2,<msg><img src="x"/></msg>,2024-01-01 08:01:00,Bob,3
3,,2024-01-01 08:02:00,Alice,1
4,"hello, world",2024-01-01 09:00:00,Bob,1
`

func TestRead(t *testing.T) {
	messages, err := Read(strings.NewReader(sampleExport), utils.NewNopLogger())
	require.NoError(t, err)
	require.Len(t, messages, 4)

	assert.Equal(t, "早上好", messages[0].Text)
	assert.Equal(t, "Alice", messages[0].User)
	assert.Equal(t, TypeText, messages[0].Type)
	assert.Equal(t, "2024-01-01 08:00:00", messages[0].StrTime())

	assert.Equal(t, TypeImage, messages[1].Type)
	assert.Equal(t, TypeEmpty, messages[2].Type)
	assert.Equal(t, "hello, world", messages[3].Text)
}

func TestRead_NameFallback(t *testing.T) {
	export := "StrContent,StrTime,Name\nhi,2024-01-01 08:00:00,Carol\n"

	messages, err := Read(strings.NewReader(export), utils.NewNopLogger())
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "Carol", messages[0].User)
}

func TestRead_BOMHeader(t *testing.T) {
	export := "\ufeffStrContent,StrTime,Remark\nhi,2024-01-01 08:00:00,Dan\n"

	messages, err := Read(strings.NewReader(export), utils.NewNopLogger())
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "hi", messages[0].Text)
}

func TestRead_MissingColumns(t *testing.T) {
	_, err := Read(strings.NewReader("StrContent,Remark\nhi,Bob\n"), utils.NewNopLogger())
	assert.True(t, errors.Is(err, ErrMissingColumn))

	_, err = Read(strings.NewReader("StrContent,StrTime\nhi,2024-01-01 08:00:00\n"), utils.NewNopLogger())
	assert.True(t, errors.Is(err, ErrMissingColumn))
}

func TestRead_BadTimestamp(t *testing.T) {
	_, err := Read(strings.NewReader("StrContent,StrTime,Remark\nhi,01/02/2024,Bob\n"), utils.NewNopLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.csv"), utils.NewNopLogger())
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestSample(t *testing.T) {
	messages, err := Read(strings.NewReader(sampleExport), utils.NewNopLogger())
	require.NoError(t, err)

	a := Sample(messages, 2, 7)
	b := Sample(messages, 2, 7)
	assert.Len(t, a, 2)
	assert.Equal(t, a, b)
	assert.True(t, a[0].Time.Before(a[1].Time))

	assert.Len(t, Sample(messages, 10, 1), 4)
	assert.Empty(t, Sample(messages, 0, 1))
}

func TestFilter(t *testing.T) {
	messages, err := Read(strings.NewReader(sampleExport), utils.NewNopLogger())
	require.NoError(t, err)

	text := Filter(messages, TypeText)
	assert.Len(t, text, 2)
	for _, m := range text {
		assert.Equal(t, TypeText, m.Type)
	}
}
