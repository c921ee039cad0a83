package serializer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cnserrors "github.com/NVIDIA/xm-capture/pkg/errors"
)

type testDoc struct {
	Name    string            `json:"name" yaml:"name"`
	Count   int               `json:"count" yaml:"count"`
	Labels  map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
	Items   []string          `json:"items,omitempty" yaml:"items,omitempty"`
	Elapsed time.Duration     `json:"elapsed" yaml:"elapsed"`
	hidden  string
}

func TestFormat_IsUnknown(t *testing.T) {
	tests := []struct {
		format Format
		want   bool
	}{
		{FormatJSON, false},
		{FormatYAML, false},
		{FormatTable, false},
		{Format("xml"), true},
		{Format(""), true},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.format.IsUnknown())
		})
	}
	assert.Equal(t, []string{"json", "yaml", "table"}, SupportedFormats())
}

func TestWriter_Serialize(t *testing.T) {
	doc := testDoc{Name: "sites", Count: 3, Items: []string{"a", "b"}, Elapsed: 2 * time.Second, hidden: "x"}

	tests := []struct {
		name     string
		format   Format
		contains []string
		excludes []string
	}{
		{
			name:     "json",
			format:   FormatJSON,
			contains: []string{"{\n  \"name\": \"sites\"", `"count": 3`, `"items": [`},
			excludes: []string{"hidden", "labels"},
		},
		{
			name:     "yaml",
			format:   FormatYAML,
			contains: []string{"name: sites", "count: 3", "items:\n  - a\n  - b"},
		},
		{
			name:     "table",
			format:   FormatTable,
			contains: []string{"FIELD", "VALUE", "Name", "sites", "Items.[1]", "Elapsed", "2s"},
			excludes: []string{"hidden"},
		},
		{
			name:     "unknown falls back to json",
			format:   Format("xml"),
			contains: []string{`"name": "sites"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(tt.format, &buf)
			require.NoError(t, w.Serialize(context.Background(), doc))
			require.NoError(t, w.Close())

			out := buf.String()
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestWriter_TableEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(FormatTable, &buf).Serialize(context.Background(), struct{}{}))
	assert.Equal(t, "<empty>\n", buf.String())
}

func TestWriter_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := NewWriter(FormatJSON, &buf).Serialize(ctx, testDoc{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, buf.Len())
}

func TestNewFileWriter(t *testing.T) {
	dir := t.TempDir()

	t.Run("writes file", func(t *testing.T) {
		path := filepath.Join(dir, "doc.yaml")
		w, err := NewFileWriter(FormatFromPath(path), path)
		require.NoError(t, err)
		require.NoError(t, w.Serialize(context.Background(), testDoc{Name: "sites"}))
		require.NoError(t, w.Close())
		require.NoError(t, w.Close(), "close is idempotent")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "name: sites\n"), "got %q", data)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := NewFileWriter(FormatJSON, filepath.Join(dir, "nope", "doc.json"))
		require.Error(t, err)
		assert.Equal(t, cnserrors.ErrCodeIOFailure, cnserrors.CodeOf(err))
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := NewFileWriter(FormatJSON, "  ")
		require.Error(t, err)
		assert.Equal(t, cnserrors.ErrCodeInvalidRequest, cnserrors.CodeOf(err))
	})
}

func TestNewFileWriterOrStdout(t *testing.T) {
	w := NewFileWriterOrStdout(FormatJSON, "")
	assert.Equal(t, os.Stdout, w.output)

	w = NewFileWriterOrStdout(FormatJSON, filepath.Join(t.TempDir(), "missing", "x.json"))
	assert.Equal(t, os.Stdout, w.output)

	path := filepath.Join(t.TempDir(), "x.json")
	w = NewFileWriterOrStdout(FormatJSON, path)
	assert.NotEqual(t, os.Stdout, w.output)
	require.NoError(t, w.Close())
}
