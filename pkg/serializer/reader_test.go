package serializer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"config.json", FormatJSON},
		{"CONFIG.JSON", FormatJSON},
		{"config.yaml", FormatYAML},
		{"config.yml", FormatYAML},
		{"report.table", FormatTable},
		{"report.txt", FormatTable},
		{"config", FormatJSON},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFromPath(tt.path))
		})
	}
}

func TestNewReader_RejectsUnreadableFormats(t *testing.T) {
	_, err := NewReader(FormatTable, strings.NewReader(""))
	require.Error(t, err)

	_, err = NewReader(Format("xml"), strings.NewReader(""))
	require.Error(t, err)
}

func TestReader_Deserialize(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
	}{
		{"json", FormatJSON, `{"name":"groups","count":2}`},
		{"yaml", FormatYAML, "name: groups\ncount: 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReader(tt.format, strings.NewReader(tt.input))
			require.NoError(t, err)
			defer r.Close()

			var doc testDoc
			require.NoError(t, r.Deserialize(&doc))
			assert.Equal(t, "groups", doc.Name)
			assert.Equal(t, 2, doc.Count)
		})
	}

	t.Run("malformed", func(t *testing.T) {
		r, err := NewReader(FormatJSON, strings.NewReader(`{"name":`))
		require.NoError(t, err)
		var doc testDoc
		assert.Error(t, r.Deserialize(&doc))
	})

	t.Run("nil reader", func(t *testing.T) {
		var r *Reader
		assert.Error(t, r.Deserialize(&testDoc{}))
		assert.NoError(t, r.Close())
	})
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "doc.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("name: users\nlabels:\n  a: b\n"), 0o600))
	doc, err := FromFile[testDoc](yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "users", doc.Name)
	assert.Equal(t, map[string]string{"a": "b"}, doc.Labels)

	jsonPath := filepath.Join(dir, "doc.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"name":"devices"}`), 0o600))
	doc, err = FromFile[testDoc](jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "devices", doc.Name)

	_, err = FromFile[testDoc](filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	badPath := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badPath, []byte(`[`), 0o600))
	_, err = FromFile[testDoc](badPath)
	assert.Error(t, err)
}
