package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatter(t *testing.T) {
	t.Run("Table", func(t *testing.T) {
		out := render(t, "table")
		require.Contains(t, out, "NAME")
		require.Contains(t, out, "APP VERSION")
		require.Contains(t, out, "acme")
		require.Contains(t, out, `{"assets":"https://acme/management/v3/assets"}`)
		require.Contains(t, out, "true")
	})

	t.Run("JSON", func(t *testing.T) {
		require.Equal(t, `[
  {
    "appVersion": "0.10.2",
    "name": "acme",
    "ready": true,
    "resources": {
      "assets": "https://acme/management/v3/assets"
    }
  },
  {
    "appVersion": "0.9.0",
    "name": "beta",
    "ready": false,
    "resources": {}
  }
]
`, render(t, "json"))
	})

	t.Run("YAML", func(t *testing.T) {
		require.Equal(t, `- appVersion: 0.10.2
  name: acme
  ready: true
  resources:
    assets: https://acme/management/v3/assets
- appVersion: 0.9.0
  name: beta
  ready: false
  resources: {}
`, render(t, "yaml"))
	})

	t.Run("Unsupported format", func(t *testing.T) {
		_, err := NewOutputFormatter("xml")
		require.Error(t, err)
	})

	t.Run("Column mismatch", func(t *testing.T) {
		of, err := NewOutputFormatter("table")
		require.NoError(t, err)
		require.NoError(t, of.Header("A", "B"))
		require.Error(t, of.AddRow("1"))
	})
}

func render(t *testing.T, format string) string {
	of, err := NewOutputFormatter(format)
	require.NoError(t, err)
	require.NoError(t, of.Header("Name", "App Version", "Ready", "Resources"))
	require.NoError(t, of.AddRow("acme", "0.10.2", true, map[string]string{"assets": "https://acme/management/v3/assets"}))
	require.NoError(t, of.AddRow("beta", "0.9.0", false, map[string]string{}))

	var buffer bytes.Buffer
	require.NoError(t, of.Output(&buffer))
	return buffer.String()
}
