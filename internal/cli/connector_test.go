package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dataspace-ops/emc/pkg/inventory"
	"github.com/dataspace-ops/emc/pkg/logger"
	"github.com/dataspace-ops/emc/pkg/model"
	"github.com/dataspace-ops/emc/pkg/repository"
	"github.com/dataspace-ops/emc/pkg/test"
	"github.com/stretchr/testify/require"
)

const specYAML = `name: acme
bpn: BPNL000000000001
version: 0.10.2
url: https://acme.example
database:
  password: s3cr3t
`

func TestReadConnectorSpec(t *testing.T) {
	t.Run("From file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "acme.yaml")
		require.NoError(t, os.WriteFile(path, []byte(specYAML), 0600))

		spec, err := ReadConnectorSpec(path, nil)
		require.NoError(t, err)
		require.Equal(t, "acme", spec.Name)
		require.Equal(t, "s3cr3t", spec.Database.Password)
	})

	t.Run("From stdin as JSON", func(t *testing.T) {
		spec, err := ReadConnectorSpec("-", strings.NewReader(`{"name":"beta","version":"0.11.0"}`))
		require.NoError(t, err)
		require.Equal(t, "beta", spec.Name)
		require.Equal(t, "0.11.0", spec.Version)
	})

	t.Run("Unknown field", func(t *testing.T) {
		_, err := ReadConnectorSpec("-", strings.NewReader("name: acme\ncolour: blue\n"))
		require.Error(t, err)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := ReadConnectorSpec(filepath.Join(t.TempDir(), "missing.yaml"), nil)
		require.Error(t, err)
	})
}

func TestResolveConnector(t *testing.T) {
	inv := inventory.NewInventory(test.NewTestConnection(t), logger.NewOptionalLogger(true), nil)
	connector, err := inv.Create(&model.ConnectorEntity{
		Name:      "acme",
		URL:       "https://acme.example",
		BPN:       "BPNL000000000001",
		Chart:     "tractusx-connector",
		Version:   "0.10.2",
		Namespace: "edc",
		Status:    model.ConnectorStatusUnknown,
		CreatedBy: "test",
	}, nil, nil)
	require.NoError(t, err)

	byID, err := ResolveConnector(inv, connector.ID)
	require.NoError(t, err)
	require.Equal(t, "acme", byID.Name)

	byName, err := ResolveConnector(inv, "acme")
	require.NoError(t, err)
	require.Equal(t, connector.ID, byName.ID)

	_, err = ResolveConnector(inv, "unknown")
	require.True(t, repository.IsNotFoundError(err))
}
