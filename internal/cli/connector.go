package cli

import (
	"io"
	"os"

	"github.com/dataspace-ops/emc/pkg/inventory"
	"github.com/dataspace-ops/emc/pkg/model"
	"github.com/dataspace-ops/emc/pkg/repository"
	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"
)

//ReadConnectorSpec reads a YAML or JSON connector specification. The path '-' reads from stdin.
func ReadConnectorSpec(path string, stdin io.Reader) (*model.ConnectorSpec, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read connector specification '%s'", path)
	}
	spec := &model.ConnectorSpec{}
	if err := yaml.UnmarshalStrict(data, spec); err != nil {
		return nil, errors.Wrapf(err, "connector specification '%s' is invalid", path)
	}
	return spec, nil
}

//ResolveConnector accepts the ID or the name of a connector
func ResolveConnector(inv inventory.Inventory, ref string) (*model.ConnectorEntity, error) {
	connector, err := inv.Get(ref)
	if err == nil {
		return connector, nil
	}
	if !repository.IsNotFoundError(err) {
		return nil, err
	}
	return inv.GetByName(ref)
}
