package test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

//fakeHelm fails to install release "broken" and does not know release "gone".
//It lists the single release "acme".
const fakeHelm = `#!/bin/sh
case "$1" in
  install)
    if [ "$2" = "broken" ]; then
      echo "Error: INSTALLATION FAILED: chart requires kubeVersion" >&2
      exit 1
    fi
    echo "STATUS: deployed"
    ;;
  uninstall)
    if [ "$2" = "gone" ]; then
      echo "Error: uninstall: Release not loaded: gone: release: not found" >&2
      exit 1
    fi
    echo "release \"$2\" uninstalled"
    ;;
  list)
    printf 'NAME\tNAMESPACE\tREVISION\tUPDATED\tSTATUS\tCHART\tAPP VERSION\n'
    printf 'acme\tedc\t1\t2024-03-01 10:15:02 +0000 UTC\tdeployed\ttractusx-connector-0.10.2\t0.10.2\n'
    ;;
esac
exit 0
`

//NewFakeHelm writes an executable stand-in for the helm CLI and returns its path
func NewFakeHelm(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "helm")
	require.NoError(t, os.WriteFile(path, []byte(fakeHelm), 0700)) //nolint:gosec //test binary has to be executable
	return path
}
