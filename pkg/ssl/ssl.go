package ssl

import (
	"crypto/tls"
	"fmt"
	"os"

	file "github.com/dataspace-ops/emc/pkg/files"
	"github.com/pkg/errors"
)

//VerifyKeyPair accepts an empty pair (plain HTTP) or two files holding a matching certificate and key
func VerifyKeyPair(sslCrtFile, sslKeyFile string) error {
	if sslCrtFile == "" && sslKeyFile == "" {
		return nil
	}
	if !file.Exists(sslCrtFile) || !file.Exists(sslKeyFile) {
		return fmt.Errorf("SSL certificate cannot be verified: either key or certificate file is missing")
	}
	crt, err := os.ReadFile(sslCrtFile)
	if err != nil {
		return err
	}
	key, err := os.ReadFile(sslKeyFile)
	if err != nil {
		return err
	}
	if _, err := tls.X509KeyPair(crt, key); err != nil {
		return errors.Wrapf(err, "provided TLS certificate '%s' and key '%s' are invalid", sslCrtFile, sslKeyFile)
	}
	return nil
}
