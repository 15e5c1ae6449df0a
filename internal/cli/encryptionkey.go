package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dataspace-ops/emc/pkg/db"
	file "github.com/dataspace-ops/emc/pkg/files"
)

//NewEncryptionKey writes a new database encryption key. An existing key file is kept as backup if requested.
func NewEncryptionKey(keyFile string, backup bool) (string, error) {
	if keyFile == "" {
		return keyFile, fmt.Errorf("encryption key file not configured")
	}
	keyFile, err := filepath.Abs(keyFile)
	if err != nil {
		return keyFile, err
	}

	encKey, err := db.NewKey()
	if err != nil {
		return keyFile, err
	}

	if file.Exists(keyFile) {
		if !backup {
			return keyFile, fmt.Errorf("encryption key file '%s' exists already", keyFile)
		}
		keyFileBackup := fmt.Sprintf("%s.%d.bak", keyFile, time.Now().Unix())
		if err := os.Rename(keyFile, keyFileBackup); err != nil {
			return keyFile, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(keyFile), 0700); err != nil {
		return keyFile, err
	}
	return keyFile, file.WriteAtomic(keyFile, []byte(encKey), 0600)
}
