package ssl

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"time"

	file "github.com/dataspace-ops/emc/pkg/files"
	"github.com/pkg/errors"
)

const (
	pkBits   = 2048
	validity = 1 //years
)

//GenerateCertificate creates a self signed server certificate and returns the PEM encoded key and certificate
func GenerateCertificate(commonName string, dnsNames []string) (key []byte, cert []byte, err error) {
	pk, err := rsa.GenerateKey(rand.Reader, pkBits)
	if err != nil {
		return nil, nil, err
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 64))
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	certTpl := x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: commonName},
		NotBefore:             now,
		NotAfter:              now.AddDate(validity, 0, 0),
		BasicConstraintsValid: true,
		DNSNames:              dnsNames,
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	certBytes, err := x509.CreateCertificate(rand.Reader, &certTpl, &certTpl, &pk.PublicKey, pk)
	if err != nil {
		return nil, nil, err
	}

	var keyBuf, certBuf bytes.Buffer
	if err := pem.Encode(&keyBuf, &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(pk)}); err != nil {
		return nil, nil, err
	}
	if err := pem.Encode(&certBuf, &pem.Block{Type: "CERTIFICATE", Bytes: certBytes}); err != nil {
		return nil, nil, err
	}
	return keyBuf.Bytes(), certBuf.Bytes(), nil
}

//EnsureKeyPair writes a self signed key pair unless both files exist already
func EnsureKeyPair(sslCrtFile, sslKeyFile, commonName string) (bool, error) {
	if file.Exists(sslCrtFile) && file.Exists(sslKeyFile) {
		return false, nil
	}
	key, cert, err := GenerateCertificate(commonName, []string{commonName})
	if err != nil {
		return false, errors.Wrap(err, "failed to generate self signed certificate")
	}
	if err := file.WriteAtomic(sslKeyFile, key, 0600); err != nil {
		return false, err
	}
	if err := file.WriteAtomic(sslCrtFile, cert, 0644); err != nil {
		return false, err
	}
	return true, nil
}
