package api

import (
	"crypto/tls"
	"os"

	"github.com/AaronLay10/TowerEngine/internal/logger"
)

// TLSConfig holds certificate paths.
type TLSConfig struct {
	CertFile string
	KeyFile  string
}

var tlsConfig *TLSConfig

// InitTLS reads HANOI_TLS_CERT and HANOI_TLS_KEY. TLS is on only when both are set.
func InitTLS() {
	certFile := os.Getenv("HANOI_TLS_CERT")
	keyFile := os.Getenv("HANOI_TLS_KEY")

	tlsConfig = nil
	if certFile != "" && keyFile != "" {
		tlsConfig = &TLSConfig{CertFile: certFile, KeyFile: keyFile}
	}
}

// IsTLSEnabled returns true if TLS is configured.
func IsTLSEnabled() bool {
	return tlsConfig != nil && tlsConfig.CertFile != "" && tlsConfig.KeyFile != ""
}

// GetTLSConfig returns the current TLS configuration (may be nil).
func GetTLSConfig() *TLSConfig {
	return tlsConfig
}

// LoadTLSConfig loads the key pair. It returns nil, and logs, on failure.
func LoadTLSConfig() *tls.Config {
	if !IsTLSEnabled() {
		return nil
	}

	cert, err := tls.LoadX509KeyPair(tlsConfig.CertFile, tlsConfig.KeyFile)
	if err != nil {
		logger.For("api").Errorw("load TLS certificate", "cert", tlsConfig.CertFile, "error", err)
		return nil
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
}

// SetTLSConfigForTest allows tests to set TLS config directly.
func SetTLSConfigForTest(cfg *TLSConfig) {
	tlsConfig = cfg
}
