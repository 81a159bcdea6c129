package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caddyserver/certmagic"
)

// TLSOptions configures automatic certificates.
type TLSOptions struct {
	Domain     string
	Email      string
	StorageDir string // defaults to XDG or ~/.cache/stackshelf/certmagic
	CA         string // defaults to Let's Encrypt production
}

// BuildCertMagicTLS provisions or loads a certificate for the domain and
// returns a TLS config that keeps it renewed. The listener must be
// reachable on :443 for the TLS-ALPN challenge.
func BuildCertMagicTLS(ctx context.Context, cfg TLSOptions) (*tls.Config, error) {
	if cfg.Domain == "" {
		return nil, errors.New("domain is required")
	}
	if cfg.StorageDir == "" {
		if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
			cfg.StorageDir = filepath.Join(xdg, "stackshelf", "certmagic")
		} else {
			home, _ := os.UserHomeDir()
			cfg.StorageDir = filepath.Join(home, ".cache", "stackshelf", "certmagic")
		}
	}
	if err := os.MkdirAll(cfg.StorageDir, 0o700); err != nil {
		return nil, fmt.Errorf("cert storage: %w", err)
	}

	cm := certmagic.NewDefault()
	cm.Storage = &certmagic.FileStorage{Path: cfg.StorageDir}
	ca := cfg.CA
	if ca == "" {
		ca = certmagic.LetsEncryptProductionCA
	}
	cm.Issuers = []certmagic.Issuer{certmagic.NewACMEIssuer(cm, certmagic.ACMEIssuer{
		CA:                   ca,
		Email:                cfg.Email,
		Agreed:               true,
		DisableHTTPChallenge: true,
	})}
	if err := cm.ManageSync(ctx, []string{cfg.Domain}); err != nil {
		return nil, err
	}
	tlsConf := cm.TLSConfig()
	tlsConf.NextProtos = append([]string{"h2", "http/1.1"}, tlsConf.NextProtos...)
	tlsConf.MinVersion = tls.VersionTLS12
	return tlsConf, nil
}
