package webserver

import (
	"crypto/tls"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TLSReloader serves the current key pair and swaps it in place when
// the files on disk change, so certificate renewal needs no restart.
type TLSReloader struct {
	certFile    string
	keyFile     string
	log         *zap.Logger
	mu          sync.RWMutex
	cert        *tls.Certificate
	lastModCert time.Time
	lastModKey  time.Time
}

func NewTLSReloader(certFile, keyFile string, log *zap.Logger) (*TLSReloader, error) {
	r := &TLSReloader{certFile: certFile, keyFile: keyFile, log: log}
	if err := r.reload(); err != nil {
		return nil, err
	}
	go r.watchFiles()
	return r, nil
}

func (r *TLSReloader) reload() error {
	cert, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.cert = &cert
	r.mu.Unlock()

	if info, err := os.Stat(r.certFile); err == nil {
		r.lastModCert = info.ModTime()
	}
	if info, err := os.Stat(r.keyFile); err == nil {
		r.lastModKey = info.ModTime()
	}

	r.log.Info("tls certificates loaded", zap.String("cert", r.certFile))
	return nil
}

func (r *TLSReloader) watchFiles() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		certInfo, err := os.Stat(r.certFile)
		if err != nil {
			r.log.Warn("stat cert file failed", zap.Error(err))
			continue
		}
		keyInfo, err := os.Stat(r.keyFile)
		if err != nil {
			r.log.Warn("stat key file failed", zap.Error(err))
			continue
		}

		if certInfo.ModTime().After(r.lastModCert) || keyInfo.ModTime().After(r.lastModKey) {
			if err := r.reload(); err != nil {
				r.log.Error("tls reload failed", zap.Error(err))
			}
		}
	}
}

// GetCertificate plugs into tls.Config.
func (r *TLSReloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cert, nil
}
