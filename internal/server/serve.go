package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

// ServeOptions controls ListenAndServe.
type ServeOptions struct {
	Addr  string
	Watch bool
	TLS   TLSOptions
}

// ListenAndServe serves the router until ctx is done, then shuts down
// gracefully. With a TLS domain set, certificates come from CertMagic.
func (s *Server) ListenAndServe(ctx context.Context, so ServeOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := &http.Server{
		Addr:              so.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	if so.TLS.Domain != "" {
		tlsConf, err := BuildCertMagicTLS(ctx, so.TLS)
		if err != nil {
			return err
		}
		srv.TLSConfig = tlsConf
	}

	watchErr := make(chan error, 1)
	if so.Watch {
		go func() { watchErr <- s.Watch(ctx) }()
	}

	serveErr := make(chan error, 1)
	go func() {
		s.log.Printf("server: listening addr=%s tls=%t", so.Addr, srv.TLSConfig != nil)
		if srv.TLSConfig != nil {
			serveErr <- srv.ListenAndServeTLS("", "")
			return
		}
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case err := <-watchErr:
		if err != nil {
			_ = srv.Close()
			return err
		}
		<-ctx.Done()
	case <-ctx.Done():
	}
	shutCtx, cancelShut := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShut()
	return srv.Shutdown(shutCtx)
}
