package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dataspace-ops/emc/pkg/deployment"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

type Webserver struct {
	Logger     *zap.SugaredLogger
	Port       int
	SSLCrtFile string
	SSLKeyFile string
	Handler    http.Handler
	server     *http.Server
}

func (s *Webserver) logger() *zap.SugaredLogger {
	if s.Logger == nil {
		s.Logger = zap.NewNop().Sugar()
	}
	return s.Logger
}

//Start blocks until the context is closed or the listener fails
func (s *Webserver) Start(ctx context.Context) error {
	s.logger().Infof("Webserver starting and listening on port %d", s.Port)
	errCh := s.startServer()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger().Info("Webserver stopping (context got closed)")
		return s.stopServer()
	}
}

func (s *Webserver) startServer() <-chan error {
	errCh := make(chan error, 1)
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.Port),
		Handler:           s.Handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		var err error
		if s.SSLCrtFile != "" && s.SSLKeyFile != "" {
			err = s.server.ListenAndServeTLS(s.SSLCrtFile, s.SSLKeyFile)
		} else {
			err = s.server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			s.logger().Errorf("Webserver startup failed: %s", err)
			errCh <- err
		}
	}()
	return errCh
}

func (s *Webserver) stopServer() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.server.Shutdown(ctx)
	if err == nil {
		s.logger().Info("Webserver gracefully stopped")
	} else {
		s.logger().Errorf("Webserver shutdown failed: %s", err)
	}
	return err
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	err    error
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) recordError(err error) {
	r.err = err
}

//AccessLog logs method, path, status and duration of every request. Failed requests are logged
//with their full error, including details which are not sent to the client.
func AccessLog(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)
			if recorder.err != nil {
				logger.Warnf("%s %s -> %d (%s): %s", r.Method, r.URL.Path, recorder.status, time.Since(start), diagnostic(recorder.err))
				return
			}
			logger.Debugf("%s %s -> %d (%s)", r.Method, r.URL.Path, recorder.status, time.Since(start))
		})
	}
}

//diagnostic adds the captured tool output of deployment errors to the message
func diagnostic(err error) string {
	var failure *deployment.DeploymentFailure
	if errors.As(err, &failure) && failure.Output != "" {
		return fmt.Sprintf("%s [tool output: %q]", err, failure.Output)
	}
	var parseErr *deployment.ParseError
	if errors.As(err, &parseErr) {
		return fmt.Sprintf("%s [tool output: %q]", err, parseErr.Content)
	}
	return err.Error()
}
