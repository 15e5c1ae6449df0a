package health

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultTimeout       = 5 * time.Second
	defaultLivenessPath  = "/api/check/liveness"
	defaultReadinessPath = "/api/check/readiness"
)

type Liveness string

const (
	LivenessHealthy   Liveness = "healthy"
	LivenessUnhealthy Liveness = "unhealthy"
)

type Readiness string

const (
	ReadinessReady    Readiness = "ready"
	ReadinessNotReady Readiness = "not-ready"
)

type Config struct {
	Timeout time.Duration `mapstructure:"timeout"`
	//InsecureSkipVerify disables TLS certificate verification of the probes (intra-cluster self-signed certificates)
	InsecureSkipVerify bool   `mapstructure:"insecureSkipVerify"`
	LivenessPath       string `mapstructure:"livenessPath"`
	ReadinessPath      string `mapstructure:"readinessPath"`
}

func (c *Config) applyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.LivenessPath == "" {
		c.LivenessPath = defaultLivenessPath
	}
	if c.ReadinessPath == "" {
		c.ReadinessPath = defaultReadinessPath
	}
}

type Result struct {
	URL       string    `json:"url" yaml:"url"`
	Liveness  Liveness  `json:"liveness" yaml:"liveness"`
	Readiness Readiness `json:"readiness" yaml:"readiness"`
	Healthy   bool      `json:"healthy" yaml:"healthy"`
}

//ProbeError is a transport level failure of a single probe. It never aborts a health check.
type ProbeError struct {
	URL string
	err error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe '%s' failed: %s", e.URL, e.err)
}

func (e *ProbeError) Unwrap() error {
	return e.err
}

func IsProbeError(err error) bool {
	var probeErr *ProbeError
	return errors.As(err, &probeErr)
}

type Checker struct {
	cfg    Config
	client *http.Client
	logger *zap.SugaredLogger
}

func NewChecker(cfg Config, logger *zap.SugaredLogger) *Checker {
	cfg.applyDefaults()
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec //explicitly configured
	}
	return &Checker{
		cfg: cfg,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		logger: logger,
	}
}

//Check probes liveness and readiness concurrently. Failing probes downgrade the result, they are not returned as error.
func (c *Checker) Check(ctx context.Context, url string) *Result {
	base := strings.TrimRight(url, "/")
	result := &Result{
		URL:       url,
		Liveness:  LivenessUnhealthy,
		Readiness: ReadinessNotReady,
	}

	var liveOK, readyOK bool
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		liveOK = c.probe(groupCtx, base+c.cfg.LivenessPath)
		return nil
	})
	group.Go(func() error {
		readyOK = c.probe(groupCtx, base+c.cfg.ReadinessPath)
		return nil
	})
	_ = group.Wait()

	if liveOK {
		result.Liveness = LivenessHealthy
	}
	if readyOK {
		result.Readiness = ReadinessReady
	}
	result.Healthy = liveOK && readyOK
	return result
}

//probe is successful only for status 200
func (c *Checker) probe(ctx context.Context, url string) bool {
	status, err := c.get(ctx, url)
	if err != nil {
		c.logger.Warnf("Health probe failed: %s", err)
		return false
	}
	if status != http.StatusOK {
		c.logger.Debugf("Health probe '%s' returned status %d", url, status)
		return false
	}
	return true
}

func (c *Checker) get(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, &ProbeError{URL: url, err: err}
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, &ProbeError{URL: url, err: err}
	}
	defer func() {
		_, _ = io.Copy(ioutil.Discard, resp.Body)
		_ = resp.Body.Close()
	}()
	return resp.StatusCode, nil
}
