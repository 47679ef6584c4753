package bench

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Actuator probes the management endpoints of the application under test.
type Actuator struct {
	base   string
	client *http.Client
}

func NewActuator(port int) *Actuator {
	return &Actuator{
		base:   fmt.Sprintf("http://localhost:%d/actuator", port),
		client: &http.Client{Timeout: 3 * time.Second},
	}
}

// Info mirrors the fields of /actuator/info the demo reads.
type Info struct {
	Java struct {
		Version string `json:"version"`
	} `json:"java"`
	Spring struct {
		Boot struct {
			Version string `json:"version"`
		} `json:"boot"`
	} `json:"spring"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type metricResponse struct {
	Name         string `json:"name"`
	BaseUnit     string `json:"baseUnit"`
	Measurements []struct {
		Statistic string  `json:"statistic"`
		Value     float64 `json:"value"`
	} `json:"measurements"`
}

func (a *Actuator) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.base+path, nil)
	if err != nil {
		return err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: decoding response: %w", path, err)
	}
	return nil
}

// Info reads the runtime and framework versions of the running application.
func (a *Actuator) Info(ctx context.Context) (Info, error) {
	var info Info
	if err := a.get(ctx, "/info", &info); err != nil {
		return Info{}, err
	}
	return info, nil
}

// Healthy reports nil when the application answers /actuator/health with UP.
func (a *Actuator) Healthy(ctx context.Context) error {
	var health healthResponse
	if err := a.get(ctx, "/health", &health); err != nil {
		return err
	}
	if health.Status != "UP" {
		return fmt.Errorf("health status is %q", health.Status)
	}
	return nil
}

func (a *Actuator) metric(ctx context.Context, name string) (metricResponse, error) {
	var m metricResponse
	if err := a.get(ctx, "/metrics/"+name, &m); err != nil {
		return metricResponse{}, err
	}
	if len(m.Measurements) == 0 {
		return metricResponse{}, fmt.Errorf("metric %s has no measurements", name)
	}
	return m, nil
}

// StartedTimeMillis reads application.started.time, converting to
// milliseconds when the metric reports in seconds.
func (a *Actuator) StartedTimeMillis(ctx context.Context) (float64, error) {
	m, err := a.metric(ctx, "application.started.time")
	if err != nil {
		return 0, err
	}
	value := m.Measurements[0].Value
	if m.BaseUnit == "seconds" {
		value *= 1000
	}
	return value, nil
}

// MemoryUsedBytes reads the jvm.memory.used gauge.
func (a *Actuator) MemoryUsedBytes(ctx context.Context) (float64, error) {
	m, err := a.metric(ctx, "jvm.memory.used")
	if err != nil {
		return 0, err
	}
	return m.Measurements[0].Value, nil
}

// WaitHealthy polls the info and health endpoints at the given interval
// until both succeed or ctx expires.
func (a *Actuator) WaitHealthy(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		err := a.probe(ctx)
		if err == nil {
			return nil
		}
		log.Debug().Err(err).Msg("Application not ready yet")

		select {
		case <-ctx.Done():
			return fmt.Errorf("application did not become healthy: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

func (a *Actuator) probe(ctx context.Context) error {
	if _, err := a.Info(ctx); err != nil {
		return err
	}
	return a.Healthy(ctx)
}
