package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jhirschv/Online-Fitness-App-Backend/internal/config"

	log "github.com/sirupsen/logrus"
)

// httpPlanner implements Planner against a JSON-over-HTTP generator service.
// The service contract is a POST with {"kind": "program"|"workout",
// "prompt": "..."} answered with a GeneratedProgram or GeneratedWorkout body.
type httpPlanner struct {
	url    string
	client *http.Client
}

// NewHTTPPlanner creates a Planner backed by the configured generator endpoint.
func NewHTTPPlanner(cfg config.PlannerConfig) Planner {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &httpPlanner{
		url:    cfg.URL,
		client: &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Kind   string `json:"kind"`
	Prompt string `json:"prompt"`
}

func (p *httpPlanner) GenerateProgram(ctx context.Context, prompt string) (*GeneratedProgram, error) {
	var program GeneratedProgram
	if err := p.generate(ctx, "program", prompt, &program); err != nil {
		return nil, err
	}
	return &program, nil
}

func (p *httpPlanner) GenerateWorkout(ctx context.Context, prompt string) (*GeneratedWorkout, error) {
	var workout GeneratedWorkout
	if err := p.generate(ctx, "workout", prompt, &workout); err != nil {
		return nil, err
	}
	return &workout, nil
}

func (p *httpPlanner) generate(ctx context.Context, kind, prompt string, out interface{}) error {
	body, err := json.Marshal(generateRequest{Kind: kind, Prompt: prompt})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		log.WithError(err).WithField("kind", kind).Warn("plan generator request failed")
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.WithFields(log.Fields{"kind": kind, "status": resp.StatusCode}).Warn("plan generator returned error status")
		return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPlan, err)
	}
	return nil
}
