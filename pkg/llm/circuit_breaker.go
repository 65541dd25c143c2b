package llm

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerConfig configures the circuit breaker wrapper.
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	ReadyToTripRatio float64
}

// CircuitBreakerClient wraps a Client with circuit breaking logic.
type CircuitBreakerClient struct {
	client Client
	cb     *gobreaker.CircuitBreaker
}

// NewCircuitBreakerClient creates a circuit breaker wrapper around client.
func NewCircuitBreakerClient(client Client, cfg BreakerConfig, name string) *CircuitBreakerClient {
	ratio := cfg.ReadyToTripRatio
	if ratio <= 0 {
		ratio = 0.6
	}
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= ratio
		},
	}
	return &CircuitBreakerClient{
		client: client,
		cb:     gobreaker.NewCircuitBreaker(st),
	}
}

// Generate implements Client.
func (c *CircuitBreakerClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.cb.Execute(func() (interface{}, error) {
		return c.client.Generate(ctx, systemPrompt, userPrompt)
	})
	if err != nil {
		return "", err
	}
	return resp.(string), nil
}

// GenerateStructured implements Client.
func (c *CircuitBreakerClient) GenerateStructured(ctx context.Context, systemPrompt, userPrompt string, out any) error {
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.client.GenerateStructured(ctx, systemPrompt, userPrompt, out)
	})
	return err
}

// Close implements Client.
func (c *CircuitBreakerClient) Close() error {
	return c.client.Close()
}
