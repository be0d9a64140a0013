package client

import (
	"context"

	"github.com/kbukum/apikit/component"
	"github.com/kbukum/apikit/resilience"
)

var _ component.Component = (*Client)(nil)

// Name implements component.Component.
func (c *Client) Name() string { return "client" }

// Start implements component.Component. A client is usable once created.
func (c *Client) Start(context.Context) error { return nil }

// Stop closes idle connections.
func (c *Client) Stop(context.Context) error {
	c.http.CloseIdleConnections()
	return nil
}

// Health reports the circuit breaker state when one is configured.
func (c *Client) Health(context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if c.breaker == nil {
		return h
	}
	switch st := c.breaker.State(); st {
	case resilience.StateOpen:
		h.Status, h.Message = component.StatusUnhealthy, "circuit "+st.String()
	case resilience.StateHalfOpen:
		h.Status, h.Message = component.StatusDegraded, "circuit "+st.String()
	}
	return h
}
