// Package client owns the shared pieces every outbound call needs: the HTTP
// transport, the single rate-limit gate, the resource registry, the logger
// and the default handler stack.
//
//	c, err := client.New(client.Config{
//	    BaseURL:   "https://api.github.com",
//	    RateLimit: &client.RateLimitConfig{Rate: 10, Burst: 5},
//	    Retries:   3,
//	}, client.WithRegistry(reg))
//
//	resp, err := c.Prepare(c.NewRequest(http.MethodGet, "https://api.github.com/zen")).Run(ctx)
//
// All sends made through one Client, from any endpoint and any retry
// attempt, draw permits from the same gate.
package client
