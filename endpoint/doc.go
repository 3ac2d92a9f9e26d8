// Package endpoint provides the client shell for one logical remote
// endpoint: a base address resolved from configuration, custom headers,
// an authorization value, and a resilience pipeline composed from the
// policy package.
//
// A Client is configured fluently. Header and authorization changes only
// mutate per-call state; retry, circuit-breaker, and timeout changes
// rebuild the execution pipeline, which is swapped atomically so calls
// already in flight finish against the pipeline they started with.
// Circuit breaker state belongs to the client, not the pipeline, and
// survives every rebuild.
//
//	client, err := endpoint.New(endpoint.Config{
//	    Name:   "BillingService",
//	    Lookup: config.EnvLookup{},
//	})
//	if err != nil {
//	    return err
//	}
//
//	client.WithHeaders(map[string]string{"X-Tenant": "acme"}).
//	    WithAuthorization(token).
//	    WithTimeout(10)
//	if _, err := client.WithRetryPolicy(3, 2, true); err != nil {
//	    return err
//	}
//
//	resp, err := client.Do(ctx, http.MethodGet, "/invoices", nil)
package endpoint
