package endpoint

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Doer executes one HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Factory produces the transport entry point for a named endpoint.
// Connection pooling, TLS, and DNS are entirely its concern.
type Factory interface {
	Transport(name string) (Doer, error)
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func(name string) (Doer, error)

// Transport calls the function.
func (f FactoryFunc) Transport(name string) (Doer, error) {
	return f(name)
}

// HTTPFactory builds and caches one pooled *http.Client per endpoint
// name. Concurrent requests for the same name are deduplicated so each
// endpoint gets exactly one connection pool. The clients carry no
// overall timeout; deadlines are the policy layer's job.
type HTTPFactory struct {
	mu      sync.Mutex
	group   singleflight.Group
	clients map[string]*http.Client
}

// NewHTTPFactory creates an empty factory.
func NewHTTPFactory() *HTTPFactory {
	return &HTTPFactory{clients: make(map[string]*http.Client)}
}

// Transport returns the cached client for name, building it on first use.
func (f *HTTPFactory) Transport(name string) (Doer, error) {
	f.mu.Lock()
	if c, ok := f.clients[name]; ok {
		f.mu.Unlock()
		return c, nil
	}
	f.mu.Unlock()

	v, err, _ := f.group.Do(name, func() (any, error) {
		f.mu.Lock()
		defer f.mu.Unlock()

		if c, ok := f.clients[name]; ok {
			return c, nil
		}

		c := &http.Client{Transport: newPooledTransport()}
		f.clients[name] = c
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*http.Client), nil
}

// Close releases the idle connections of every transport the factory has
// built. Call it when the owning endpoint clients are torn down.
func (f *HTTPFactory) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, c := range f.clients {
		c.CloseIdleConnections()
	}
	f.clients = make(map[string]*http.Client)
}

func newPooledTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
}
