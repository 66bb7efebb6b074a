package sauce

import (
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/entrhq/gridrunner/pkg/logging"
)

// ClientFactory constructs one Client and hands the same instance to every
// caller. The first caller's credentials and data center win; later calls
// with different credentials still get the existing client. Run one account
// per process, or use separate factories.
type ClientFactory struct {
	mu         sync.Mutex
	client     atomic.Pointer[Client]
	endpoints  map[DataCenter]string
	httpClient *http.Client
	logger     atomic.Pointer[logging.Logger]
}

// FactoryOption configures a ClientFactory.
type FactoryOption func(*ClientFactory)

// WithEndpoint overrides the API base URL for a data center.
func WithEndpoint(dc DataCenter, baseURL string) FactoryOption {
	return func(f *ClientFactory) {
		f.endpoints[dc] = baseURL
	}
}

// WithHTTPClient sets the HTTP client used by the constructed Client.
func WithHTTPClient(c *http.Client) FactoryOption {
	return func(f *ClientFactory) {
		f.httpClient = c
	}
}

// WithLogger sets the factory logger.
func WithLogger(l *logging.Logger) FactoryOption {
	return func(f *ClientFactory) {
		f.logger.Store(l)
	}
}

// NewClientFactory creates an empty factory.
func NewClientFactory(opts ...FactoryOption) *ClientFactory {
	f := &ClientFactory{endpoints: make(map[DataCenter]string)}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

var defaultFactory = NewClientFactory()

// DefaultFactory returns the process-wide factory.
func DefaultFactory() *ClientFactory {
	return defaultFactory
}

// GetOrCreate returns the factory's client, constructing it from creds on
// first use.
func (f *ClientFactory) GetOrCreate(creds Credentials) *Client {
	if c := f.client.Load(); c != nil {
		f.noteIgnored(c, creds)
		return c
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if c := f.client.Load(); c != nil {
		f.noteIgnored(c, creds)
		return c
	}

	name := creds.DataCenter
	if name == "" {
		name = DefaultDataCenterName
	}
	dc := ResolveDataCenter(name, f.logger.Load())

	baseURL, ok := f.endpoints[dc]
	if !ok {
		baseURL = dc.APIURL()
	}

	c := NewClient(creds.Username, creds.AccessKey, dc, baseURL, f.httpClient)
	f.client.Store(c)
	f.logger.Load().Infof("Created Sauce Labs client for %s in %s", creds.Username, dc)
	return c
}

// UseLogger sets the factory logger unless one is already configured.
func (f *ClientFactory) UseLogger(l *logging.Logger) {
	f.logger.CompareAndSwap(nil, l)
}

// Client returns the constructed client, or nil before the first GetOrCreate.
func (f *ClientFactory) Client() *Client {
	return f.client.Load()
}

func (f *ClientFactory) noteIgnored(c *Client, creds Credentials) {
	if creds.Username != "" && creds.Username != c.username {
		f.logger.Load().Debugf("Ignoring credentials for %s; client already bound to %s", creds.Username, c.username)
	}
}
