package sauce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/entrhq/gridrunner/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method   string
	path     string
	user     string
	password string
	body     map[string]any
}

// newJobServer returns a server that records update-job calls and answers
// with status.
func newJobServer(t *testing.T, status int) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var mu sync.Mutex
	var requests []recordedRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, _ := r.BasicAuth()
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)

		mu.Lock()
		requests = append(requests, recordedRequest{r.Method, r.URL.Path, user, pass, body})
		mu.Unlock()

		w.WriteHeader(status)
		if status >= 300 {
			_, _ = w.Write([]byte(`{"message":"job not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func TestParseDataCenter(t *testing.T) {
	tests := []struct {
		in   string
		want DataCenter
	}{
		{"US_WEST", USWest},
		{"us_east", USEast},
		{"eu-central-1", EUCentral},
		{" APAC_SOUTHEAST ", APACSoutheast},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDataCenter(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseDataCenter("MARS_NORTH")
	assert.ErrorIs(t, err, ErrUnknownDataCenter)
}

func TestDataCenterURLs(t *testing.T) {
	assert.Equal(t, "https://api.us-west-1.saucelabs.com", USWest.APIURL())
	assert.Equal(t, "us-east-4", USEast.RegionID())
	assert.Empty(t, DataCenter("nowhere").APIURL())
}

func TestResolveDataCenterFallback(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWriterLogger("sauce", &buf)

	assert.Equal(t, EUCentral, ResolveDataCenter("EU_CENTRAL", logger))
	assert.Contains(t, buf.String(), "Using Sauce Labs data center: EU_CENTRAL")

	buf.Reset()
	assert.Equal(t, FallbackDataCenter, ResolveDataCenter("MARS_NORTH", logger))
	assert.Contains(t, buf.String(), "Data center MARS_NORTH not available, falling back to US_WEST")
}

func TestClientUpdateJob(t *testing.T) {
	server, requests := newJobServer(t, http.StatusOK)
	client := NewClient("alice", "secret", USWest, server.URL+"/", nil)

	passed := false
	err := client.UpdateJob(context.Background(), "job-123", UpdateJobParams{Passed: &passed, Build: "42"})
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	got := (*requests)[0]
	assert.Equal(t, http.MethodPut, got.method)
	assert.Equal(t, "/rest/v1/alice/jobs/job-123", got.path)
	assert.Equal(t, "alice", got.user)
	assert.Equal(t, "secret", got.password)
	assert.Equal(t, map[string]any{"passed": false, "build": "42"}, got.body)
}

func TestClientUpdateJobAPIError(t *testing.T) {
	server, _ := newJobServer(t, http.StatusNotFound)
	client := NewClient("alice", "secret", USWest, server.URL, nil)

	err := client.UpdateJob(context.Background(), "missing", UpdateJobParams{})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "job not found")
}

func TestFactoryConstructsOnce(t *testing.T) {
	factory := NewClientFactory()

	var wg sync.WaitGroup
	clients := make([]*Client, 64)
	for i := range clients {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			clients[i] = factory.GetOrCreate(Credentials{Username: "alice", AccessKey: "k", DataCenter: "US_EAST"})
		}(i)
	}
	wg.Wait()

	for _, c := range clients {
		assert.Same(t, clients[0], c)
	}
	assert.Same(t, clients[0], factory.Client())
}

func TestFactoryFirstCredentialsWin(t *testing.T) {
	factory := NewClientFactory()

	first := factory.GetOrCreate(Credentials{Username: "alice", AccessKey: "a", DataCenter: "EU_CENTRAL"})
	second := factory.GetOrCreate(Credentials{Username: "bob", AccessKey: "b", DataCenter: "US_WEST"})

	assert.Same(t, first, second)
	assert.Equal(t, "alice", second.Username())
	assert.Equal(t, EUCentral, second.DataCenter())
}

func TestFactoryDefaultsDataCenter(t *testing.T) {
	factory := NewClientFactory()
	c := factory.GetOrCreate(Credentials{Username: "alice"})
	assert.Equal(t, USEast, c.DataCenter())
	assert.Equal(t, USEast.APIURL(), c.BaseURL())
}

func TestReportSuccess(t *testing.T) {
	server, requests := newJobServer(t, http.StatusOK)
	client := NewClient("alice", "secret", USWest, server.URL, nil)

	err := NewReporter(nil).Report(context.Background(), client, Outcome{SessionID: "s-1", Passed: true, BuildID: "99"})
	require.NoError(t, err)

	require.Len(t, *requests, 1, "exactly one update call")
	assert.Equal(t, map[string]any{"passed": true, "build": "99"}, (*requests)[0].body)
}

func TestReportOmitsMissingBuild(t *testing.T) {
	server, requests := newJobServer(t, http.StatusOK)
	client := NewClient("alice", "secret", USWest, server.URL, nil)

	require.NoError(t, NewReporter(nil).Report(context.Background(), client, Outcome{SessionID: "s-1", Passed: false}))
	assert.Equal(t, map[string]any{"passed": false}, (*requests)[0].body)
}

func TestReportTransportFailure(t *testing.T) {
	server, _ := newJobServer(t, http.StatusOK)
	client := NewClient("alice", "secret", USWest, server.URL, nil)
	server.Close()

	var buf bytes.Buffer
	err := NewReporter(logging.NewWriterLogger("sauce", &buf)).Report(context.Background(), client, Outcome{SessionID: "s-9", Passed: true})

	var reportErr *ReportError
	require.ErrorAs(t, err, &reportErr)
	assert.Equal(t, "s-9", reportErr.SessionID)
	assert.NotNil(t, errors.Unwrap(err))
	assert.Contains(t, buf.String(), "failed to update Sauce Labs job s-9")
}

func TestReportServiceFailureWrapsAPIError(t *testing.T) {
	server, _ := newJobServer(t, http.StatusUnauthorized)
	client := NewClient("alice", "wrong", USWest, server.URL, nil)

	err := NewReporter(nil).Report(context.Background(), client, Outcome{SessionID: "s-2", Passed: true})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestReportRequiresSession(t *testing.T) {
	err := NewReporter(nil).Report(context.Background(), NewClient("a", "b", USWest, "http://unused", nil), Outcome{Passed: true})
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestReportWithUnknownRegionUsesFallback(t *testing.T) {
	server, requests := newJobServer(t, http.StatusOK)

	var buf bytes.Buffer
	factory := NewClientFactory(
		WithEndpoint(FallbackDataCenter, server.URL),
		WithLogger(logging.NewWriterLogger("sauce", &buf)),
	)
	client := factory.GetOrCreate(Credentials{Username: "alice", AccessKey: "k", DataCenter: "ATLANTIS"})

	err := NewReporter(nil).Report(context.Background(), client, Outcome{SessionID: "s-3", Passed: true})
	require.NoError(t, err)
	assert.Len(t, *requests, 1)
	assert.Equal(t, FallbackDataCenter, client.DataCenter())
	assert.Contains(t, buf.String(), "falling back to US_WEST")
}
