package metadata_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvictor/nftstake/metadata"
)

// ---------------------------------------------------------------------------
// fakes
// ---------------------------------------------------------------------------

type cannedResponse struct {
	status int
	body   string
	err    error
}

// fakeDoer serves canned responses keyed by full URL and records every
// requested URL in order. Unknown URLs fail with a network error.
type fakeDoer struct {
	mu        sync.Mutex
	responses map[string]cannedResponse
	requested []string
}

func newFakeDoer() *fakeDoer {
	return &fakeDoer{responses: map[string]cannedResponse{}}
}

func (f *fakeDoer) on(url string, status int, body string) *fakeDoer {
	f.responses[url] = cannedResponse{status: status, body: body}
	return f
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	url := req.URL.String()
	f.requested = append(f.requested, url)
	resp, ok := f.responses[url]
	if !ok {
		return nil, fmt.Errorf("dial %s: connection refused", req.URL.Host)
	}
	if resp.err != nil {
		return nil, resp.err
	}
	return &http.Response{
		StatusCode: resp.status,
		Body:       io.NopCloser(strings.NewReader(resp.body)),
		Header:     http.Header{},
		Request:    req,
	}, nil
}

type observed struct {
	gateway string
	ok      bool
}

type recordingObserver struct {
	mu          sync.Mutex
	attempts    []observed
	resolutions []string
}

func (o *recordingObserver) GatewayAttempt(gateway string, ok bool, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.attempts = append(o.attempts, observed{gateway, ok})
}

func (o *recordingObserver) Resolution(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.resolutions = append(o.resolutions, outcome)
}

const (
	ipfsIO   = "https://ipfs.io/ipfs/"
	dwebLink = "https://dweb.link/ipfs/"
)

// ---------------------------------------------------------------------------
// Resolve
// ---------------------------------------------------------------------------

func TestResolveFallsBackToSecondGateway(t *testing.T) {
	doer := newFakeDoer().
		on(ipfsIO+"bafyXYZ/1.json", http.StatusBadGateway, "bad gateway").
		on(dwebLink+"bafyXYZ/1.json", http.StatusOK, `{"name":"Ghost #1","image":"ipfs://bafyXYZ/1.png"}`)
	r := metadata.NewResolver(
		metadata.WithGateways(ipfsIO, dwebLink),
		metadata.WithHTTPClient(doer),
	)

	rec, err := r.Resolve(context.Background(), metadata.TokenReference{ID: "1", URI: "ipfs://bafyXYZ/1.json"})
	require.NoError(t, err)

	assert.Equal(t, metadata.Record{
		"id":    "1",
		"uri":   "ipfs://bafyXYZ/1.json",
		"name":  "Ghost #1",
		"image": "https://dweb.link/ipfs/bafyXYZ/1.png",
	}, rec)
	assert.Equal(t, []string{ipfsIO + "bafyXYZ/1.json", dwebLink + "bafyXYZ/1.json"}, doer.requested)
}

func TestResolveStopsAtFirstSuccess(t *testing.T) {
	doer := newFakeDoer().
		on(ipfsIO+"cid/7", http.StatusOK, `{"name":"first"}`).
		on(dwebLink+"cid/7", http.StatusOK, `{"name":"second"}`)
	r := metadata.NewResolver(metadata.WithGateways(ipfsIO, dwebLink), metadata.WithHTTPClient(doer))

	rec, err := r.Resolve(context.Background(), metadata.TokenReference{ID: "7", URI: "ipfs://cid/7"})
	require.NoError(t, err)
	assert.Equal(t, "first", rec.Name())
	assert.Equal(t, []string{ipfsIO + "cid/7"}, doer.requested)
}

func TestResolveAllGatewaysFail(t *testing.T) {
	doer := newFakeDoer().
		on(ipfsIO+"bafyXYZ/1.json", http.StatusNotFound, "")
	obs := &recordingObserver{}
	r := metadata.NewResolver(
		metadata.WithGateways(ipfsIO, dwebLink),
		metadata.WithHTTPClient(doer),
		metadata.WithObserver(obs),
	)

	rec, err := r.Resolve(context.Background(), metadata.TokenReference{ID: "1", URI: "ipfs://bafyXYZ/1.json"})
	require.Error(t, err)
	assert.Nil(t, rec)
	assert.True(t, errors.Is(err, metadata.ErrAllGatewaysExhausted))

	var exhausted *metadata.ExhaustedError
	require.True(t, errors.As(err, &exhausted))
	require.Len(t, exhausted.Attempts, 2)
	assert.Equal(t, http.StatusNotFound, exhausted.Attempts[0].Status)
	assert.Equal(t, dwebLink, exhausted.Attempts[1].Gateway)

	assert.Equal(t, []observed{{ipfsIO, false}, {dwebLink, false}}, obs.attempts)
	assert.Equal(t, []string{metadata.OutcomeExhausted}, obs.resolutions)
}

func TestResolveSkipsUnparsableBody(t *testing.T) {
	doer := newFakeDoer().
		on(ipfsIO+"cid", http.StatusOK, "<html>rate limited</html>").
		on(dwebLink+"cid", http.StatusOK, `{"name":"ok"}`)
	r := metadata.NewResolver(metadata.WithGateways(ipfsIO, dwebLink), metadata.WithHTTPClient(doer))

	rec, err := r.Resolve(context.Background(), metadata.TokenReference{ID: "3", URI: "ipfs://cid"})
	require.NoError(t, err)
	assert.Equal(t, "ok", rec.Name())
	assert.Len(t, doer.requested, 2)
}

func TestResolveRejectsNonObjectDocuments(t *testing.T) {
	for _, body := range []string{"null", `["a"]`, `"string"`} {
		doer := newFakeDoer().on(ipfsIO+"cid", http.StatusOK, body)
		r := metadata.NewResolver(metadata.WithGateways(ipfsIO), metadata.WithHTTPClient(doer))

		_, err := r.Resolve(context.Background(), metadata.TokenReference{ID: "3", URI: "ipfs://cid"})
		assert.ErrorIs(t, err, metadata.ErrAllGatewaysExhausted, "body %s", body)
	}
}

func TestResolveNonIPFSURIIsAppendedToEveryGateway(t *testing.T) {
	doer := newFakeDoer()
	r := metadata.NewResolver(metadata.WithGateways(ipfsIO, dwebLink), metadata.WithHTTPClient(doer))

	_, err := r.Resolve(context.Background(), metadata.TokenReference{ID: "1", URI: "https://example.com/meta/1.json"})
	require.ErrorIs(t, err, metadata.ErrAllGatewaysExhausted)
	assert.Equal(t, []string{
		ipfsIO + "https://example.com/meta/1.json",
		dwebLink + "https://example.com/meta/1.json",
	}, doer.requested)
}

func TestResolveDirectHTTP(t *testing.T) {
	doer := newFakeDoer().
		on("https://example.com/meta/1.json", http.StatusOK, `{"name":"Direct","image":"ipfs://cid/1.png"}`)
	r := metadata.NewResolver(
		metadata.WithGateways(ipfsIO, dwebLink),
		metadata.WithHTTPClient(doer),
		metadata.WithDirectHTTP(true),
	)

	rec, err := r.Resolve(context.Background(), metadata.TokenReference{ID: "1", URI: "https://example.com/meta/1.json"})
	require.NoError(t, err)
	assert.Equal(t, "https://ipfs.io/ipfs/cid/1.png", rec.Image())
	assert.Equal(t, "https://example.com/meta/1.json", rec.URI())
	assert.Equal(t, []string{"https://example.com/meta/1.json"}, doer.requested)
}

func TestResolveDirectHTTPKeepsIPFSOnGateways(t *testing.T) {
	doer := newFakeDoer().on(ipfsIO+"cid/1", http.StatusOK, `{}`)
	r := metadata.NewResolver(
		metadata.WithGateways(ipfsIO),
		metadata.WithHTTPClient(doer),
		metadata.WithDirectHTTP(true),
	)

	rec, err := r.Resolve(context.Background(), metadata.TokenReference{ID: "1", URI: "ipfs://cid/1"})
	require.NoError(t, err)
	assert.Equal(t, "1", rec.ID())
}

func TestResolveOverridesIDAndURIAndKeepsExtraFields(t *testing.T) {
	doer := newFakeDoer().on(ipfsIO+"cid/9", http.StatusOK,
		`{"id":"bogus","uri":"bogus","edition":9,"attributes":[{"trait_type":"Eyes","value":"Red"},{"trait_type":"Level","value":3}]}`)
	r := metadata.NewResolver(metadata.WithGateways(ipfsIO), metadata.WithHTTPClient(doer))

	rec, err := r.Resolve(context.Background(), metadata.TokenReference{ID: "9", URI: "ipfs://cid/9"})
	require.NoError(t, err)
	assert.Equal(t, "9", rec.ID())
	assert.Equal(t, "ipfs://cid/9", rec.URI())
	assert.Equal(t, "9", fmt.Sprint(rec["edition"]))
	assert.Equal(t, [][2]string{{"Eyes", "Red"}, {"Level", "3"}}, rec.Attributes())
}

func TestResolveLeavesHTTPImageAlone(t *testing.T) {
	doer := newFakeDoer().on(ipfsIO+"cid", http.StatusOK, `{"image":"https://cdn.example/1.png"}`)
	r := metadata.NewResolver(metadata.WithGateways(ipfsIO), metadata.WithHTTPClient(doer))

	rec, err := r.Resolve(context.Background(), metadata.TokenReference{ID: "1", URI: "ipfs://cid"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/1.png", rec.Image())
}

func TestResolveHonorsCanceledContext(t *testing.T) {
	doer := newFakeDoer().on(ipfsIO+"cid", http.StatusOK, `{}`)
	obs := &recordingObserver{}
	r := metadata.NewResolver(
		metadata.WithGateways(ipfsIO),
		metadata.WithHTTPClient(doer),
		metadata.WithObserver(obs),
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Resolve(ctx, metadata.TokenReference{ID: "1", URI: "ipfs://cid"})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, metadata.ErrAllGatewaysExhausted))
	assert.Empty(t, doer.requested)
	assert.Equal(t, []string{metadata.OutcomeCanceled}, obs.resolutions)
}

func TestResolveUsesDefaultGateways(t *testing.T) {
	doer := newFakeDoer()
	r := metadata.NewResolver(metadata.WithHTTPClient(doer), metadata.WithGateways())

	_, err := r.Resolve(context.Background(), metadata.TokenReference{ID: "1", URI: "ipfs://cid"})
	require.Error(t, err)
	expected := []string{}
	for _, g := range metadata.DefaultGateways {
		expected = append(expected, g+"cid")
	}
	assert.Equal(t, expected, doer.requested)
	assert.Equal(t, metadata.DefaultGateways, r.Gateways())
}

func TestResolveAgainstHTTPServers(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer down.Close()

	var gotPath string
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"name":"Served","image":"ipfs://QmImg/2.png"}`)
	}))
	defer up.Close()

	r := metadata.NewResolver(metadata.WithGateways(down.URL+"/ipfs/", up.URL+"/ipfs/"))
	rec, err := r.Resolve(context.Background(), metadata.TokenReference{ID: "2", URI: "ipfs://QmMeta/2"})
	require.NoError(t, err)
	assert.Equal(t, "/ipfs/QmMeta/2", gotPath)
	assert.Equal(t, up.URL+"/ipfs/QmImg/2.png", rec.Image())
}
