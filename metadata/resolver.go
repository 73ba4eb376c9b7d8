package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	OutcomeResolved  = "resolved"
	OutcomeExhausted = "exhausted"
	OutcomeCanceled  = "canceled"

	// documents larger than this are treated as unparsable
	maxDocumentSize = 4 << 20
)

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Observer receives one call per gateway attempt and one per resolution.
type Observer interface {
	GatewayAttempt(gateway string, ok bool, elapsed time.Duration)
	Resolution(outcome string)
}

type nopObserver struct{}

func (nopObserver) GatewayAttempt(string, bool, time.Duration) {}
func (nopObserver) Resolution(string)                          {}

type Option func(*Resolver)

// WithGateways sets the ordered gateway list. An empty list keeps the
// defaults.
func WithGateways(gateways ...string) Option {
	return func(r *Resolver) {
		if len(gateways) == 0 {
			return
		}
		r.gateways = append([]string{}, gateways...)
	}
}

func WithHTTPClient(c HTTPDoer) Option {
	return func(r *Resolver) { r.client = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

func WithObserver(o Observer) Option {
	return func(r *Resolver) { r.observer = o }
}

// WithDirectHTTP makes the resolver fetch http(s) token URIs directly
// instead of appending them to each gateway base.
func WithDirectHTTP(enabled bool) Option {
	return func(r *Resolver) { r.directHTTP = enabled }
}

// Resolver turns token URIs into metadata records, trying its gateways
// one after another until one of them serves a JSON document.
//
// A Resolver holds no mutable state and is safe for concurrent use.
// Attempts within a single Resolve call are strictly sequential.
type Resolver struct {
	gateways   []string
	client     HTTPDoer
	logger     *zap.Logger
	observer   Observer
	directHTTP bool
}

func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		gateways: append([]string{}, DefaultGateways...),
		client:   http.DefaultClient,
		logger:   zap.NewNop(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) Gateways() []string {
	return append([]string{}, r.gateways...)
}

// Resolve fetches the metadata document for ref. On success the record's
// image is rewritten to the gateway that served it and id and uri are
// set from ref. When every gateway fails the returned error matches
// ErrAllGatewaysExhausted and no record is returned.
func (r *Resolver) Resolve(ctx context.Context, ref TokenReference) (Record, error) {
	logger := r.logger.With(zap.String("token", ref.ID), zap.String("uri", ref.URI))

	if r.directHTTP && IsHTTP(ref.URI) {
		return r.resolveDirect(ctx, ref, logger)
	}

	path := ContentPath(ref.URI)
	attempts := make([]*GatewayError, 0, len(r.gateways))
	for _, gateway := range r.gateways {
		if err := ctx.Err(); err != nil {
			r.observer.Resolution(OutcomeCanceled)
			return nil, fmt.Errorf("resolving token %s: %w", ref.ID, err)
		}
		doc, gerr := r.fetch(ctx, gateway, gateway+path)
		if gerr != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				r.observer.Resolution(OutcomeCanceled)
				return nil, fmt.Errorf("resolving token %s: %w", ref.ID, ctxErr)
			}
			logger.Warn("gateway failed", zap.String("gateway", gateway), zap.Error(gerr))
			attempts = append(attempts, gerr)
			continue
		}
		logger.Debug("metadata fetched", zap.String("gateway", gateway))
		r.observer.Resolution(OutcomeResolved)
		return finalize(doc, ref, gateway), nil
	}

	r.observer.Resolution(OutcomeExhausted)
	return nil, &ExhaustedError{Token: ref.ID, Attempts: attempts}
}

func (r *Resolver) resolveDirect(ctx context.Context, ref TokenReference, logger *zap.Logger) (Record, error) {
	doc, gerr := r.fetch(ctx, "direct", ref.URI)
	if gerr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			r.observer.Resolution(OutcomeCanceled)
			return nil, fmt.Errorf("resolving token %s: %w", ref.ID, ctxErr)
		}
		logger.Warn("direct fetch failed", zap.Error(gerr))
		r.observer.Resolution(OutcomeExhausted)
		return nil, &ExhaustedError{Token: ref.ID, Attempts: []*GatewayError{gerr}}
	}
	gateway := ""
	if len(r.gateways) > 0 {
		gateway = r.gateways[0]
	}
	r.observer.Resolution(OutcomeResolved)
	return finalize(doc, ref, gateway), nil
}

func (r *Resolver) fetch(ctx context.Context, gateway string, url string) (Record, *GatewayError) {
	start := time.Now()
	doc, gerr := r.get(ctx, gateway, url)
	r.observer.GatewayAttempt(gateway, gerr == nil, time.Since(start))
	return doc, gerr
}

func (r *Resolver) get(ctx context.Context, gateway string, url string) (Record, *GatewayError) {
	fail := func(status int, err error) *GatewayError {
		return &GatewayError{Gateway: gateway, URL: url, Status: status, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fail(0, err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fail(0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxDocumentSize))
		return nil, fail(resp.StatusCode, fmt.Errorf("unexpected status"))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return nil, fail(resp.StatusCode, err)
	}
	if len(body) > maxDocumentSize {
		return nil, fail(resp.StatusCode, fmt.Errorf("document larger than %d bytes", maxDocumentSize))
	}

	doc := Record{}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fail(resp.StatusCode, fmt.Errorf("couldn't decode metadata document: %w", err))
	}
	if doc == nil {
		return nil, fail(resp.StatusCode, fmt.Errorf("metadata document is null"))
	}
	return doc, nil
}

func finalize(doc Record, ref TokenReference, gateway string) Record {
	if image, ok := doc[FieldImage].(string); ok && gateway != "" {
		doc[FieldImage] = RewriteIPFS(image, gateway)
	}
	doc[FieldID] = ref.ID
	doc[FieldURI] = ref.URI
	return doc
}
