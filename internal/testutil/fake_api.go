package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// RecordedRequest is a request received by FakeAPI.
type RecordedRequest struct {
	Method   string
	Route    string // chi route pattern, e.g. "/v1/customers/{id}"
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte
	ID       string // {id} URL parameter, if any
}

type cannedResponse struct {
	status int
	body   string
}

// FakeAPI is an httptest server exposing the Upag REST routes under /v1.
// Every route answers 200 "{}" unless a response is registered with Respond.
type FakeAPI struct {
	server *httptest.Server

	mu        sync.Mutex
	requests  []RecordedRequest
	responses map[string]cannedResponse
}

// NewFakeAPI starts a fake API that is closed when the test ends.
func NewFakeAPI(t testing.TB) *FakeAPI {
	t.Helper()

	f := &FakeAPI{responses: map[string]cannedResponse{}}

	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"message":"route not found","code":"not_found"}`)
	})
	r.Post("/v1/customers", f.handle)
	r.Get("/v1/customers", f.handle)
	r.Get("/v1/customers/{id}", f.handle)
	r.Put("/v1/customers/{id}", f.handle)
	r.Delete("/v1/customers/{id}", f.handle)

	r.Post("/v1/payment-methods", f.handle)
	r.Get("/v1/payment-methods", f.handle)
	r.Get("/v1/payment-methods/{id}", f.handle)
	r.Delete("/v1/payment-methods/{id}", f.handle)

	r.Post("/v1/payments", f.handle)
	r.Get("/v1/payments", f.handle)
	r.Get("/v1/payments/{id}", f.handle)

	f.server = httptest.NewServer(r)
	t.Cleanup(f.server.Close)
	return f
}

// BaseURL is the versioned root to use as the client base URL.
func (f *FakeAPI) BaseURL() string {
	return f.server.URL + "/v1"
}

// Respond registers the response for a method and chi route pattern,
// e.g. Respond("GET", "/v1/customers/{id}", 200, `{"id":"cus_1"}`).
func (f *FakeAPI) Respond(method, route string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[method+" "+route] = cannedResponse{status: status, body: body}
}

// Requests returns a copy of every request received so far.
func (f *FakeAPI) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedRequest(nil), f.requests...)
}

// LastRequest returns the most recent request. It fails the test if none arrived.
func (f *FakeAPI) LastRequest(t testing.TB) RecordedRequest {
	t.Helper()
	requests := f.Requests()
	if len(requests) == 0 {
		t.Fatal("fake API received no requests")
	}
	return requests[len(requests)-1]
}

func (f *FakeAPI) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	route := chi.RouteContext(r.Context()).RoutePattern()

	f.mu.Lock()
	f.requests = append(f.requests, RecordedRequest{
		Method:   r.Method,
		Route:    route,
		Path:     r.URL.Path,
		RawQuery: r.URL.RawQuery,
		Header:   r.Header.Clone(),
		Body:     body,
		ID:       chi.URLParam(r, "id"),
	})
	resp, ok := f.responses[r.Method+" "+route]
	f.mu.Unlock()

	if !ok {
		resp = cannedResponse{status: http.StatusOK, body: `{}`}
	}
	writeJSON(w, resp.status, resp.body)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	if body != "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(status)
	io.WriteString(w, body)
}
