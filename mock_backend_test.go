package upag

import (
	"context"
	"encoding/json"
	"sync"
)

type recordedCall struct {
	Method string
	Path   string
	Body   any
	Opts   []RequestOption
}

// recordingBackend records every call and decodes a canned response into out.
type recordingBackend struct {
	mu       sync.Mutex
	calls    []recordedCall
	response string
	err      error
}

func (b *recordingBackend) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return b.record("GET", path, nil, out, opts)
}

func (b *recordingBackend) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return b.record("POST", path, body, out, opts)
}

func (b *recordingBackend) Put(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return b.record("PUT", path, body, out, opts)
}

func (b *recordingBackend) Delete(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return b.record("DELETE", path, nil, out, opts)
}

func (b *recordingBackend) record(method, path string, body, out any, opts []RequestOption) error {
	b.mu.Lock()
	b.calls = append(b.calls, recordedCall{Method: method, Path: path, Body: body, Opts: opts})
	b.mu.Unlock()

	if b.err != nil {
		return b.err
	}
	if out != nil && b.response != "" {
		return json.Unmarshal([]byte(b.response), out)
	}
	return nil
}

func (b *recordingBackend) lastCall() recordedCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.calls) == 0 {
		return recordedCall{}
	}
	return b.calls[len(b.calls)-1]
}

var _ Backend = (*recordingBackend)(nil)
