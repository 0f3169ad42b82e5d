// Package testutil provides the shared fakes and fixture helpers used by the
// package tests: an in-memory state provider, a statement-recording executor
// connection, and writers for definition and target fixtures.
package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"strings"
	"sync"

	"github.com/schemactl/schemactl/internal/object"
	"github.com/schemactl/schemactl/internal/state"
)

// FakeProvider is an in-memory state.Provider. Payloads are keyed by object
// key; keys without an entry report ErrNotFound and keys listed in Failures
// report the configured error. It records every fetch, concurrency-safely.
type FakeProvider struct {
	mu       sync.Mutex
	Payloads map[object.Key]state.Payload
	Failures map[object.Key]error
	fetched  []object.Key
}

// NewFakeProvider returns an empty provider; every fetch reports NotFound.
func NewFakeProvider() *FakeProvider {
	return &FakeProvider{
		Payloads: make(map[object.Key]state.Payload),
		Failures: make(map[object.Key]error),
	}
}

// Fetch implements state.Provider.
func (p *FakeProvider) Fetch(_ context.Context, key object.Key) (state.Payload, error) {
	p.mu.Lock()
	p.fetched = append(p.fetched, key)
	p.mu.Unlock()

	if err, ok := p.Failures[key]; ok {
		return nil, err
	}
	if payload, ok := p.Payloads[key]; ok {
		return payload, nil
	}
	return nil, state.ErrNotFound
}

// FetchCount returns how many fetches were issued.
func (p *FakeProvider) FetchCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.fetched)
}

// FakeConn is an exec.Conn that records every statement instead of running
// it. Statements listed in Failures fail with the configured error.
type FakeConn struct {
	mu         sync.Mutex
	Statements []string
	Failures   map[object.Key]error
}

// NewFakeConn returns a connection on which every statement succeeds.
func NewFakeConn() *FakeConn {
	return &FakeConn{Failures: make(map[object.Key]error)}
}

// FailOn makes every statement mentioning the object's name fail.
func (c *FakeConn) FailOn(key object.Key, err error) {
	c.Failures[key] = err
}

// ExecContext implements exec.Conn.
func (c *FakeConn) ExecContext(_ context.Context, query string, _ ...any) (sql.Result, error) {
	c.mu.Lock()
	c.Statements = append(c.Statements, query)
	c.mu.Unlock()

	for key, err := range c.Failures {
		if containsName(query, key) {
			return nil, err
		}
	}
	return nil, nil
}

// ExecCount returns how many statements were issued.
func (c *FakeConn) ExecCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Statements)
}

func containsName(query string, key object.Key) bool {
	return key.Name != "" && strings.Contains(query, key.Name)
}

// SafeBuffer is a bytes.Buffer usable as an App output writer. Fetch workers
// log concurrently, so writes have to be serialized.
type SafeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
