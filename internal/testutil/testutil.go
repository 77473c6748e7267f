package testutil

import (
	"context"
	"sync/atomic"

	"ratesync/internal/browser"
	"ratesync/internal/rates"
)

// MockSession is a mock implementation of the browser.Session interface for testing
type MockSession struct {
	QueryAllFunc func(ctx context.Context, selector string) ([]browser.Element, error)
	CloseFunc    func() error
	Closed       atomic.Int32
}

// QueryAll implements the browser.Session interface
func (m *MockSession) QueryAll(ctx context.Context, selector string) ([]browser.Element, error) {
	if m.QueryAllFunc != nil {
		return m.QueryAllFunc(ctx, selector)
	}
	return nil, nil
}

// Close implements the browser.Session interface and counts calls
func (m *MockSession) Close() error {
	m.Closed.Add(1)
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// MockRenderer is a mock implementation of the browser.Renderer interface for testing
type MockRenderer struct {
	OpenFunc func(ctx context.Context, pageURL string) (browser.Session, error)
}

// Open implements the browser.Renderer interface
func (m *MockRenderer) Open(ctx context.Context, pageURL string) (browser.Session, error) {
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, pageURL)
	}
	return &MockSession{}, nil
}

// NewMockRenderer creates a renderer that always returns session
func NewMockRenderer(session browser.Session) *MockRenderer {
	return &MockRenderer{
		OpenFunc: func(ctx context.Context, pageURL string) (browser.Session, error) {
			return session, nil
		},
	}
}

// MockExtractor is a mock extractor that counts its invocations
type MockExtractor struct {
	ExtractFunc func(ctx context.Context) ([]rates.Row, error)
	Calls       atomic.Int32
}

// Extract implements the coordinator's extractor contract
func (m *MockExtractor) Extract(ctx context.Context) ([]rates.Row, error) {
	m.Calls.Add(1)
	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx)
	}
	return nil, nil
}

// NewMockExtractor creates a simple mock extractor with predefined results
func NewMockExtractor(rows []rates.Row, err error) *MockExtractor {
	return &MockExtractor{
		ExtractFunc: func(ctx context.Context) ([]rates.Row, error) {
			return rows, err
		},
	}
}

// MockPublisher is a mock publisher that counts its invocations
type MockPublisher struct {
	PublishFunc func(ctx context.Context, rows []rates.Row) (rates.Publication, error)
	Calls       atomic.Int32
}

// Publish implements the coordinator's publisher contract
func (m *MockPublisher) Publish(ctx context.Context, rows []rates.Row) (rates.Publication, error) {
	m.Calls.Add(1)
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, rows)
	}
	return rates.Publication{Count: len(rows)}, nil
}

// SampleRows returns a small normalized batch covering every group
func SampleRows() []rates.Row {
	return []rates.Row{
		{Group: rates.GroupFiat, Code: "usd", NameLocalized: "دلار", Price: 166340, Change: "+0.5%"},
		{Group: rates.GroupMetal, Code: "xau", NameLocalized: "طلا", Price: 4100, Change: "0"},
		{Group: rates.GroupCrypto, Code: "btc", NameLocalized: "بیت‌کوین", Price: 6500000000, Change: "-1.1%"},
	}
}
