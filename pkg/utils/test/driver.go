// Package testutils provides shared fakes for package tests.
package testutils

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/cielhaidir/mcp-server-qdrant/pkg/memory"
)

// MockDriver is an in-memory memory.Driver for tests. It enforces the same
// existence rules as the real driver: operations other than Store require
// the collection, and Update/Delete require the point.
type MockDriver struct {
	// Data maps collection name to point id to entry.
	Data map[string]map[string]memory.Entry

	// FailWith, when set, is returned by every operation.
	FailWith error

	// Call counters for asserting gating behavior.
	StoreCalls  int
	UpdateCalls int
	DeleteCalls int

	// Last arguments List was called with, for asserting clamping.
	LastListLimit  int
	LastListOffset int

	// LastFindFilter records the filter Find was last called with.
	LastFindFilter memory.Filter
}

func NewMockDriver() *MockDriver {
	return &MockDriver{
		Data: make(map[string]map[string]memory.Entry),
	}
}

// Seed inserts a point directly, creating the collection when needed.
func (m *MockDriver) Seed(collection, id string, entry memory.Entry) {
	if m.Data[collection] == nil {
		m.Data[collection] = make(map[string]memory.Entry)
	}
	m.Data[collection][id] = entry
}

func (m *MockDriver) Store(_ context.Context, collection string, entry memory.Entry) (string, error) {
	m.StoreCalls++
	if m.FailWith != nil {
		return "", m.FailWith
	}

	id := uuid.NewString()
	m.Seed(collection, id, entry)
	return id, nil
}

func (m *MockDriver) Find(_ context.Context, collection, _ string, limit int, filter memory.Filter) ([]memory.Point, error) {
	m.LastFindFilter = filter
	if m.FailWith != nil {
		return nil, m.FailWith
	}

	points, err := m.sorted(collection)
	if err != nil {
		return nil, err
	}
	if len(points) > limit {
		points = points[:limit]
	}
	return points, nil
}

func (m *MockDriver) Get(_ context.Context, collection, id string) (*memory.Point, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}

	entries, ok := m.Data[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %s", memory.ErrCollectionNotFound, collection)
	}
	entry, ok := entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", memory.ErrPointNotFound, id)
	}
	return &memory.Point{ID: id, Entry: entry}, nil
}

func (m *MockDriver) Update(ctx context.Context, collection, id string, entry memory.Entry) error {
	m.UpdateCalls++
	if m.FailWith != nil {
		return m.FailWith
	}

	if _, err := m.Get(ctx, collection, id); err != nil {
		return err
	}
	m.Data[collection][id] = entry
	return nil
}

func (m *MockDriver) Delete(ctx context.Context, collection, id string) error {
	m.DeleteCalls++
	if m.FailWith != nil {
		return m.FailWith
	}

	if _, err := m.Get(ctx, collection, id); err != nil {
		return err
	}
	delete(m.Data[collection], id)
	return nil
}

func (m *MockDriver) List(_ context.Context, collection string, limit, offset int) ([]memory.Point, error) {
	m.LastListLimit = limit
	m.LastListOffset = offset
	if m.FailWith != nil {
		return nil, m.FailWith
	}

	points, err := m.sorted(collection)
	if err != nil {
		return nil, err
	}

	if offset >= len(points) {
		return []memory.Point{}, nil
	}
	points = points[offset:]
	if len(points) > limit {
		points = points[:limit]
	}
	return points, nil
}

func (m *MockDriver) Collections(_ context.Context) ([]string, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}

	names := make([]string, 0, len(m.Data))
	for name := range m.Data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MockDriver) Close() error {
	return nil
}

// sorted returns the collection's points in stable id order.
func (m *MockDriver) sorted(collection string) ([]memory.Point, error) {
	entries, ok := m.Data[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %s", memory.ErrCollectionNotFound, collection)
	}

	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	points := make([]memory.Point, 0, len(ids))
	for _, id := range ids {
		points = append(points, memory.Point{ID: id, Entry: entries[id]})
	}
	return points, nil
}

// Ensure MockDriver implements memory.Driver
var _ memory.Driver = (*MockDriver)(nil)
