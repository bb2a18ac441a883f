package catalog

import (
	"context"
	"sync"
)

// MockService is a test double for Service.
// Each method can be overridden with a custom function; if not overridden,
// methods return the fixture data the mock was built with.
// Thread-safe for use in concurrent tests.
type MockService struct {
	Products   []Product
	Attributes AttributeMap
	Tree       []CategoryNode
	Current    map[string]string

	GetProductsFunc          func(ctx context.Context) ([]Product, error)
	GetProductAttributesFunc func(ctx context.Context) (AttributeMap, error)
	GetCategoryTreeFunc      func(ctx context.Context) ([]CategoryNode, error)
	GetCurrentCategoriesFunc func(ctx context.Context) (map[string]string, error)
	SubmitCategoryBatchFunc  func(ctx context.Context, batch []CategoryAssignment) (*BatchAck, error)

	mu sync.Mutex

	// Submitted tracks every batch passed to SubmitCategoryBatch for
	// assertions.
	Submitted [][]CategoryAssignment
}

// Ensure MockService implements Service
var _ Service = (*MockService)(nil)

func (m *MockService) GetProducts(ctx context.Context) ([]Product, error) {
	if m.GetProductsFunc != nil {
		return m.GetProductsFunc(ctx)
	}
	return m.Products, nil
}

func (m *MockService) GetProductAttributes(ctx context.Context) (AttributeMap, error) {
	if m.GetProductAttributesFunc != nil {
		return m.GetProductAttributesFunc(ctx)
	}
	return m.Attributes, nil
}

func (m *MockService) GetCategoryTree(ctx context.Context) ([]CategoryNode, error) {
	if m.GetCategoryTreeFunc != nil {
		return m.GetCategoryTreeFunc(ctx)
	}
	return m.Tree, nil
}

func (m *MockService) GetCurrentCategories(ctx context.Context) (map[string]string, error) {
	if m.GetCurrentCategoriesFunc != nil {
		return m.GetCurrentCategoriesFunc(ctx)
	}
	return m.Current, nil
}

func (m *MockService) SubmitCategoryBatch(ctx context.Context, batch []CategoryAssignment) (*BatchAck, error) {
	m.mu.Lock()
	m.Submitted = append(m.Submitted, batch)
	m.mu.Unlock()

	if m.SubmitCategoryBatchFunc != nil {
		return m.SubmitCategoryBatchFunc(ctx, batch)
	}
	return &BatchAck{Applied: len(batch)}, nil
}

// SubmittedBatches returns a copy of the recorded submissions.
func (m *MockService) SubmittedBatches() [][]CategoryAssignment {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]CategoryAssignment, len(m.Submitted))
	copy(out, m.Submitted)
	return out
}
