package catalog

import "context"

// Service abstracts the catalog API operations the categorization engine
// consumes. This interface allows for easy mocking in tests.
type Service interface {
	// GetProducts fetches the full product list.
	GetProducts(ctx context.Context) ([]Product, error)

	// GetProductAttributes fetches the technical attribute map for all
	// products.
	GetProductAttributes(ctx context.Context) (AttributeMap, error)

	// GetCategoryTree fetches the store's category tree.
	GetCategoryTree(ctx context.Context) ([]CategoryNode, error)

	// GetCurrentCategories fetches the sku -> category slug map as currently
	// persisted.
	GetCurrentCategories(ctx context.Context) (map[string]string, error)

	// SubmitCategoryBatch persists one batch of category assignments.
	SubmitCategoryBatch(ctx context.Context, batch []CategoryAssignment) (*BatchAck, error)
}

// Ensure Client implements Service
var _ Service = (*Client)(nil)
