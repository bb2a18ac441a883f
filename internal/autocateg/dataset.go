package autocateg

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/Syfer2025/Catlogodepeas-sub005/internal/catalog"
)

var (
	ErrNoProducts   = errors.New("catalog returned no products")
	ErrNoCategories = errors.New("catalog returned no categories")
)

// Dataset is everything one analysis run consumes from the catalog.
type Dataset struct {
	Products   []catalog.Product
	Attributes catalog.AttributeMap
	Tree       []catalog.CategoryNode
	Current    map[string]string
}

// FetchDataset pulls the four catalog collections concurrently and fails on
// the first error. A catalog with no products or no categories is an error
// rather than an empty run.
func FetchDataset(ctx context.Context, svc catalog.Service) (*Dataset, error) {
	var ds Dataset

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ds.Products, err = svc.GetProducts(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		ds.Attributes, err = svc.GetProductAttributes(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		ds.Tree, err = svc.GetCategoryTree(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		ds.Current, err = svc.GetCurrentCategories(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(ds.Products) == 0 {
		return nil, ErrNoProducts
	}
	if len(ds.Tree) == 0 {
		return nil, ErrNoCategories
	}

	return &ds, nil
}
