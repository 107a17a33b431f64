package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/artxeweb/comparaelprecio-api/pkg/model"
)

// ErrVerifierUnavailable marks the fatal failure class: without verifier
// data there is no product view at all.
var ErrVerifierUnavailable = errors.New("verifier source unavailable")

// Title shown when neither source supplies one.
const fallbackTitle = "Producto sin título"

// ProductSource is the outbound data dependency of the aggregator,
// satisfied by *worker.Client.
type ProductSource interface {
	Verifier(ctx context.Context, productURL string) (model.VerifierRecord, error)
	Detail(ctx context.Context, productURL string) (model.DetailResponse, error)
}

// Service aggregates verifier and detail data into display-ready views.
type Service struct {
	source ProductSource
}

func NewService(source ProductSource) *Service {
	return &Service{source: source}
}

// GetProduct runs the full pipeline for one URL: verifier fetch (fatal on
// failure), store classification, conditional best-effort detail fetch,
// merge, and chart geometry.
func (s *Service) GetProduct(ctx context.Context, rawURL string) (*model.ProductView, error) {
	verifier, err := s.source.Verifier(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVerifierUnavailable, err)
	}

	store := DetectStore(rawURL)

	// The detail source exists for Amazon only. Any failure here, network
	// or malformed body alike, degrades to "no detail data" and must never
	// fail the view. The unsupported-store and failed-fetch cases are
	// deliberately indistinguishable downstream.
	var detail *model.DetailRecord
	if store == model.StoreAmazon {
		resp, err := s.source.Detail(ctx, rawURL)
		switch {
		case err != nil:
			log.Printf("detail fetch degraded for %s: %v", rawURL, err)
		case resp.OK:
			detail = &resp.Product
		}
	}

	view := &model.ProductView{
		URL:         rawURL,
		Store:       store,
		StoreConfig: StoreConfigFor(store),
		Verifier:    verifier,
		Detail:      detail,
		Merged:      mergeViews(verifier, detail),
	}
	if verifier.HasSeries {
		view.Chart = BuildChart(verifier.Series)
	}
	return view, nil
}

// Compare runs two product pipelines concurrently with no shared mutable
// state. Each side succeeds or fails on its own.
func (s *Service) Compare(ctx context.Context, urlA, urlB string) model.CompareView {
	sides := make([]model.CompareSide, 2)

	var wg sync.WaitGroup
	for i, u := range []string{urlA, urlB} {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			view, err := s.GetProduct(ctx, u)
			if err != nil {
				sides[i] = model.CompareSide{Error: err.Error()}
				return
			}
			sides[i] = model.CompareSide{View: view}
		}(i, u)
	}
	wg.Wait()

	return model.CompareView{A: sides[0], B: sides[1]}
}

// mergeViews applies the field precedence rules: detail wins over verifier,
// verifier over the fallback; richness-only fields come from detail alone
// and stay nil when it is absent.
func mergeViews(verifier model.VerifierRecord, detail *model.DetailRecord) model.MergedView {
	merged := model.MergedView{Title: fallbackTitle}

	if verifier.Title != nil && *verifier.Title != "" {
		merged.Title = *verifier.Title
	}
	merged.Image = verifier.Image

	if detail != nil {
		if detail.Title != nil && *detail.Title != "" {
			merged.Title = *detail.Title
		}
		if img := detail.FirstImage(); img != nil {
			merged.Image = img
		}
		merged.Brand = detail.Brand
		merged.Price = detail.Price
		merged.Rating = detail.Rating
		merged.ReviewsCount = detail.ReviewsCount
		merged.Stock = detail.Stock
	}

	return merged
}
