package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/artxeweb/comparaelprecio-api/internal/business/catalog"
	"github.com/artxeweb/comparaelprecio-api/internal/platform/worker"
	"github.com/artxeweb/comparaelprecio-api/pkg/model"
)

// Smoke-checks the aggregation worker for a single product URL.
func main() {
	if len(os.Args) < 2 {
		log.Fatalf("usage: check-worker <product-url>")
	}
	productURL := os.Args[1]
	ctx := context.Background()

	client := worker.New(nil, worker.Config{BaseURL: os.Getenv("WORKER_BASE_URL")})

	store := catalog.DetectStore(productURL)
	fmt.Printf("Store: %s\n\n", store)

	verifier, err := client.Verifier(ctx, productURL)
	if err != nil {
		log.Fatalf("verifier fetch failed: %v", err)
	}
	fmt.Println("Verifier record:")
	printJSON(verifier)
	fmt.Printf("\nSeries points: %d, highlighted prices: %d\n", len(verifier.Series), len(verifier.Highlights))

	if store != model.StoreAmazon {
		fmt.Println("\nStore has no detail source, done.")
		return
	}

	detail, err := client.Detail(ctx, productURL)
	if err != nil {
		log.Fatalf("detail fetch failed: %v", err)
	}
	fmt.Printf("\nDetail record (ok=%v, asin=%s):\n", detail.OK, detail.ASIN)
	printJSON(detail.Product)
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("marshal: %v", err)
	}
	fmt.Println(string(data))
}
