package model

// Store identifies which e-commerce site a product URL belongs to.
type Store string

const (
	StoreAmazon     Store = "amazon"
	StoreCarrefour  Store = "carrefour"
	StoreMediaMarkt Store = "mediamarkt"
	StoreUnknown    Store = "unknown"
)

// StoreConfig is the static badge presentation data for a store.
type StoreConfig struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	BgClass     string `json:"bgClass"`
	TextClass   string `json:"textClass"`
	BorderClass string `json:"borderClass"`
}

// HighlightedPrice is a labeled, pre-formatted price snapshot (e.g. "lowest in 30 days"),
// distinct from the raw time series.
type HighlightedPrice struct {
	Label string `json:"tipo"`
	Price string `json:"precio"`
	Date  string `json:"fecha"`
}

// PricePoint is one sample of the historical price series.
type PricePoint struct {
	Date  string  `json:"fecha"`
	Price float64 `json:"precio"`
}

// VerifierRecord is the store-agnostic product summary returned by the
// verifier endpoint of the aggregation worker. Wire names follow the worker.
type VerifierRecord struct {
	SourceURL   string             `json:"amazon_url"`
	VerifierURL string             `json:"verificador_url"`
	Title       *string            `json:"titulo"`
	Image       *string            `json:"imagen"`
	Highlights  []HighlightedPrice `json:"precios_destacados"`
	Series      []PricePoint       `json:"serie_historica"`
	HasSeries   bool               `json:"has_serie_historica"`
	Store       string             `json:"tienda"`
}

// Review is a single customer review carried inside a DetailRecord.
type Review struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Author  string  `json:"author"`
	Rating  float64 `json:"rating"`
	Content string  `json:"content"`
}

// Category is one breadcrumb entry of the product category path.
type Category struct {
	URL  *string `json:"url"`
	Name *string `json:"name"`
}

// DetailRecord carries the rich store-specific attributes available for
// Amazon products only. Every optional field stays nil when the source
// omits it; nil is never replaced with an empty-string placeholder.
type DetailRecord struct {
	Brand            *string        `json:"brand"`
	ASIN             *string        `json:"asin"`
	Price            *float64       `json:"price"`
	Stock            *string        `json:"stock"`
	Title            *string        `json:"title"`
	Images           string         `json:"images"`
	Reviews          []Review       `json:"reviews"`
	Categories       []Category     `json:"category"`
	Date             string         `json:"date"`
	StoreURL         *string        `json:"store_url"`
	Description      *string        `json:"description"`
	SalesVolume      *string        `json:"sales_volume"`
	BulletPoints     *string        `json:"bullet_points"`
	ReviewsCount     *int           `json:"reviews_count"`
	Rating           *float64       `json:"rating"`
	ProductDetails   map[string]any `json:"product_details"`
	ProductOverview  []any          `json:"product_overview"`
	ReviewAISummary  *string        `json:"review_ai_summary"`
	TechnicalDetails []any          `json:"technical_details"`
}

// FirstImage returns the first entry of the comma-joined image list, or nil
// when the record carries no images.
func (d *DetailRecord) FirstImage() *string {
	if d == nil || d.Images == "" {
		return nil
	}
	img := d.Images
	for i := 0; i < len(img); i++ {
		if img[i] == ',' {
			img = img[:i]
			break
		}
	}
	if img == "" {
		return nil
	}
	return &img
}

// DetailResponse is the envelope of the worker's /amazon endpoint.
type DetailResponse struct {
	OK      bool         `json:"ok"`
	ASIN    string       `json:"asin"`
	Product DetailRecord `json:"product"`
}

// Recommendation tags returned by the analysis service.
const (
	RecommendBuy     = "comprar"
	RecommendNoBuy   = "no_comprar"
	RecommendDepends = "depende"
)

// PriceAnalysis is the nested price block of an analysis result. Each
// numeric field is independently nullable.
type PriceAnalysis struct {
	CurrentPrice *float64 `json:"precio_actual"`
	Min180d      *float64 `json:"min_180d"`
	Mean180d     *float64 `json:"media_180d"`
	IsGoodDeal   *bool    `json:"es_buena_oferta"`
	Reason       string   `json:"motivo_precio"`
}

// AnalysisResult is the structured buy/no-buy verdict produced by the AI
// analysis service.
type AnalysisResult struct {
	Recommendation string        `json:"recomendacion"`
	Arguments      string        `json:"argumentos"`
	PriceAnalysis  PriceAnalysis `json:"analisis_precio"`
	Pros           []string      `json:"pros"`
	Cons           []string      `json:"contras"`
	Summary        string        `json:"resumen"`
}

// AnalysisResponse is the envelope of the worker's /analyze endpoint.
type AnalysisResponse struct {
	OK     bool           `json:"ok"`
	Model  string         `json:"model"`
	Result AnalysisResult `json:"json"`
}

// AnalyzeRequest is the body posted to the worker's /analyze endpoint.
type AnalyzeRequest struct {
	Product   *DetailRecord  `json:"product"`
	Verifier  VerifierRecord `json:"verificador"`
	CustomAsk string         `json:"customAsk,omitempty"`
}

// MergedView is the normalized product representation the rendering layer
// consumes. Fields missing from both sources are nil, never placeholders.
type MergedView struct {
	Title        string   `json:"title"`
	Image        *string  `json:"image,omitempty"`
	Brand        *string  `json:"brand,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	Rating       *float64 `json:"rating,omitempty"`
	ReviewsCount *int     `json:"reviewsCount,omitempty"`
	Stock        *string  `json:"stock,omitempty"`
}

// ChartPoint is one plotted sample, carrying both screen coordinates and the
// original date/price for labels and tooltips.
type ChartPoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Date  string  `json:"fecha"`
	Price float64 `json:"precio"`
}

// GridLine is one horizontal gridline of the price axis.
type GridLine struct {
	Y     float64 `json:"y"`
	Price float64 `json:"price"`
	Label string  `json:"label"`
}

// AxisLabel is one subsampled date label along the horizontal axis.
type AxisLabel struct {
	X     float64 `json:"x"`
	Label string  `json:"label"`
}

// ChartGeometry is the full set of plot coordinates for a price history
// line chart on a fixed canvas.
type ChartGeometry struct {
	Width      float64      `json:"width"`
	Height     float64      `json:"height"`
	Padding    float64      `json:"padding"`
	MinPrice   float64      `json:"minPrice"`
	MaxPrice   float64      `json:"maxPrice"`
	Points     []ChartPoint `json:"points"`
	Path       string       `json:"path"`
	GridLines  []GridLine   `json:"gridLines"`
	DateLabels []AxisLabel  `json:"dateLabels"`
}

// ProductView is the complete aggregated view of one product.
type ProductView struct {
	URL         string         `json:"url"`
	Store       Store          `json:"store"`
	StoreConfig StoreConfig    `json:"storeConfig"`
	Verifier    VerifierRecord `json:"verifier"`
	Detail      *DetailRecord  `json:"detail,omitempty"`
	Merged      MergedView     `json:"merged"`
	Chart       *ChartGeometry `json:"chart,omitempty"`
}

// CompareSide holds one product's outcome in comparison mode; the two sides
// succeed or fail independently.
type CompareSide struct {
	View  *ProductView `json:"view,omitempty"`
	Error string       `json:"error,omitempty"`
}

// CompareView is the side-by-side result of comparison mode.
type CompareView struct {
	A CompareSide `json:"a"`
	B CompareSide `json:"b"`
}
