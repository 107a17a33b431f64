package http

import (
	"errors"
	"log"
	"net/http"
	"strings"

	scalargo "github.com/bdpiprava/scalar-go"
	"github.com/gin-gonic/gin"

	"github.com/artxeweb/comparaelprecio-api/internal/business/catalog"
)

// Router wires HTTP handlers.
type Router struct {
	catalog  *catalog.Service
	sessions *catalog.SessionRegistry
	origins  string
}

func NewRouter(catalogSvc *catalog.Service, sessions *catalog.SessionRegistry, allowedOrigins string) *gin.Engine {
	r := &Router{
		catalog:  catalogSvc,
		sessions: sessions,
		origins:  allowedOrigins,
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), r.corsMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/docs", r.apiDocs)

	api := router.Group("/api")
	{
		api.GET("/product", r.getProduct)
		api.GET("/compare", r.compareProducts)

		api.POST("/analysis/sessions", r.createSession)
		api.GET("/analysis/sessions/:id", r.getSession)
		api.POST("/analysis/sessions/:id/request", r.requestAnalysis)
		api.POST("/analysis/sessions/:id/reset", r.resetSession)
	}

	return router
}

func (r *Router) corsMiddleware() gin.HandlerFunc {
	origins := strings.Split(r.origins, ",")
	trimmed := make([]string, 0, len(origins))
	for _, o := range origins {
		if t := strings.TrimSpace(o); t != "" {
			trimmed = append(trimmed, t)
		}
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowed := "*"
		for _, o := range trimmed {
			if o == "*" || o == origin {
				allowed = origin
				break
			}
		}
		c.Header("Access-Control-Allow-Origin", allowed)
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (r *Router) apiDocs(c *gin.Context) {
	html, err := scalargo.NewV2(
		scalargo.WithSpecDir("./"),
		scalargo.WithMetaDataOpts(
			scalargo.WithTitle("Comparaelprecio API"),
		),
	)
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, html)
}

func (r *Router) getProduct(c *gin.Context) {
	productURL := c.Query("url")
	if productURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	view, err := r.catalog.GetProduct(c.Request.Context(), productURL)
	if err != nil {
		// The verifier call is load-bearing; without it there is no partial
		// product to show.
		log.Printf("product load failed for %s: %v", productURL, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not load product"})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (r *Router) compareProducts(c *gin.Context) {
	urlA := c.Query("urlA")
	urlB := c.Query("urlB")
	if urlA == "" || urlB == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "urlA and urlB are required"})
		return
	}

	c.JSON(http.StatusOK, r.catalog.Compare(c.Request.Context(), urlA, urlB))
}

type createSessionReq struct {
	URL string `json:"url"`
}

func (r *Router) createSession(c *gin.Context) {
	var req createSessionReq
	if err := c.BindJSON(&req); err != nil || req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessionId": r.sessions.Create(req.URL)})
}

func (r *Router) getSession(c *gin.Context) {
	session, productURL, ok := r.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, sessionBody(session, productURL))
}

type requestAnalysisReq struct {
	CustomAsk string `json:"customAsk"`
}

func (r *Router) requestAnalysis(c *gin.Context) {
	session, productURL, ok := r.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	var req requestAnalysisReq
	if c.Request.ContentLength > 0 {
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
	}

	// Repeats are cheap here: the aggregation reads come from the cache
	// once the product view has been loaded.
	view, err := r.catalog.GetProduct(c.Request.Context(), productURL)
	if err != nil {
		log.Printf("product load failed for %s: %v", productURL, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not load product"})
		return
	}

	err = session.RequestAnalysis(c.Request.Context(), view.Detail, view.Verifier, req.CustomAsk)
	if errors.Is(err, catalog.ErrAnalysisInFlight) || errors.Is(err, catalog.ErrAnalysisDone) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	// Call failures land the session in errorReady; the body below carries
	// the stored message.
	c.JSON(http.StatusOK, sessionBody(session, productURL))
}

func (r *Router) resetSession(c *gin.Context) {
	session, productURL, ok := r.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	if err := session.Reset(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sessionBody(session, productURL))
}

func sessionBody(session *catalog.AnalysisSession, productURL string) gin.H {
	body := gin.H{
		"url":   productURL,
		"state": session.State(),
	}
	if result := session.Result(); result != nil {
		body["result"] = result
	}
	if msg := session.ErrorMessage(); msg != "" {
		body["error"] = msg
	}
	return body
}
