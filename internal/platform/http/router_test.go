package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/artxeweb/comparaelprecio-api/internal/business/catalog"
	"github.com/artxeweb/comparaelprecio-api/pkg/model"
)

type stubSource struct {
	verifier    model.VerifierRecord
	verifierErr error
	detail      model.DetailResponse
	detailErr   error
}

func (s *stubSource) Verifier(_ context.Context, _ string) (model.VerifierRecord, error) {
	return s.verifier, s.verifierErr
}

func (s *stubSource) Detail(_ context.Context, _ string) (model.DetailResponse, error) {
	return s.detail, s.detailErr
}

type stubAnalyzer struct {
	resp model.AnalysisResponse
	err  error
}

func (s *stubAnalyzer) Analyze(_ context.Context, _ model.AnalyzeRequest) (model.AnalysisResponse, error) {
	return s.resp, s.err
}

func newTestRouter(source *stubSource, analyzer *stubAnalyzer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(catalog.NewService(source), catalog.NewSessionRegistry(analyzer), "*")
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	decoded := map[string]json.RawMessage{}
	if rr.Body.Len() > 0 {
		if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON response %q: %v", rr.Body.String(), err)
		}
	}
	return rr, decoded
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(&stubSource{}, &stubAnalyzer{})
	rr, _ := doJSON(t, router, http.MethodGet, "/healthz", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d", rr.Code)
	}
}

func TestGetProductRequiresURL(t *testing.T) {
	router := newTestRouter(&stubSource{}, &stubAnalyzer{})
	rr, _ := doJSON(t, router, http.MethodGet, "/api/product", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestGetProductSuccess(t *testing.T) {
	title := "Teclado mecánico"
	source := &stubSource{verifier: model.VerifierRecord{Title: &title}}
	router := newTestRouter(source, &stubAnalyzer{})

	rr, body := doJSON(t, router, http.MethodGet, "/api/product?url=https%3A%2F%2Fwww.carrefour.es%2Fp%2Ftv", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}

	var merged model.MergedView
	if err := json.Unmarshal(body["merged"], &merged); err != nil {
		t.Fatalf("decode merged: %v", err)
	}
	if merged.Title != title {
		t.Errorf("merged title = %q", merged.Title)
	}

	var store model.Store
	if err := json.Unmarshal(body["store"], &store); err != nil {
		t.Fatalf("decode store: %v", err)
	}
	if store != model.StoreCarrefour {
		t.Errorf("store = %s", store)
	}
}

func TestGetProductVerifierFailure(t *testing.T) {
	source := &stubSource{verifierErr: errors.New("worker 500")}
	router := newTestRouter(source, &stubAnalyzer{})

	rr, body := doJSON(t, router, http.MethodGet, "/api/product?url=https%3A%2F%2Fwww.amazon.es%2Fdp%2FX", nil)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rr.Code)
	}
	if string(body["error"]) != `"could not load product"` {
		t.Errorf("error = %s, must stay generic", body["error"])
	}
}

func TestCompareRequiresBothURLs(t *testing.T) {
	router := newTestRouter(&stubSource{}, &stubAnalyzer{})
	rr, _ := doJSON(t, router, http.MethodGet, "/api/compare?urlA=https%3A%2F%2Fwww.amazon.es%2Fdp%2FX", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestCompareReturnsBothSides(t *testing.T) {
	title := "TV"
	source := &stubSource{verifier: model.VerifierRecord{Title: &title}}
	router := newTestRouter(source, &stubAnalyzer{})

	rr, body := doJSON(t, router, http.MethodGet, "/api/compare?urlA=https%3A%2F%2Fwww.carrefour.es%2Fp%2Fa&urlB=https%3A%2F%2Fwww.mediamarkt.es%2Fp%2Fb", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	var side model.CompareSide
	if err := json.Unmarshal(body["a"], &side); err != nil {
		t.Fatalf("decode side a: %v", err)
	}
	if side.View == nil || side.View.Merged.Title != "TV" {
		t.Errorf("side a = %+v", side)
	}
}

func TestAnalysisSessionFlow(t *testing.T) {
	title := "Teclado"
	source := &stubSource{verifier: model.VerifierRecord{Title: &title}}
	analyzer := &stubAnalyzer{resp: model.AnalysisResponse{
		OK:     true,
		Model:  "gpt-test",
		Result: model.AnalysisResult{Recommendation: model.RecommendBuy, Summary: "buen precio"},
	}}
	router := newTestRouter(source, analyzer)

	rr, body := doJSON(t, router, http.MethodPost, "/api/analysis/sessions", map[string]string{"url": "https://www.carrefour.es/p/tv"})
	if rr.Code != http.StatusOK {
		t.Fatalf("create status = %d", rr.Code)
	}
	var sessionID string
	if err := json.Unmarshal(body["sessionId"], &sessionID); err != nil || sessionID == "" {
		t.Fatalf("sessionId = %s (%v)", body["sessionId"], err)
	}

	rr, body = doJSON(t, router, http.MethodGet, "/api/analysis/sessions/"+sessionID, nil)
	if rr.Code != http.StatusOK || string(body["state"]) != `"idle"` {
		t.Fatalf("initial state = %s (status %d)", body["state"], rr.Code)
	}

	rr, body = doJSON(t, router, http.MethodPost, "/api/analysis/sessions/"+sessionID+"/request", map[string]string{"customAsk": "¿vale la pena?"})
	if rr.Code != http.StatusOK {
		t.Fatalf("request status = %d, body %s", rr.Code, rr.Body.String())
	}
	if string(body["state"]) != `"resultReady"` {
		t.Fatalf("state = %s", body["state"])
	}

	var result model.AnalysisResponse
	if err := json.Unmarshal(body["result"], &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Result.Recommendation != model.RecommendBuy {
		t.Errorf("recommendation = %s", result.Result.Recommendation)
	}

	// A second request without reset conflicts.
	rr, _ = doJSON(t, router, http.MethodPost, "/api/analysis/sessions/"+sessionID+"/request", nil)
	if rr.Code != http.StatusConflict {
		t.Errorf("repeat request status = %d, want 409", rr.Code)
	}

	rr, body = doJSON(t, router, http.MethodPost, "/api/analysis/sessions/"+sessionID+"/reset", nil)
	if rr.Code != http.StatusOK || string(body["state"]) != `"idle"` {
		t.Fatalf("reset state = %s (status %d)", body["state"], rr.Code)
	}

	// Reset twice conflicts.
	rr, _ = doJSON(t, router, http.MethodPost, "/api/analysis/sessions/"+sessionID+"/reset", nil)
	if rr.Code != http.StatusConflict {
		t.Errorf("double reset status = %d, want 409", rr.Code)
	}
}

func TestAnalysisSessionError(t *testing.T) {
	title := "Teclado"
	source := &stubSource{verifier: model.VerifierRecord{Title: &title}}
	analyzer := &stubAnalyzer{err: errors.New("analysis backend down")}
	router := newTestRouter(source, analyzer)

	_, body := doJSON(t, router, http.MethodPost, "/api/analysis/sessions", map[string]string{"url": "https://www.carrefour.es/p/tv"})
	var sessionID string
	if err := json.Unmarshal(body["sessionId"], &sessionID); err != nil {
		t.Fatalf("sessionId: %v", err)
	}

	rr, body := doJSON(t, router, http.MethodPost, "/api/analysis/sessions/"+sessionID+"/request", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("request status = %d", rr.Code)
	}
	if string(body["state"]) != `"errorReady"` {
		t.Errorf("state = %s", body["state"])
	}
	if string(body["error"]) != `"analysis backend down"` {
		t.Errorf("error = %s", body["error"])
	}
}

func TestAnalysisSessionNotFound(t *testing.T) {
	router := newTestRouter(&stubSource{}, &stubAnalyzer{})
	rr, _ := doJSON(t, router, http.MethodGet, "/api/analysis/sessions/SES_404", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestCreateSessionRequiresURL(t *testing.T) {
	router := newTestRouter(&stubSource{}, &stubAnalyzer{})
	rr, _ := doJSON(t, router, http.MethodPost, "/api/analysis/sessions", map[string]string{})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}
