package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/artxeweb/comparaelprecio-api/internal/platform/worker"
	"github.com/artxeweb/comparaelprecio-api/pkg/model"
)

// AnalysisState enumerates the analysis session lifecycle. Making the
// states explicit keeps illegal combinations (loading and errorReady at
// once) unrepresentable.
type AnalysisState string

const (
	StateIdle        AnalysisState = "idle"
	StateLoading     AnalysisState = "loading"
	StateResultReady AnalysisState = "resultReady"
	StateErrorReady  AnalysisState = "errorReady"
)

var (
	// ErrAnalysisInFlight rejects overlapping submissions; the in-flight
	// request is never cancelled in favor of a new one.
	ErrAnalysisInFlight = errors.New("analysis request already in flight")
	// ErrAnalysisDone rejects a new request while a result is held; the
	// caller must Reset first to ask again.
	ErrAnalysisDone = errors.New("analysis result present, reset the session first")
	// ErrNothingToReset rejects Reset outside resultReady/errorReady.
	ErrNothingToReset = errors.New("session has nothing to reset")
)

// Analyzer is the outbound analysis call, satisfied by *worker.Client.
type Analyzer interface {
	Analyze(ctx context.Context, req model.AnalyzeRequest) (model.AnalysisResponse, error)
}

// AnalysisSession drives the on-demand AI analysis for one product view:
// idle → loading → resultReady | errorReady, with both terminal states able
// to return to idle via Reset and errorReady able to retry directly. A
// session is owned by the view that created it and never shared.
type AnalysisSession struct {
	analyzer Analyzer

	mu       sync.Mutex
	state    AnalysisState
	result   *model.AnalysisResponse
	errMsg   string
	question string
}

func NewAnalysisSession(analyzer Analyzer) *AnalysisSession {
	return &AnalysisSession{analyzer: analyzer, state: StateIdle}
}

// RequestAnalysis submits one analysis request. Valid from idle and
// errorReady only; a session already loading or holding a result rejects
// the call without issuing a second network request. The session performs
// no automatic retries.
func (s *AnalysisSession) RequestAnalysis(ctx context.Context, product *model.DetailRecord, verifier model.VerifierRecord, customAsk string) error {
	s.mu.Lock()
	switch s.state {
	case StateLoading:
		s.mu.Unlock()
		return ErrAnalysisInFlight
	case StateResultReady:
		s.mu.Unlock()
		return ErrAnalysisDone
	}
	s.state = StateLoading
	s.errMsg = ""
	s.question = customAsk
	s.mu.Unlock()

	resp, err := s.analyzer.Analyze(ctx, model.AnalyzeRequest{
		Product:   product,
		Verifier:  verifier,
		CustomAsk: customAsk,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateErrorReady
		s.errMsg = analysisErrorMessage(err)
		return err
	}
	s.result = &resp
	s.state = StateResultReady
	return nil
}

// Reset clears the stored result or error and the entered question so a new
// analysis can be composed. Valid from resultReady and errorReady.
func (s *AnalysisSession) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateResultReady, StateErrorReady:
		s.state = StateIdle
		s.result = nil
		s.errMsg = ""
		s.question = ""
		return nil
	default:
		return ErrNothingToReset
	}
}

// State returns the current lifecycle state.
func (s *AnalysisSession) State() AnalysisState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Result returns the held analysis response, nil outside resultReady.
func (s *AnalysisSession) Result() *model.AnalysisResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// ErrorMessage returns the user-facing failure text, empty outside errorReady.
func (s *AnalysisSession) ErrorMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Question returns the free-text question of the current request, if any.
func (s *AnalysisSession) Question() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.question
}

// analysisErrorMessage prefers the worker's response body text, which is
// what the analysis endpoint puts its human-readable errors in.
func analysisErrorMessage(err error) string {
	var statusErr *worker.StatusError
	if errors.As(err, &statusErr) && statusErr.Body != "" {
		return statusErr.Body
	}
	return err.Error()
}

type sessionEntry struct {
	session    *AnalysisSession
	productURL string
}

// SessionRegistry hands each product view its own analysis session, keyed
// by an opaque id.
type SessionRegistry struct {
	analyzer Analyzer

	mu       sync.Mutex
	sessions map[string]sessionEntry
	nextID   atomic.Uint64
}

func NewSessionRegistry(analyzer Analyzer) *SessionRegistry {
	return &SessionRegistry{
		analyzer: analyzer,
		sessions: make(map[string]sessionEntry),
	}
}

// Create binds a fresh idle session to a product URL and returns its id.
func (r *SessionRegistry) Create(productURL string) string {
	id := fmt.Sprintf("SES_%d", r.nextID.Add(1))
	r.mu.Lock()
	r.sessions[id] = sessionEntry{
		session:    NewAnalysisSession(r.analyzer),
		productURL: productURL,
	}
	r.mu.Unlock()
	return id
}

// Get returns the session and its bound product URL.
func (r *SessionRegistry) Get(id string) (*AnalysisSession, string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[id]
	return entry.session, entry.productURL, ok
}
