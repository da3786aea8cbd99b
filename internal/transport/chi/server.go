package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain"
	domainanswer "github.com/maryamnawas03/consultancy-AI-agent/internal/domain/answer"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/cases"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/search/mode"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/search/request"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain/search/result"
	"github.com/maryamnawas03/consultancy-AI-agent/internal/logger"
	answeruc "github.com/maryamnawas03/consultancy-AI-agent/internal/usecase/answer"
	healthuc "github.com/maryamnawas03/consultancy-AI-agent/internal/usecase/health"
)

// StatusMessage is the fixed status line of GET /.
const StatusMessage = "Construction Consulting API is running"

const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

type chatService interface {
	Chat(ctx context.Context, in answeruc.ChatInput) (domainanswer.Answer, error)
}

type searchService interface {
	Search(ctx context.Context, req request.Request) ([]result.ScoredCase, error)
	CaseByID(id string) (cases.Case, bool)
	CorpusSize() int
}

type healthService interface {
	Check(ctx context.Context) healthuc.Report
}

// SearchDefaults fill in omitted /search request fields.
type SearchDefaults struct {
	Mode    mode.Mode
	TopK    int
	MaxTopK int
	Weights request.Weights
}

// Server holds the HTTP handlers.
type Server struct {
	chat          chatService
	search        searchService
	health        healthService
	defaults      SearchDefaults
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	chat chatService,
	search searchService,
	health healthService,
	defaults SearchDefaults,
	logger *zap.Logger,
) *Server {
	s := &Server{
		chat:     chat,
		search:   search,
		health:   health,
		defaults: defaults,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrNotReady, http.StatusServiceUnavailable, CodeNotReady),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProvider),
		sentinelHandler(domain.ErrVectorStoreError, http.StatusBadGateway, CodeVectorStore),
		sentinelHandler(domain.ErrLLMUnavailable, http.StatusBadGateway, CodeLLMUnavailable),
	}
	return s
}

// Mount registers the routes on r.
func (s *Server) Mount(r chi.Router) {
	r.Get("/", s.Status)
	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/chat", s.Chat)
	r.Post("/search", s.Search)
	r.Get("/cases/{caseID}", s.GetCase)
}

// Status handles GET /.
func (s *Server) Status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: StatusMessage, CasesLoaded: s.search.CorpusSize()})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:      string(report.Status),
		CasesLoaded: report.CasesLoaded,
		Checks:      checks,
	})
}

// Chat handles POST /chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ans, err := s.chat.Chat(r.Context(), answeruc.ChatInput{
		SessionID: req.SessionID,
		Message:   req.Message,
		TopK:      req.TopK,
		Mode:      req.Mode,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	sources := ans.Sources
	if sources == nil {
		sources = []string{}
	}
	writeJSON(w, http.StatusOK, ChatResponse{
		Answer:        ans.Text,
		Sources:       sources,
		BestScore:     ans.BestScore,
		Method:        string(ans.Method),
		SearchMode:    ans.SearchMode,
		Trade:         ans.Trade,
		LowConfidence: ans.LowConfidence,
	})
}

// Search handles POST /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	m := s.defaults.Mode
	if req.Mode != "" {
		m = mode.Parse(req.Mode)
	}
	topK := req.TopK
	if topK == 0 {
		topK = s.defaults.TopK
	}
	weights := s.defaults.Weights
	if req.SemanticWeight != nil {
		weights.Semantic = *req.SemanticWeight
	}
	if req.KeywordWeight != nil {
		weights.Keyword = *req.KeywordWeight
	}

	searchReq, err := request.New(req.Query, m, topK, s.defaults.MaxTopK, weights)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	results, err := s.search.Search(r.Context(), searchReq)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]SearchResultItem, len(results))
	for i := range results {
		items[i] = searchResultItem(&results[i])
	}
	writeJSON(w, http.StatusOK, SearchResponse{
		Items: items,
		Total: len(items),
		Mode:  string(searchReq.Mode()),
	})
}

// GetCase handles GET /cases/{caseID}.
func (s *Server) GetCase(w http.ResponseWriter, r *http.Request) {
	c, ok := s.search.CaseByID(chi.URLParam(r, "caseID"))
	if !ok {
		s.handleDomainError(w, r, domain.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, caseItem(&c))
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-safe message. Validation errors keep
// their detail, everything else is reduced to its sentinel text.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidRequest) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrNotReady,
		domain.ErrRateLimited,
		domain.ErrEmbeddingProviderError,
		domain.ErrVectorStoreError,
		domain.ErrLLMUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternal, "internal error")
}

func caseItem(c *cases.Case) CaseItem {
	return CaseItem{
		CaseID:   c.ID(),
		Title:    c.Title(),
		Problem:  c.Problem(),
		Solution: c.Solution(),
		Tags:     c.Tags(),
	}
}

func searchResultItem(r *result.ScoredCase) SearchResultItem {
	c := r.Case()
	item := SearchResultItem{
		CaseItem: caseItem(&c),
		Score:    r.Score(),
		Method:   string(r.Method()),
	}
	if r.Method() == result.Hybrid {
		sem, kw := r.SemanticScore(), r.KeywordScore()
		item.SemanticScore = &sem
		item.KeywordScore = &kw
	}
	return item
}
