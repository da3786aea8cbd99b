package chi

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

// Error codes returned in ErrorResponse.
const (
	CodeBadRequest        ErrorCode = "bad_request"
	CodeValidationFailed  ErrorCode = "validation_failed"
	CodeNotFound          ErrorCode = "not_found"
	CodeNotReady          ErrorCode = "not_ready"
	CodeRateLimited       ErrorCode = "rate_limited"
	CodeEmbeddingProvider ErrorCode = "embedding_provider_error"
	CodeVectorStore       ErrorCode = "vector_store_error"
	CodeLLMUnavailable    ErrorCode = "llm_unavailable"
	CodeInternal          ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// StatusResponse is returned by GET /.
type StatusResponse struct {
	Status      string `json:"status"`
	CasesLoaded int    `json:"cases_loaded"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status      string            `json:"status"`
	CasesLoaded int               `json:"cases_loaded"`
	Checks      map[string]string `json:"checks"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	TopK      int    `json:"top_k,omitempty"`
	Mode      string `json:"mode,omitempty"`
}

// ChatResponse is returned by POST /chat.
type ChatResponse struct {
	Answer        string   `json:"answer"`
	Sources       []string `json:"sources"`
	BestScore     float64  `json:"best_score"`
	Method        string   `json:"method"`
	SearchMode    string   `json:"search_mode"`
	Trade         string   `json:"trade"`
	LowConfidence bool     `json:"low_confidence"`
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query          string   `json:"query"`
	Mode           string   `json:"mode,omitempty"`
	TopK           int      `json:"top_k,omitempty"`
	SemanticWeight *float64 `json:"semantic_weight,omitempty"`
	KeywordWeight  *float64 `json:"keyword_weight,omitempty"`
}

// CaseItem is one case in a response.
type CaseItem struct {
	CaseID   string `json:"case_id"`
	Title    string `json:"title"`
	Problem  string `json:"problem"`
	Solution string `json:"solution"`
	Tags     string `json:"tags"`
}

// SearchResultItem is one ranked case.
type SearchResultItem struct {
	CaseItem
	Score         float64  `json:"score"`
	Method        string   `json:"method"`
	SemanticScore *float64 `json:"semantic_score,omitempty"`
	KeywordScore  *float64 `json:"keyword_score,omitempty"`
}

// SearchResponse is returned by POST /search.
type SearchResponse struct {
	Items []SearchResultItem `json:"items"`
	Total int                `json:"total"`
	Mode  string             `json:"mode"`
}
