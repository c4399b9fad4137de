package config

// Config is the root configuration for the tripseek server.
type Config struct {
	Logging   LoggingConfig   `json:"logging" yaml:"logging"`
	LLM       LLMConfig       `json:"llm" yaml:"llm"`
	Embedding EmbeddingConfig `json:"embedding" yaml:"embedding"`
	VectorDB  VectorDBConfig  `json:"vectordb" yaml:"vectordb"`
	Encoder   EncoderConfig   `json:"encoder" yaml:"encoder"`
	Search    SearchConfig    `json:"search" yaml:"search"`
	Rerank    RerankConfig    `json:"rerank" yaml:"rerank"`
	Geocode   GeocodeConfig   `json:"geocode" yaml:"geocode"`
	WebSearch WebSearchConfig `json:"web_search" yaml:"web_search"`
	Metrics   MetricsConfig   `json:"metrics" yaml:"metrics"`
	// Session persistence; nil or store=inmemory keeps sessions in process.
	Session *SessionConfig `json:"session,omitempty" yaml:"session,omitempty"`
	// HTTP holds global defaults for outbound calls (reranker, geocoder, web search).
	HTTP *HTTPClientConfig `json:"http,omitempty" yaml:"http,omitempty"`
	// Feedback tunes adaptive topK bumping from recent grading outcomes.
	Feedback *FeedbackConfig `json:"feedback,omitempty" yaml:"feedback,omitempty"`
	// Cache controls caching of completed turn answers.
	Cache *CacheConfig `json:"cache,omitempty" yaml:"cache,omitempty"`
}

type LoggingConfig struct {
	Level string `json:"level,omitempty" yaml:"level,omitempty"` // debug, info, warn, error
}

// LLMConfig defines the chat-completion model used for grading, query
// refinement, fallback generation and plan generation.
type LLMConfig struct {
	Provider    string  `json:"provider" yaml:"provider"` // Available options: openai (and compatible endpoints)
	APIKey      string  `json:"api_key,omitempty" yaml:"api_key"`
	BaseURL     string  `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model       string  `json:"model" yaml:"model"`
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	// ContextTokenBudget caps tokens of retrieved context handed to the model.
	ContextTokenBudget int `json:"context_token_budget,omitempty" yaml:"context_token_budget,omitempty"`
}

// EmbeddingConfig defines the dense embedding model.
type EmbeddingConfig struct {
	Provider   string `json:"provider" yaml:"provider"` // Available options: openai (and compatible endpoints)
	APIKey     string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL    string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model      string `json:"model,omitempty" yaml:"model,omitempty"`
	Dimensions int    `json:"dimensions,omitempty" yaml:"dimension,omitempty"`
}

// VectorDBConfig defines the POI search backend.
type VectorDBConfig struct {
	Provider   string `json:"provider" yaml:"provider"` // Available options: milvus
	Host       string `json:"host,omitempty" yaml:"host,omitempty"`
	Port       int    `json:"port,omitempty" yaml:"port,omitempty"`
	Database   string `json:"database,omitempty" yaml:"database,omitempty"`
	Collection string `json:"collection,omitempty" yaml:"collection,omitempty"`
	Username   string `json:"username,omitempty" yaml:"username,omitempty"`
	Password   string `json:"password,omitempty" yaml:"password,omitempty"`
	// Field names of the three retrieval modalities in the collection.
	DenseField    string `json:"dense_field,omitempty" yaml:"dense_field,omitempty"`
	SparseField   string `json:"sparse_field,omitempty" yaml:"sparse_field,omitempty"`
	FulltextField string `json:"fulltext_field,omitempty" yaml:"fulltext_field,omitempty"`
}

// EncoderConfig bounds the TF-IDF vocabulary built from the corpus at startup.
type EncoderConfig struct {
	MaxVocabSize int `json:"max_vocab_size,omitempty" yaml:"max_vocab_size,omitempty"`
	// ScanBatchSize is the page size used when scanning corpus texts for fitting.
	ScanBatchSize int `json:"scan_batch_size,omitempty" yaml:"scan_batch_size,omitempty"`
}

// SearchConfig tunes retrieval sizing and the correction loop budget.
type SearchConfig struct {
	// Mode: balanced (default), semantic, keyword, exact.
	Mode string `json:"mode,omitempty" yaml:"mode,omitempty"`
	// TopK band for dynamically sized requests.
	TopKDefault int `json:"top_k_default,omitempty" yaml:"top_k_default,omitempty"`
	TopKMin     int `json:"top_k_min,omitempty" yaml:"top_k_min,omitempty"`
	TopKMax     int `json:"top_k_max,omitempty" yaml:"top_k_max,omitempty"`
	// MaxRetry bounds refine cycles per turn.
	MaxRetry int `json:"max_retry,omitempty" yaml:"max_retry,omitempty"`
}

type RerankConfig struct {
	Enable   bool   `json:"enable,omitempty" yaml:"enable,omitempty"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Model    string `json:"model,omitempty" yaml:"model,omitempty"`
	APIKey   string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	TopN     int    `json:"top_n,omitempty" yaml:"top_n,omitempty"`
}

// GeocodeConfig controls coordinate backfill for POIs missing lat/lon.
type GeocodeConfig struct {
	Enable   bool   `json:"enable,omitempty" yaml:"enable,omitempty"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	// Contact goes into the User-Agent, as Nominatim-style services require.
	Contact string `json:"contact,omitempty" yaml:"contact,omitempty"`
}

// WebSearchConfig controls the optional web context feeding fallback generation.
type WebSearchConfig struct {
	Enable   bool   `json:"enable,omitempty" yaml:"enable,omitempty"`
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"` // Available options: duckduckgo
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	MaxHits  int    `json:"max_hits,omitempty" yaml:"max_hits,omitempty"`
}

type MetricsConfig struct {
	Enable bool   `json:"enable,omitempty" yaml:"enable,omitempty"`
	Listen string `json:"listen,omitempty" yaml:"listen,omitempty"`
	Path   string `json:"path,omitempty" yaml:"path,omitempty"`
}

// SessionConfig controls session persistence.
// Store: "inmemory" (default) or "redis".
type SessionConfig struct {
	Store      string       `json:"store,omitempty" yaml:"store,omitempty"`
	TTLSeconds int          `json:"ttl_seconds,omitempty" yaml:"ttl_seconds,omitempty"`
	Redis      *RedisConfig `json:"redis,omitempty" yaml:"redis,omitempty"`
}

type RedisConfig struct {
	Address  string `json:"address" yaml:"address"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	DB       int    `json:"db,omitempty" yaml:"db,omitempty"`
}

// HTTPClientConfig defines common options for outbound HTTP calls.
type HTTPClientConfig struct {
	TimeoutMs              int      `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
	Retry                  int      `json:"retry,omitempty" yaml:"retry,omitempty"`
	BackoffMinMs           int      `json:"backoff_min_ms,omitempty" yaml:"backoff_min_ms,omitempty"`
	BackoffMaxMs           int      `json:"backoff_max_ms,omitempty" yaml:"backoff_max_ms,omitempty"`
	HostAllowlist          []string `json:"host_allowlist,omitempty" yaml:"host_allowlist,omitempty"`
	MaxConsecutiveFailures int      `json:"max_consecutive_failures,omitempty" yaml:"max_consecutive_failures,omitempty"`
	CircuitOpenSeconds     int      `json:"circuit_open_seconds,omitempty" yaml:"circuit_open_seconds,omitempty"`
}

type FeedbackConfig struct {
	Window int `json:"window,omitempty" yaml:"window,omitempty"`
	// PoorThreshold is the poor-outcome count within the window that triggers a bump.
	PoorThreshold int `json:"poor_threshold,omitempty" yaml:"poor_threshold,omitempty"`
	TopKStep      int `json:"topk_step,omitempty" yaml:"topk_step,omitempty"`
	TopKMax       int `json:"topk_max,omitempty" yaml:"topk_max,omitempty"`
	CooldownSec   int `json:"cooldown_seconds,omitempty" yaml:"cooldown_seconds,omitempty"`
}

type CacheConfig struct {
	Enable     bool `json:"enable,omitempty" yaml:"enable,omitempty"`
	MaxEntries int  `json:"max_entries,omitempty" yaml:"max_entries,omitempty"`
	TTLSeconds int  `json:"ttl_seconds,omitempty" yaml:"ttl_seconds,omitempty"`
}

// ApplyDefaults fills unset fields with working defaults.
func (c *Config) ApplyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.2
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 2048
	}
	if c.LLM.ContextTokenBudget == 0 {
		c.LLM.ContextTokenBudget = 3000
	}
	if c.VectorDB.Port == 0 {
		c.VectorDB.Port = 19530
	}
	if c.VectorDB.DenseField == "" {
		c.VectorDB.DenseField = "dense_vector"
	}
	if c.VectorDB.SparseField == "" {
		c.VectorDB.SparseField = "sparse_vector"
	}
	if c.VectorDB.FulltextField == "" {
		c.VectorDB.FulltextField = "text_sparse"
	}
	if c.Encoder.MaxVocabSize == 0 {
		c.Encoder.MaxVocabSize = 100000
	}
	if c.Encoder.ScanBatchSize == 0 {
		c.Encoder.ScanBatchSize = 1000
	}
	if c.Search.Mode == "" {
		c.Search.Mode = "balanced"
	}
	if c.Search.TopKDefault == 0 {
		c.Search.TopKDefault = 20
	}
	if c.Search.TopKMin == 0 {
		c.Search.TopKMin = 10
	}
	if c.Search.TopKMax == 0 {
		c.Search.TopKMax = 50
	}
	if c.Search.MaxRetry == 0 {
		c.Search.MaxRetry = 2
	}
	if c.Rerank.TopN == 0 {
		c.Rerank.TopN = 10
	}
	if c.WebSearch.Provider == "" {
		c.WebSearch.Provider = "duckduckgo"
	}
	if c.WebSearch.MaxHits == 0 {
		c.WebSearch.MaxHits = 5
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.Listen == "" {
		c.Metrics.Listen = ":9090"
	}
	if c.Session == nil {
		c.Session = &SessionConfig{Store: "inmemory"}
	}
	if c.Session.Store == "" {
		c.Session.Store = "inmemory"
	}
	if c.Session.TTLSeconds == 0 {
		c.Session.TTLSeconds = 24 * 3600
	}
	if c.Feedback == nil {
		c.Feedback = &FeedbackConfig{}
	}
	if c.Feedback.Window == 0 {
		c.Feedback.Window = 20
	}
	if c.Feedback.PoorThreshold == 0 {
		c.Feedback.PoorThreshold = 5
	}
	if c.Feedback.TopKStep == 0 {
		c.Feedback.TopKStep = 5
	}
	if c.Feedback.TopKMax == 0 {
		c.Feedback.TopKMax = c.Search.TopKMax
	}
	if c.Feedback.CooldownSec == 0 {
		c.Feedback.CooldownSec = 60
	}
	if c.Cache == nil {
		c.Cache = &CacheConfig{}
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = 256
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = 300
	}
}
