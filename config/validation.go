package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error [%s]: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	if len(errs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("found %d configuration error(s):\n", len(errs)))
	for i, err := range errs {
		b.WriteString(fmt.Sprintf("  %d. [%s] %s\n", i+1, err.Field, err.Message))
	}
	return b.String()
}

// Validate validates the complete configuration
func (c *Config) Validate() error {
	var errs ValidationErrors

	errs = append(errs, c.validateEmbedding()...)
	errs = append(errs, c.validateVectorDB()...)
	errs = append(errs, c.validateSearch()...)
	errs = append(errs, c.validateRerank()...)
	errs = append(errs, c.validateSession()...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (c *Config) validateEmbedding() ValidationErrors {
	var errs ValidationErrors

	if c.Embedding.Provider == "" {
		errs = append(errs, ValidationError{
			Field:   "embedding.provider",
			Message: "embedding provider is required",
		})
	}

	if c.Embedding.Model == "" {
		errs = append(errs, ValidationError{
			Field:   "embedding.model",
			Message: "embedding model is required",
		})
	}

	if c.Embedding.Dimensions <= 0 {
		errs = append(errs, ValidationError{
			Field:   "embedding.dimensions",
			Message: fmt.Sprintf("embedding dimensions must be positive, got %d", c.Embedding.Dimensions),
		})
	}

	if c.Embedding.Dimensions > 0 && (c.Embedding.Dimensions < 128 || c.Embedding.Dimensions > 4096) {
		errs = append(errs, ValidationError{
			Field:   "embedding.dimensions",
			Message: fmt.Sprintf("embedding dimensions %d is outside typical range [128, 4096]", c.Embedding.Dimensions),
		})
	}

	return errs
}

func (c *Config) validateVectorDB() ValidationErrors {
	var errs ValidationErrors

	switch strings.ToLower(c.VectorDB.Provider) {
	case "":
		errs = append(errs, ValidationError{
			Field:   "vectordb.provider",
			Message: "vectordb provider is required",
		})
	case "milvus":
		if c.VectorDB.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "vectordb.host",
				Message: "vectordb host is required for milvus provider",
			})
		}
		if c.VectorDB.Collection == "" {
			errs = append(errs, ValidationError{
				Field:   "vectordb.collection",
				Message: "collection name is required for milvus provider",
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "vectordb.provider",
			Message: fmt.Sprintf("unsupported vectordb provider %q", c.VectorDB.Provider),
		})
	}

	return errs
}

func (c *Config) validateSearch() ValidationErrors {
	var errs ValidationErrors

	switch c.Search.Mode {
	case "balanced", "semantic", "keyword", "exact":
	default:
		errs = append(errs, ValidationError{
			Field:   "search.mode",
			Message: fmt.Sprintf("unknown search mode %q", c.Search.Mode),
		})
	}

	if c.Search.TopKMin > c.Search.TopKMax {
		errs = append(errs, ValidationError{
			Field:   "search.top_k_min",
			Message: fmt.Sprintf("top_k_min %d exceeds top_k_max %d", c.Search.TopKMin, c.Search.TopKMax),
		})
	}

	if c.Search.TopKDefault < c.Search.TopKMin || c.Search.TopKDefault > c.Search.TopKMax {
		errs = append(errs, ValidationError{
			Field:   "search.top_k_default",
			Message: fmt.Sprintf("top_k_default %d is outside band [%d, %d]", c.Search.TopKDefault, c.Search.TopKMin, c.Search.TopKMax),
		})
	}

	if c.Search.TopKMax > 100 {
		errs = append(errs, ValidationError{
			Field:   "search.top_k_max",
			Message: fmt.Sprintf("top_k_max %d is too large (max recommended: 100)", c.Search.TopKMax),
		})
	}

	if c.Search.MaxRetry < 0 || c.Search.MaxRetry > 5 {
		errs = append(errs, ValidationError{
			Field:   "search.max_retry",
			Message: fmt.Sprintf("max_retry must be in [0, 5], got %d", c.Search.MaxRetry),
		})
	}

	return errs
}

func (c *Config) validateRerank() ValidationErrors {
	var errs ValidationErrors

	if c.Rerank.Enable {
		if c.Rerank.Endpoint == "" {
			errs = append(errs, ValidationError{
				Field:   "rerank.endpoint",
				Message: "rerank endpoint is required when rerank is enabled",
			})
		}
		if c.Rerank.TopN < 0 {
			errs = append(errs, ValidationError{
				Field:   "rerank.top_n",
				Message: fmt.Sprintf("rerank.top_n must be non-negative, got %d", c.Rerank.TopN),
			})
		}
	}

	return errs
}

func (c *Config) validateSession() ValidationErrors {
	var errs ValidationErrors

	if c.Session == nil {
		return errs
	}
	switch c.Session.Store {
	case "", "inmemory":
	case "redis":
		if c.Session.Redis == nil || c.Session.Redis.Address == "" {
			errs = append(errs, ValidationError{
				Field:   "session.redis.address",
				Message: "redis address is required when session store is redis",
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "session.store",
			Message: fmt.Sprintf("unsupported session store %q", c.Session.Store),
		})
	}

	return errs
}
