package llm

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/tripseek/tripseek/common/logger"
)

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
)

func tokenizer() *tiktoken.Tiktoken {
	encOnce.Do(func() {
		var err error
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			logger.Warnf("load tiktoken encoding failed, falling back to byte truncation: %v", err)
		}
	})
	return enc
}

// TruncateTokens cuts text down to at most budget tokens so retrieved
// context cannot blow the model's window. When the tokenizer is
// unavailable it falls back to a rough 4-bytes-per-token cut.
func TruncateTokens(text string, budget int) string {
	if budget <= 0 || text == "" {
		return text
	}
	tk := tokenizer()
	if tk == nil {
		limit := budget * 4
		if len(text) <= limit {
			return text
		}
		return text[:limit]
	}
	tokens := tk.Encode(text, nil, nil)
	if len(tokens) <= budget {
		return text
	}
	return tk.Decode(tokens[:budget])
}
