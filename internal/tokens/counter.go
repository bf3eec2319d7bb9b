package tokens

import (
	"github.com/tiktoken-go/tokenizer"
)

// Counter estimates how many tokens a prompt occupies.
type Counter interface {
	Count(text string) int
}

// TiktokenCounter counts with the cl100k_base encoding. Anthropic models do not publish
// their tokenizer, so the result is an estimate for them.
type TiktokenCounter struct {
	codec tokenizer.Codec
}

func NewTiktokenCounter() *TiktokenCounter {
	codec, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		return &TiktokenCounter{}
	}
	return &TiktokenCounter{codec: codec}
}

func (c *TiktokenCounter) Count(text string) int {
	if c.codec == nil {
		return Estimate(text)
	}

	ids, _, err := c.codec.Encode(text)
	if err != nil {
		return Estimate(text)
	}
	return len(ids)
}

// Estimate is the rough four-characters-per-token rule.
func Estimate(text string) int {
	return len(text) / 4
}
