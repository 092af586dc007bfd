// Package llmtest provides deterministic in-process stand-ins for the model
// gateway, so retrieval behavior is testable without a model server.
package llmtest

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// VocabEmbedder maps text to a normalized bag-of-words vector over a fixed
// vocabulary, one dimension per term plus a catch-all. Texts sharing terms
// get high cosine similarity, which is enough to exercise ranking.
type VocabEmbedder struct {
	Vocab []string

	// Fail, when set, makes every call return this error.
	Fail error

	// Calls counts EmbedBatch invocations.
	Calls int
}

// Embed vectorizes a single text.
func (e *VocabEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch vectorizes texts in order.
func (e *VocabEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.Calls++
	if e.Fail != nil {
		return nil, e.Fail
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.vectorize(text)
	}
	return vectors, nil
}

func (e *VocabEmbedder) vectorize(text string) []float32 {
	v := make([]float32, len(e.Vocab)+1)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,:;!?#>()[]`\"'")
		idx := len(e.Vocab) // catch-all dimension
		for j, term := range e.Vocab {
			if word == term {
				idx = j
				break
			}
		}
		v[idx]++
	}

	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum > 0 {
		inv := float32(1 / math.Sqrt(sum))
		for i := range v {
			v[i] *= inv
		}
	}
	return v
}

// EchoGenerator returns a canned answer and records the prompts it saw.
type EchoGenerator struct {
	Answer  string
	Systems []string
	Prompts []string
	Fail    error
}

// Generate records the call and returns the canned answer.
func (g *EchoGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	if g.Fail != nil {
		return "", g.Fail
	}
	g.Systems = append(g.Systems, system)
	g.Prompts = append(g.Prompts, prompt)
	if g.Answer == "" {
		return fmt.Sprintf("echo: %d prompts seen", len(g.Prompts)), nil
	}
	return g.Answer, nil
}
