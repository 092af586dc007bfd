// Package rag merges retrieved context with the user question into a
// grounded prompt and delegates the answer to the generative model.
package rag

import (
	"context"
	"fmt"
)

// systemInstruction pins the model to the retrieved context. The passages in
// the context are prefixed with their source paths, which the model is told
// to cite.
const systemInstruction = `You are an assistant for question-answering tasks. Use only the pieces of retrieved context supplied by the user to answer the question. If the context does not contain the answer, say that you don't know. Keep the answer concise, three sentences maximum, and cite the source path(s) of the passages you used.`

// promptTemplate frames the context and question for the model.
const promptTemplate = `<context>
%s
</context>

Answer the following question:

%s`

// Generator produces text from a system instruction and a prompt.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Answerer turns a question plus assembled context into a grounded answer.
type Answerer struct {
	generator Generator
}

// NewAnswerer creates an answerer backed by the given generator.
func NewAnswerer(generator Generator) *Answerer {
	return &Answerer{generator: generator}
}

// Answer builds the grounded prompt and delegates to the generative model.
func (a *Answerer) Answer(ctx context.Context, question, contextText string) (string, error) {
	prompt := fmt.Sprintf(promptTemplate, contextText, question)
	answer, err := a.generator.Generate(ctx, systemInstruction, prompt)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return answer, nil
}
