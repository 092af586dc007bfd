// Package chat runs the interactive query/response loop.
package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bull/mdrag/internal/index"
)

// exitCommand terminates the loop.
const exitCommand = "exit"

var (
	promptStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	scoreStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	answerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	noticeStyle  = lipgloss.NewStyle().Faint(true)
	headerStyle  = lipgloss.NewStyle().Bold(true)
	errNoContext = "No relevant context found."
)

// Retriever is the query-phase pipeline the loop dispatches into.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]index.ScoredChunk, error)
	AssembleContext(results []index.ScoredChunk) string
}

// Answerer produces a grounded answer from a question and assembled context.
type Answerer interface {
	Answer(ctx context.Context, question, contextText string) (string, error)
}

// Loop reads one query per line, dispatches it through retrieval (and, in
// RAG mode, generation), and prints the result before prompting again. RAG
// mode echoes the assembled context ahead of the generated answer.
// No state is shared between iterations beyond the already-built index.
type Loop struct {
	retriever Retriever
	answerer  Answerer // nil in pure-retrieval mode
	in        io.Reader
	out       io.Writer
}

// NewLoop creates a loop. Passing a nil answerer selects pure retrieval:
// the ranked passages themselves are the output.
func NewLoop(retriever Retriever, answerer Answerer, in io.Reader, out io.Writer) *Loop {
	return &Loop{
		retriever: retriever,
		answerer:  answerer,
		in:        in,
		out:       out,
	}
}

// Run processes input lines until the exit command or end of input. Errors
// during a single query are reported to that query only; the loop continues.
func (l *Loop) Run(ctx context.Context) error {
	fmt.Fprintln(l.out, headerStyle.Render("Ask a question about your documents. Type `exit` to quit."))

	scanner := bufio.NewScanner(l.in)
	for {
		fmt.Fprint(l.out, promptStyle.Render("> "))
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == exitCommand {
			fmt.Fprintln(l.out, noticeStyle.Render("Goodbye!"))
			return nil
		}

		if err := l.handle(ctx, line); err != nil {
			fmt.Fprintln(l.out, noticeStyle.Render(fmt.Sprintf("error: %v", err)))
		}
	}
	return scanner.Err()
}

// handle runs one query through the pipeline.
func (l *Loop) handle(ctx context.Context, query string) error {
	results, err := l.retriever.Retrieve(ctx, query, 0)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintln(l.out, noticeStyle.Render(errNoContext))
		return nil
	}

	if l.answerer == nil {
		l.printPassages(results)
		return nil
	}

	contextText := l.retriever.AssembleContext(results)
	fmt.Fprintln(l.out, noticeStyle.Render(contextText))
	answer, err := l.answerer.Answer(ctx, query, contextText)
	if err != nil {
		return err
	}
	fmt.Fprintln(l.out, answerStyle.Render(answer))
	l.printSources(results)
	return nil
}

// printPassages renders ranked passages with scores and source paths.
func (l *Loop) printPassages(results []index.ScoredChunk) {
	for _, result := range results {
		location := result.Chunk.SourcePath
		if headers := result.Chunk.Headers.String(); headers != "" {
			location += " | " + headers
		}
		fmt.Fprintf(l.out, "%s %s\n%s\n\n",
			scoreStyle.Render(fmt.Sprintf("%.3f", result.Score)),
			pathStyle.Render(location),
			result.Chunk.Body,
		)
	}
}

// printSources lists the distinct source paths behind an answer.
func (l *Loop) printSources(results []index.ScoredChunk) {
	seen := make(map[string]bool)
	var paths []string
	for _, result := range results {
		if !seen[result.Chunk.SourcePath] {
			seen[result.Chunk.SourcePath] = true
			paths = append(paths, result.Chunk.SourcePath)
		}
	}
	fmt.Fprintln(l.out, noticeStyle.Render("sources: "+strings.Join(paths, ", ")))
}
