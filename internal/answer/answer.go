package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/docbase/docbase/pkg/types"
)

// FallbackAnswer is returned whenever generation cannot produce a real
// answer, so callers always get a displayable string.
const FallbackAnswer = "Sorry, I couldn't generate an answer at this time."

// DefaultMaxContextChars bounds the assembled context passed to the
// generator.
const DefaultMaxContextChars = 8000

// Generator produces an answer for a fully assembled prompt. The
// OpenAI-backed implementation lives in this package; tests substitute
// a stub.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Assembler turns ranked search results into a grounded answer. It
// never fails loudly: any generation problem yields FallbackAnswer.
type Assembler struct {
	generator       Generator
	maxContextChars int
}

// NewAssembler creates an assembler over a generator. A nil generator
// is allowed; every call then returns the fallback.
func NewAssembler(gen Generator, maxContextChars int) *Assembler {
	if maxContextChars <= 0 {
		maxContextChars = DefaultMaxContextChars
	}
	return &Assembler{
		generator:       gen,
		maxContextChars: maxContextChars,
	}
}

// GenerateAnswer answers a question from search results. With no
// results, no generator, or a generation failure it returns
// FallbackAnswer rather than an error.
func (a *Assembler) GenerateAnswer(ctx context.Context, question string, results []types.SearchResult) string {
	if strings.TrimSpace(question) == "" || len(results) == 0 || a.generator == nil {
		return FallbackAnswer
	}

	contextText := AssembleContext(results, a.maxContextChars)
	if contextText == "" {
		return FallbackAnswer
	}

	prompt := buildPrompt(question, contextText)
	answer, err := a.generator.Generate(ctx, prompt)
	if err != nil || strings.TrimSpace(answer) == "" {
		return FallbackAnswer
	}
	return strings.TrimSpace(answer)
}

// AssembleContext joins result contents into one context block, best
// match first, truncating at a word boundary once maxChars is reached.
func AssembleContext(results []types.SearchResult, maxChars int) string {
	var sb strings.Builder
	for _, r := range results {
		content := strings.TrimSpace(r.Content)
		if content == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(content)
		if sb.Len() >= maxChars {
			break
		}
	}

	text := sb.String()
	if len(text) <= maxChars {
		return text
	}

	truncated := text[:maxChars]
	if idx := strings.LastIndexAny(truncated, " \t\n"); idx > maxChars/2 {
		truncated = truncated[:idx]
	}
	return strings.TrimSpace(truncated)
}

// buildPrompt wraps the question and context in the grounding
// instruction. The model must answer only from the supplied excerpts.
func buildPrompt(question, contextText string) string {
	return fmt.Sprintf(`You are a documentation assistant. Answer the question using only the context below. If the context does not contain the answer, say you don't have enough information.

Context:
%s

Question: %s

Answer:`, contextText, question)
}
