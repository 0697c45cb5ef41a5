package generation

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"

	"engage/internal/observability"
	"engage/internal/persona"
)

// minCommentLength is the shortest model output accepted for a slot; below
// this the slot degrades to its persona fallback.
const minCommentLength = 10

// Confidence bands, 0-100 scale. These are a presentation heuristic, not a
// model score: fallback comments are hand-written and score in the higher,
// narrower band.
const (
	generatedConfidenceMin = 75
	generatedConfidenceMax = 95
	fallbackConfidenceMin  = 85
	fallbackConfidenceMax  = 95
)

// Suggestion is one proposed comment. Order within a batch is significant:
// the index is the "Option N" the client renders.
type Suggestion struct {
	Text       string `json:"text"`
	Confidence int    `json:"confidence"`
	Fallback   bool   `json:"-"`
}

// promptVariants are the three persona-conditioned angles a batch covers.
// The slot index pairs each variant with its persona fallback comment.
var promptVariants = []string{
	"Write a LinkedIn comment as a %s adding a concrete, valuable point to this post: %q\nComment:",
	"Write a LinkedIn comment as a %s sharing a short insight or personal experience related to this post: %q\nComment:",
	"Write a LinkedIn comment as a %s that is supportive and ends with a thoughtful question about this post: %q\nComment:",
}

// Adapter produces a fixed-size batch of suggestions from one TextClient.
type Adapter struct {
	client TextClient
	bank   *persona.Bank
	params Params
	logger *slog.Logger

	mu   sync.Mutex
	rand *rand.Rand
}

// NewAdapter wires a text client against the persona fallback bank.
func NewAdapter(client TextClient, bank *persona.Bank, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		client: client,
		bank:   bank,
		params: Params{
			MaxNewTokens: 120,
			Temperature:  0.8,
			DoSample:     true,
		},
		logger: logger,
		rand:   rand.New(rand.NewSource(rand.Int63())),
	}
}

// Generate returns exactly persona.SlotCount suggestions for the post. A
// failed or degenerate model call degrades that slot to its persona
// fallback; a single bad slot never fails the batch and the caller never
// sees an error from this stage.
func (a *Adapter) Generate(ctx context.Context, postContent, personaName string) []Suggestion {
	resolved := a.bank.Resolve(personaName)
	fallbacks := a.bank.Fallbacks(resolved)

	out := make([]Suggestion, 0, persona.SlotCount)
	for slot := 0; slot < persona.SlotCount; slot++ {
		prompt := fmt.Sprintf(promptVariants[slot], resolved, postContent)

		text, err := a.client.Generate(ctx, prompt, a.params)
		if err == nil {
			text = cleanOutput(text, prompt)
		}

		switch {
		case err != nil:
			a.logger.WarnContext(ctx, "generation degraded to fallback",
				slog.String("persona", resolved),
				slog.Int("slot", slot),
				slog.String("error", err.Error()),
			)
			observability.FallbackSubstitutions.WithLabelValues("error").Inc()
			out = append(out, a.fallbackSuggestion(fallbacks[slot]))
		case len(text) < minCommentLength:
			observability.FallbackSubstitutions.WithLabelValues("degenerate").Inc()
			out = append(out, a.fallbackSuggestion(fallbacks[slot]))
		default:
			out = append(out, Suggestion{
				Text:       text,
				Confidence: a.confidence(generatedConfidenceMin, generatedConfidenceMax),
			})
		}
	}
	return out
}

func (a *Adapter) fallbackSuggestion(text string) Suggestion {
	return Suggestion{
		Text:       text,
		Confidence: a.confidence(fallbackConfidenceMin, fallbackConfidenceMax),
		Fallback:   true,
	}
}

func (a *Adapter) confidence(min, max int) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return min + a.rand.Intn(max-min+1)
}

// cleanOutput strips the echoed prompt and surrounding noise from raw model
// output.
func cleanOutput(text, prompt string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, prompt) {
		text = strings.TrimSpace(strings.TrimPrefix(text, prompt))
	}
	// Some models echo the trailing cue on its own.
	text = strings.TrimSpace(strings.TrimPrefix(text, "Comment:"))
	text = strings.Trim(text, "\"")
	return strings.TrimSpace(text)
}
