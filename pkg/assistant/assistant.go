package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/foliokit/sage/pkg/knowledge"
	"github.com/foliokit/sage/pkg/llm"
	"github.com/foliokit/sage/pkg/prompt"
)

// ErrEmptyMessage reports a missing user message. It is a client input
// error: no collaborator is called before this check.
var ErrEmptyMessage = errors.New("message is required")

// Pipeline stage names used in StageError.
const (
	StageEmbedding  = "embedding"
	StageRetrieval  = "retrieval"
	StageCompletion = "completion"
)

// StageError wraps a collaborator failure with the pipeline stage it
// occurred in. The core performs no retries; that belongs to the services.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// ContextRef identifies a knowledge record used to answer a request,
// without leaking its text or score.
type ContextRef struct {
	ID    string `json:"id"`
	Topic string `json:"topic"`
}

// Response is the result of one answered request.
type Response struct {
	Reply           string       `json:"reply"`
	RelevantContext []ContextRef `json:"relevantContext"`
}

// Assistant runs the request pipeline: embed the message, rank the corpus,
// assemble the message sequence, and call the chat model. It holds no
// per-request state, so one Assistant serves concurrent requests.
type Assistant struct {
	embedder       knowledge.Embedder
	retriever      knowledge.Retriever
	llm            llm.Provider
	systemTemplate string
	fewShot        []llm.Message
	topK           int
	historyWindow  int
	generation     llm.GenerationParams
	debug          bool
}

// Option is a function that configures an Assistant.
type Option func(*Assistant)

// New creates a new Assistant.
func New(embedder knowledge.Embedder, retriever knowledge.Retriever, provider llm.Provider, opts ...Option) *Assistant {
	a := &Assistant{
		embedder:       embedder,
		retriever:      retriever,
		llm:            provider,
		systemTemplate: prompt.SystemTemplate("the portfolio owner"),
		fewShot:        prompt.DefaultFewShot(),
		topK:           3,
		historyWindow:  prompt.DefaultHistoryWindow,
		generation: llm.GenerationParams{
			Temperature:      0.8,
			MaxTokens:        400,
			PresencePenalty:  0.6,
			FrequencyPenalty: 0.3,
		},
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// WithOwner sets the portfolio owner named in the system instructions.
func WithOwner(owner string) Option {
	return func(a *Assistant) {
		a.systemTemplate = prompt.SystemTemplate(owner)
	}
}

// WithSystemTemplate overrides the system instructions. The template
// should contain prompt.ContextPlaceholder.
func WithSystemTemplate(template string) Option {
	return func(a *Assistant) {
		a.systemTemplate = template
	}
}

// WithFewShot overrides the fixed few-shot exchange.
func WithFewShot(fewShot []llm.Message) Option {
	return func(a *Assistant) {
		a.fewShot = fewShot
	}
}

// WithTopK sets how many knowledge records are retrieved per request.
func WithTopK(k int) Option {
	return func(a *Assistant) {
		a.topK = k
	}
}

// WithHistoryWindow sets how many prior turns are kept per request.
func WithHistoryWindow(n int) Option {
	return func(a *Assistant) {
		a.historyWindow = n
	}
}

// WithGeneration sets the chat completion parameters.
func WithGeneration(params llm.GenerationParams) Option {
	return func(a *Assistant) {
		a.generation = params
	}
}

// WithDebug enables debug logging.
func WithDebug(enable bool) Option {
	return func(a *Assistant) {
		a.debug = enable
	}
}

// Answer runs the full pipeline for one request. The caller supplies all
// prior turns; nothing is stored between requests.
func (a *Assistant) Answer(ctx context.Context, message string, history []llm.Message) (*Response, error) {
	messages, refs, err := a.prepare(ctx, message, history)
	if err != nil {
		return nil, err
	}

	reply, err := a.llm.Chat(ctx, messages, a.generation)
	if err != nil {
		if a.debug {
			slog.Error("chat completion failed", "error", err)
		}
		return nil, &StageError{Stage: StageCompletion, Err: err}
	}

	if a.debug {
		slog.Info("answer complete", "reply_length", len(reply))
	}

	return &Response{Reply: reply, RelevantContext: refs}, nil
}

// AnswerStream runs the pipeline and streams the reply chunks. The
// relevant context refs are known before the first chunk arrives.
func (a *Assistant) AnswerStream(ctx context.Context, message string, history []llm.Message) (<-chan string, []ContextRef, error) {
	messages, refs, err := a.prepare(ctx, message, history)
	if err != nil {
		return nil, nil, err
	}

	stream, err := a.llm.Stream(ctx, messages, a.generation)
	if err != nil {
		if a.debug {
			slog.Error("chat completion stream failed", "error", err)
		}
		return nil, nil, &StageError{Stage: StageCompletion, Err: err}
	}

	return stream, refs, nil
}

// prepare embeds the message, retrieves context, and assembles the
// message sequence. Shared by Answer and AnswerStream.
func (a *Assistant) prepare(ctx context.Context, message string, history []llm.Message) ([]llm.Message, []ContextRef, error) {
	if message == "" {
		return nil, nil, ErrEmptyMessage
	}

	if a.debug {
		slog.Info("answering message", "length", len(message), "history_turns", len(history))
	}

	vectors, err := a.embedder.Embed(ctx, []string{message})
	if err != nil {
		if a.debug {
			slog.Error("query embedding failed", "error", err)
		}
		return nil, nil, &StageError{Stage: StageEmbedding, Err: err}
	}
	if len(vectors) == 0 {
		return nil, nil, &StageError{Stage: StageEmbedding, Err: fmt.Errorf("embedding service returned no vectors")}
	}

	scored, err := a.retriever.Retrieve(ctx, vectors[0], a.topK)
	if err != nil {
		if a.debug {
			slog.Error("retrieval failed", "error", err)
		}
		return nil, nil, &StageError{Stage: StageRetrieval, Err: err}
	}

	refs := make([]ContextRef, len(scored))
	for i, rec := range scored {
		refs[i] = ContextRef{ID: rec.ID, Topic: rec.Topic}
	}

	if a.debug {
		ids := make([]string, len(scored))
		for i, rec := range scored {
			ids[i] = rec.ID
		}
		slog.Info("retrieved context", "ids", ids)
	}

	messages, err := prompt.BuildMessages(a.systemTemplate, prompt.FormatContext(scored), a.fewShot, history, message, a.historyWindow)
	if err != nil {
		return nil, nil, err
	}

	return messages, refs, nil
}
