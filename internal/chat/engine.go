package chat

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nbc-assist/backend/internal/cache/redis"
	"github.com/nbc-assist/backend/internal/metrics"
	"github.com/nbc-assist/backend/internal/vector/milvus"
	"github.com/nbc-assist/backend/pkg/logger"
	"github.com/nbc-assist/backend/pkg/utils"
)

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// Searcher is the vector store surface the router needs: collection lookup
// plus similarity search.
type Searcher interface {
	HasCollection(ctx context.Context, name string) (bool, error)
	Search(ctx context.Context, collection string, queryEmbedding []float32, topK int) ([]milvus.SearchResult, error)
}

// Completer sends one assembled prompt and returns the answer text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Engine runs the chat pipeline: route the query across the requested
// collections, filter for relevance, assemble the prompt, call the
// completion API.
type Engine struct {
	embedder  Embedder
	searcher  Searcher
	completer Completer
	cache     *redis.Client
}

type Request struct {
	CollectionIDs []string
	Query         string
	TopK          int
}

type Response struct {
	ID        string
	Answer    string
	Passages  int
	LatencyMS int
}

const defaultTopK = 10

func NewEngine(embedder Embedder, searcher Searcher, completer Completer, cache *redis.Client) *Engine {
	return &Engine{
		embedder:  embedder,
		searcher:  searcher,
		completer: completer,
		cache:     cache,
	}
}

// ProcessChat answers one question. Collections that are missing or whose
// similarity query fails are skipped, not errors. When every collection
// yields nothing the pipeline short-circuits with the fixed no-context
// answer and never reaches the completion API.
func (e *Engine) ProcessChat(ctx context.Context, req Request) (*Response, error) {
	startTime := time.Now()
	chatID := uuid.New().String()

	topK := req.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	logger.Info("Processing chat",
		zap.String("chat_id", chatID),
		zap.String("query", req.Query),
		zap.Strings("collections", req.CollectionIDs),
		zap.Int("top_k", topK),
	)

	embedding, err := e.queryEmbedding(ctx, req.Query)
	if err != nil {
		metrics.ChatTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	selected := e.route(ctx, req.Query, req.CollectionIDs, embedding, topK)

	if len(selected) == 0 {
		logger.Info("No relevant context in any collection", zap.String("chat_id", chatID))
		metrics.ChatTotal.WithLabelValues("no_context").Inc()
		return &Response{
			ID:        chatID,
			Answer:    NoContextAnswer,
			LatencyMS: int(time.Since(startTime).Milliseconds()),
		}, nil
	}

	answer, err := e.completer.Complete(ctx, buildPrompt(selected, req.Query))
	if err != nil {
		metrics.ChatTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	latency := int(time.Since(startTime).Milliseconds())
	metrics.ChatTotal.WithLabelValues("success").Inc()
	metrics.ChatDuration.Observe(time.Since(startTime).Seconds())
	metrics.PassagesSelected.Observe(float64(len(selected)))

	logger.Info("Chat processed",
		zap.String("chat_id", chatID),
		zap.Int("passages", len(selected)),
		zap.Int("latency_ms", latency),
	)

	return &Response{
		ID:        chatID,
		Answer:    answer,
		Passages:  len(selected),
		LatencyMS: latency,
	}, nil
}

// route accumulates matched passages (or the per-collection fallback set)
// across the requested collections, in iteration order.
func (e *Engine) route(ctx context.Context, query string, collectionIDs []string, embedding []float32, topK int) []Passage {
	var selected []Passage

	for _, collID := range collectionIDs {
		has, err := e.searcher.HasCollection(ctx, collID)
		if err != nil || !has {
			logger.Debug("Skipping collection",
				zap.String("collection", collID),
				zap.Bool("exists", has),
				zap.Error(err),
			)
			continue
		}

		results, err := e.searcher.Search(ctx, collID, embedding, topK)
		if err != nil {
			logger.Warn("Similarity query failed, skipping collection",
				zap.String("collection", collID),
				zap.Error(err),
			)
			continue
		}

		candidates := make([]Passage, 0, len(results))
		for _, r := range results {
			candidates = append(candidates, Passage{
				Text:   r.Text,
				Clause: r.Clause,
				Page:   r.Page,
			})
		}

		matched, fellBack := filterPassages(query, candidates)
		if fellBack {
			metrics.FilterFallbacks.Inc()
			logger.Debug("Relevance filter matched nothing, returning all candidates",
				zap.String("collection", collID),
				zap.Int("candidates", len(candidates)),
			)
		}

		selected = append(selected, matched...)
	}

	return selected
}

// queryEmbedding computes the query vector once per request, optionally
// serving it from the Redis cache keyed on the md5 of the query text.
func (e *Engine) queryEmbedding(ctx context.Context, query string) ([]float32, error) {
	if e.cache == nil {
		return e.embedder.GenerateEmbedding(ctx, query)
	}

	queryHash := utils.HashString(query)

	cached, found, err := e.cache.GetEmbedding(ctx, queryHash)
	if err != nil {
		logger.Warn("Embedding cache read failed", zap.Error(err))
	}
	if found {
		metrics.CacheHits.WithLabelValues("embedding").Inc()
		return cached, nil
	}
	metrics.CacheMisses.WithLabelValues("embedding").Inc()

	embedding, err := e.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}

	if err := e.cache.SetEmbedding(ctx, queryHash, embedding, 24*time.Hour); err != nil {
		logger.Warn("Embedding cache write failed", zap.Error(err))
	}

	return embedding, nil
}
