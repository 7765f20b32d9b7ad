package ingestion

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	prose "github.com/jdkato/prose/v2"
	"go.uber.org/zap"

	"github.com/nbc-assist/backend/internal/metrics"
	"github.com/nbc-assist/backend/internal/vector/milvus"
	"github.com/nbc-assist/backend/pkg/logger"
)

// Embedder is the batch embedding surface the processor needs.
type Embedder interface {
	GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorStore is the write surface of the vector store.
type VectorStore interface {
	EnsureCollection(ctx context.Context, name string) error
	Insert(ctx context.Context, collection string, passages []milvus.Passage) error
}

// Processor turns standards document text into embedded passages in a named
// collection. Chunking is sentence-aligned so clause text never splits
// mid-sentence.
type Processor struct {
	embedder Embedder
	vectorDB VectorStore
}

// PassageInput is one pre-chunked passage with its metadata, or a longer
// document section to be chunked.
type PassageInput struct {
	Text   string `json:"text"`
	Clause string `json:"clause"`
	Page   string `json:"page"`
}

const maxChunkChars = 1000

func NewProcessor(embedder Embedder, vectorDB VectorStore) *Processor {
	return &Processor{
		embedder: embedder,
		vectorDB: vectorDB,
	}
}

// IngestPassages chunks, embeds and inserts the given passages into the
// collection, creating it on first use. Returns the number of chunks stored.
func (p *Processor) IngestPassages(ctx context.Context, collection string, inputs []PassageInput) (int, error) {
	if len(inputs) == 0 {
		return 0, nil
	}

	if err := p.vectorDB.EnsureCollection(ctx, collection); err != nil {
		return 0, fmt.Errorf("failed to prepare collection: %w", err)
	}

	var texts []string
	var metas []PassageInput
	for _, in := range inputs {
		for _, chunk := range chunkText(in.Text) {
			texts = append(texts, chunk)
			metas = append(metas, PassageInput{Clause: in.Clause, Page: in.Page})
		}
	}

	if len(texts) == 0 {
		return 0, nil
	}

	embeddings, err := p.embedder.GenerateBatchEmbeddings(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(embeddings) != len(texts) {
		return 0, fmt.Errorf("embedding count mismatch: got %d, expected %d", len(embeddings), len(texts))
	}

	passages := make([]milvus.Passage, 0, len(texts))
	for i, text := range texts {
		passages = append(passages, milvus.Passage{
			ID:        uuid.New().String(),
			Embedding: embeddings[i],
			Text:      text,
			Clause:    metas[i].Clause,
			Page:      metas[i].Page,
		})
	}

	if err := p.vectorDB.Insert(ctx, collection, passages); err != nil {
		return 0, fmt.Errorf("failed to insert into vector DB: %w", err)
	}

	metrics.PassagesIngested.Add(float64(len(passages)))

	logger.Info("Passages ingested",
		zap.String("collection", collection),
		zap.Int("inputs", len(inputs)),
		zap.Int("chunks", len(passages)),
	)

	return len(passages), nil
}

// chunkText splits text into chunks of at most maxChunkChars, packing whole
// sentences. Text that cannot be tokenized falls back to a single trimmed
// chunk.
func chunkText(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= maxChunkChars {
		return []string{text}
	}

	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		logger.Warn("Sentence segmentation failed, keeping text whole", zap.Error(err))
		return []string{text}
	}

	var chunks []string
	var current strings.Builder

	for _, sent := range doc.Sentences() {
		s := strings.TrimSpace(sent.Text)
		if s == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+len(s)+1 > maxChunkChars {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(s)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}
