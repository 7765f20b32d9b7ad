package milvus

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"

	"github.com/nbc-assist/backend/pkg/logger"
)

// Client wraps the Milvus SDK for a store partitioned into named
// collections, one per knowledge source (a standards volume).
type Client struct {
	client    client.Client
	vectorDim int
}

// Passage is one embedded chunk of a standards document together with its
// clause and page metadata.
type Passage struct {
	ID        string
	Embedding []float32
	Text      string
	Clause    string
	Page      string
}

// SearchResult is a retrieved passage with its similarity score.
type SearchResult struct {
	Text   string
	Clause string
	Page   string
	Score  float32
}

func NewClient(endpoint, apiKey string, vectorDim int) (*Client, error) {
	cfg := client.Config{Address: endpoint}
	if apiKey != "" {
		cfg.APIKey = apiKey
	}

	c, err := client.NewClient(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client: %w", err)
	}

	logger.Info("Milvus client initialized", zap.String("endpoint", endpoint))

	return &Client{client: c, vectorDim: vectorDim}, nil
}

func (m *Client) Close() error {
	return m.client.Close()
}

// HasCollection reports whether the named collection exists.
func (m *Client) HasCollection(ctx context.Context, name string) (bool, error) {
	has, err := m.client.HasCollection(ctx, name)
	if err != nil {
		return false, fmt.Errorf("failed to check collection: %w", err)
	}
	return has, nil
}

// ListCollections returns the names of all collections in the store.
func (m *Client) ListCollections(ctx context.Context) ([]string, error) {
	collections, err := m.client.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}

	names := make([]string, 0, len(collections))
	for _, coll := range collections {
		names = append(names, coll.Name)
	}
	return names, nil
}

// EnsureCollection creates, indexes and loads the named collection if it
// does not exist yet.
func (m *Client) EnsureCollection(ctx context.Context, name string) error {
	has, err := m.client.HasCollection(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if has {
		return nil
	}

	schema := &entity.Schema{
		CollectionName: name,
		Description:    "Building standards passage embeddings",
		Fields: []*entity.Field{
			{
				Name:       "chunk_id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "embedding",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", m.vectorDim),
				},
			},
			{
				Name:     "text",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "4096",
				},
			},
			{
				Name:     "clause",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "128",
				},
			},
			{
				Name:     "page",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "32",
				},
			},
		},
	}

	err = m.client.CreateCollection(ctx, schema, entity.DefaultShardNumber)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	idx, err := entity.NewIndexIvfFlat(entity.L2, 1024)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	err = m.client.CreateIndex(ctx, name, "embedding", idx, false)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	err = m.client.LoadCollection(ctx, name, false)
	if err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	logger.Info("Collection created and loaded", zap.String("collection", name))

	return nil
}

// Insert writes passages into the named collection and flushes.
func (m *Client) Insert(ctx context.Context, collection string, passages []Passage) error {
	if len(passages) == 0 {
		return nil
	}

	chunkIDs := make([]string, len(passages))
	embeddings := make([][]float32, len(passages))
	texts := make([]string, len(passages))
	clauses := make([]string, len(passages))
	pages := make([]string, len(passages))

	for i, p := range passages {
		chunkIDs[i] = p.ID
		embeddings[i] = p.Embedding
		texts[i] = p.Text
		clauses[i] = p.Clause
		pages[i] = p.Page
	}

	_, err := m.client.Insert(
		ctx,
		collection,
		"",
		entity.NewColumnVarChar("chunk_id", chunkIDs),
		entity.NewColumnFloatVector("embedding", m.vectorDim, embeddings),
		entity.NewColumnVarChar("text", texts),
		entity.NewColumnVarChar("clause", clauses),
		entity.NewColumnVarChar("page", pages),
	)
	if err != nil {
		return fmt.Errorf("failed to insert passages: %w", err)
	}

	err = m.client.Flush(ctx, collection, false)
	if err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}

	logger.Info("Passages inserted into vector DB",
		zap.String("collection", collection),
		zap.Int("count", len(passages)),
	)

	return nil
}

// Search returns the topK passages of the named collection ranked by
// embedding similarity.
func (m *Client) Search(ctx context.Context, collection string, queryEmbedding []float32, topK int) ([]SearchResult, error) {
	sp, _ := entity.NewIndexIvfFlatSearchParam(16)

	searchResult, err := m.client.Search(
		ctx,
		collection,
		[]string{},
		"",
		[]string{"text", "clause", "page"},
		[]entity.Vector{entity.FloatVector(queryEmbedding)},
		"embedding",
		entity.L2,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]SearchResult, 0)
	for _, sr := range searchResult {
		textCol := sr.Fields.GetColumn("text")
		clauseCol := sr.Fields.GetColumn("clause")
		pageCol := sr.Fields.GetColumn("page")

		for i := 0; i < sr.ResultCount; i++ {
			text, _ := textCol.Get(i)
			clause, _ := clauseCol.Get(i)
			page, _ := pageCol.Get(i)

			results = append(results, SearchResult{
				Text:   text.(string),
				Clause: clause.(string),
				Page:   page.(string),
				Score:  sr.Scores[i],
			})
		}
	}

	logger.Debug("Vector search completed",
		zap.String("collection", collection),
		zap.Int("topK", topK),
		zap.Int("results", len(results)),
	)

	return results, nil
}
