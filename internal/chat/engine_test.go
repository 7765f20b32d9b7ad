package chat

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbc-assist/backend/internal/vector/milvus"
	"github.com/nbc-assist/backend/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init("error", "console", "stdout"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeEmbedder struct {
	calls int
	err   error
}

func (f *fakeEmbedder) GenerateEmbedding(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeSearcher struct {
	collections map[string][]milvus.SearchResult
	searchErrs  map[string]error
	hasErr      error
	searches    []string
}

func (f *fakeSearcher) HasCollection(_ context.Context, name string) (bool, error) {
	if f.hasErr != nil {
		return false, f.hasErr
	}
	_, ok := f.collections[name]
	return ok, nil
}

func (f *fakeSearcher) Search(_ context.Context, collection string, _ []float32, topK int) ([]milvus.SearchResult, error) {
	f.searches = append(f.searches, collection)
	if err, ok := f.searchErrs[collection]; ok {
		return nil, err
	}
	results := f.collections[collection]
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

type fakeCompleter struct {
	prompt string
	answer string
	err    error
	calls  int
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func TestProcessChatSkipsMissingCollection(t *testing.T) {
	searcher := &fakeSearcher{
		collections: map[string][]milvus.SearchResult{
			"nbc_vol1": {{Text: "Automatic fire hydrant system required", Clause: "5.1", Page: "310"}},
		},
	}
	completer := &fakeCompleter{answer: "Clause: 5.1\nAnswer: required"}
	engine := NewEngine(&fakeEmbedder{}, searcher, completer, nil)

	resp, err := engine.ProcessChat(context.Background(), Request{
		CollectionIDs: []string{"nbc_vol1", "does_not_exist"},
		Query:         "fire hydrant",
		TopK:          5,
	})

	require.NoError(t, err)
	assert.Equal(t, "Clause: 5.1\nAnswer: required", resp.Answer)
	assert.Equal(t, 1, resp.Passages)
	assert.Equal(t, []string{"nbc_vol1"}, searcher.searches)
}

func TestProcessChatShortCircuitsWithoutContext(t *testing.T) {
	searcher := &fakeSearcher{collections: map[string][]milvus.SearchResult{}}
	completer := &fakeCompleter{answer: "should never be used"}
	engine := NewEngine(&fakeEmbedder{}, searcher, completer, nil)

	resp, err := engine.ProcessChat(context.Background(), Request{
		CollectionIDs: []string{"missing_a", "missing_b"},
		Query:         "anything",
	})

	require.NoError(t, err)
	assert.Equal(t, NoContextAnswer, resp.Answer)
	assert.Zero(t, completer.calls)
}

func TestProcessChatSkipsFailedQuery(t *testing.T) {
	searcher := &fakeSearcher{
		collections: map[string][]milvus.SearchResult{
			"broken": {{Text: "unreachable"}},
			"good":   {{Text: "fire safety provisions", Clause: "7.2", Page: "120"}},
		},
		searchErrs: map[string]error{"broken": errors.New("query failed")},
	}
	completer := &fakeCompleter{answer: "ok"}
	engine := NewEngine(&fakeEmbedder{}, searcher, completer, nil)

	resp, err := engine.ProcessChat(context.Background(), Request{
		CollectionIDs: []string{"broken", "good"},
		Query:         "fire safety",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, resp.Passages)
	assert.Contains(t, completer.prompt, "fire safety provisions")
}

func TestProcessChatEmbedsOncePerRequest(t *testing.T) {
	embedder := &fakeEmbedder{}
	searcher := &fakeSearcher{
		collections: map[string][]milvus.SearchResult{
			"a": {{Text: "fire exits", Clause: "1"}},
			"b": {{Text: "fire doors", Clause: "2"}},
		},
	}
	engine := NewEngine(embedder, searcher, &fakeCompleter{answer: "ok"}, nil)

	_, err := engine.ProcessChat(context.Background(), Request{
		CollectionIDs: []string{"a", "b"},
		Query:         "fire",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, embedder.calls)
}

func TestProcessChatFallbackKeepsAllCandidates(t *testing.T) {
	searcher := &fakeSearcher{
		collections: map[string][]milvus.SearchResult{
			"vol": {
				{Text: "first candidate", Clause: "1"},
				{Text: "second candidate", Clause: "2"},
			},
		},
	}
	completer := &fakeCompleter{answer: "ok"}
	engine := NewEngine(&fakeEmbedder{}, searcher, completer, nil)

	resp, err := engine.ProcessChat(context.Background(), Request{
		CollectionIDs: []string{"vol"},
		Query:         "zzzz",
	})

	require.NoError(t, err)
	assert.Equal(t, 2, resp.Passages)
}

func TestProcessChatCompletionFailure(t *testing.T) {
	searcher := &fakeSearcher{
		collections: map[string][]milvus.SearchResult{
			"vol": {{Text: "fire hydrant rules", Clause: "5"}},
		},
	}
	completer := &fakeCompleter{err: errors.New("completion failed: 503")}
	engine := NewEngine(&fakeEmbedder{}, searcher, completer, nil)

	_, err := engine.ProcessChat(context.Background(), Request{
		CollectionIDs: []string{"vol"},
		Query:         "fire hydrant",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "completion failed")
}
