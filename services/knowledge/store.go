// File: services/knowledge/store.go
package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// Embedder turns text into a dense vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Searcher retrieves knowledge chunks relevant to a query. The assistant uses
// it to ground answers to informational questions about the clinic.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]string, error)
}

// Ingester stores one knowledge chunk. The ingestion endpoint feeds it with
// clinic documents (opening hours, services, policies).
type Ingester interface {
	Ingest(ctx context.Context, chunkID, text string) error
}

// ESStore keeps embedded knowledge chunks in an Elasticsearch index and
// retrieves them with kNN search.
type ESStore struct {
	Client   *elasticsearch.Client
	Index    string
	Embedder Embedder
}

type chunkDoc struct {
	Vector  []float32 `json:"vector"`
	ChunkID string    `json:"chunk_id"`
	Text    string    `json:"text_content"`
}

// Ingest embeds and indexes one knowledge chunk.
func (s *ESStore) Ingest(ctx context.Context, chunkID, text string) error {
	vector, err := s.Embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed chunk %s: %w", chunkID, err)
	}

	body, err := json.Marshal(chunkDoc{Vector: vector, ChunkID: chunkID, Text: text})
	if err != nil {
		return fmt.Errorf("marshal chunk %s: %w", chunkID, err)
	}

	req := esapi.IndexRequest{
		Index:      s.Index,
		DocumentID: chunkID,
		Body:       bytes.NewReader(body),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, s.Client)
	if err != nil {
		return fmt.Errorf("index chunk %s: %w", chunkID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index chunk %s: %s", chunkID, res.String())
	}
	return nil
}

// Search embeds the query and returns the topK closest chunk texts.
func (s *ESStore) Search(ctx context.Context, query string, topK int) ([]string, error) {
	queryVector, err := s.Embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	esQuery := map[string]interface{}{
		"knn": map[string]interface{}{
			"field":          "vector",
			"query_vector":   queryVector,
			"k":              topK,
			"num_candidates": topK * 10,
		},
		"size": topK,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(esQuery); err != nil {
		return nil, fmt.Errorf("encode knowledge query: %w", err)
	}

	res, err := s.Client.Search(
		s.Client.Search.WithContext(ctx),
		s.Client.Search.WithIndex(s.Index),
		s.Client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search knowledge: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search knowledge: %s", res.String())
	}

	var sr struct {
		Hits struct {
			Hits []struct {
				Source chunkDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode knowledge response: %w", err)
	}

	chunks := make([]string, 0, len(sr.Hits.Hits))
	for _, hit := range sr.Hits.Hits {
		chunks = append(chunks, hit.Source.Text)
	}
	return chunks, nil
}
