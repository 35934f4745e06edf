package knowledge

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
)

// text-embedding-004 produces 768-dimensional vectors.
const knowledgeMapping = `{
	"mappings": {
		"properties": {
			"vector": {
				"type": "dense_vector",
				"dims": 768,
				"index": true,
				"similarity": "cosine"
			},
			"chunk_id": { "type": "keyword" },
			"text_content": { "type": "text" }
		}
	}
}`

// EnsureIndex creates the knowledge index with its mapping if missing.
func EnsureIndex(client *elasticsearch.Client, index string) error {
	res, err := client.Indices.Exists([]string{index})
	if err != nil {
		return fmt.Errorf("check knowledge index: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("check knowledge index: unexpected status %d", res.StatusCode)
	}

	createRes, err := client.Indices.Create(
		index,
		client.Indices.Create.WithBody(strings.NewReader(knowledgeMapping)),
	)
	if err != nil {
		return fmt.Errorf("create knowledge index: %w", err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("create knowledge index: %s", createRes.String())
	}
	return nil
}
