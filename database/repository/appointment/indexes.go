package appointment

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
)

const appointmentMapping = `{
	"mappings": {
		"properties": {
			"vector": {
				"type": "dense_vector",
				"dims": 64,
				"index": false
			},
			"type": { "type": "keyword" },
			"user_id": { "type": "keyword" },
			"start_time": { "type": "date" },
			"appointment": {
				"properties": {
					"id": { "type": "keyword" },
					"booking_id": { "type": "keyword" },
					"google_event_id": { "type": "keyword" },
					"status": { "type": "keyword" },
					"patient_name": { "type": "text" },
					"service": { "type": "keyword" },
					"contact_email": { "type": "keyword" },
					"contact_phone": { "type": "keyword" }
				}
			}
		}
	}
}`

// EnsureIndex creates the appointment index with its mapping if missing.
func EnsureIndex(client *elasticsearch.Client, index string) error {
	res, err := client.Indices.Exists([]string{index})
	if err != nil {
		return fmt.Errorf("check appointment index: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("check appointment index: unexpected status %d", res.StatusCode)
	}

	createRes, err := client.Indices.Create(
		index,
		client.Indices.Create.WithBody(strings.NewReader(appointmentMapping)),
	)
	if err != nil {
		return fmt.Errorf("create appointment index: %w", err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("create appointment index: %s", createRes.String())
	}
	return nil
}
