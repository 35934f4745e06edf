package appointment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"smiledesk/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// The store requires a dense vector on every document. Appointments are
// looked up by metadata filter, not similarity, so they carry a fixed
// placeholder vector with a single non-zero dimension.
const dummyVectorDim = 64

func dummyVector() []float32 {
	v := make([]float32, dummyVectorDim)
	v[0] = 1.0
	return v
}

// ESAppointmentRepo is the Elasticsearch-backed Repository.
type ESAppointmentRepo struct {
	client *elasticsearch.Client
	index  string
}

// NewESAppointmentRepo returns a repository writing to the given index.
func NewESAppointmentRepo(client *elasticsearch.Client, index string) *ESAppointmentRepo {
	return &ESAppointmentRepo{client: client, index: index}
}

type appointmentDoc struct {
	Vector      []float32          `json:"vector"`
	Type        string             `json:"type"`
	UserID      string             `json:"user_id"`
	StartTime   time.Time          `json:"start_time"`
	Appointment models.Appointment `json:"appointment"`
}

// Save upserts the appointment document keyed by its record id.
func (r *ESAppointmentRepo) Save(ctx context.Context, appt *models.Appointment) error {
	if appt.ID == "" {
		return fmt.Errorf("appointment id must be set before saving")
	}

	doc := appointmentDoc{
		Vector:      dummyVector(),
		Type:        "appointment",
		UserID:      appt.UserID,
		StartTime:   appt.StartTime,
		Appointment: *appt,
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal appointment doc: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      r.index,
		DocumentID: "appt-" + appt.ID,
		Body:       bytes.NewReader(body),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("index appointment: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index appointment: %s", res.String())
	}
	return nil
}

// ListByUser returns the user's persisted appointments ordered by start time.
func (r *ESAppointmentRepo) ListByUser(ctx context.Context, userID string, limit int) ([]models.Appointment, error) {
	if limit <= 0 {
		limit = 50
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []map[string]interface{}{
					{"term": map[string]interface{}{"type": "appointment"}},
					{"term": map[string]interface{}{"user_id": userID}},
				},
			},
		},
		"sort": []map[string]interface{}{
			{"start_time": map[string]interface{}{"order": "asc"}},
		},
		"size": limit,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, fmt.Errorf("encode appointment query: %w", err)
	}

	res, err := r.client.Search(
		r.client.Search.WithContext(ctx),
		r.client.Search.WithIndex(r.index),
		r.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search appointments: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search appointments: %s", res.String())
	}

	var sr struct {
		Hits struct {
			Hits []struct {
				Source appointmentDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode appointment response: %w", err)
	}

	appointments := make([]models.Appointment, 0, len(sr.Hits.Hits))
	for _, hit := range sr.Hits.Hits {
		appointments = append(appointments, hit.Source.Appointment)
	}
	return appointments, nil
}
