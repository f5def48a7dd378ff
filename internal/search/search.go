package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/models"
)

// IndexDoctor writes or overwrites the doctor document. Indexing failures are
// surfaced so callers can decide to log instead of failing the request.
func IndexDoctor(ctx context.Context, es *elasticsearch.Client, index string, doctor models.Doctor) error {
	data, err := json.Marshal(doctor)
	if err != nil {
		return fmt.Errorf("index doctor: %w", err)
	}
	res, err := es.Index(
		index,
		bytes.NewReader(data),
		es.Index.WithDocumentID(doctor.ID),
		es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index doctor: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index doctor: %s", res.Status())
	}
	return nil
}

func RemoveDoctor(ctx context.Context, es *elasticsearch.Client, index, id string) error {
	res, err := es.Delete(index, id, es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("remove doctor: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("remove doctor: %s", res.Status())
	}
	return nil
}

func SearchDoctors(ctx context.Context, es *elasticsearch.Client, index, query string, from, size int) (int64, []models.Doctor, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":     query,
						"fields":    []string{"name^2", "registrationNumber"},
						"fuzziness": "AUTO",
					},
				},
				"must_not": map[string]interface{}{
					"term": map[string]interface{}{"isDeleted": true},
				},
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search doctors: %w", err)
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search doctors: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search doctors: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Doctor `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	doctors := make([]models.Doctor, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		doctors[i] = hit.Source
	}
	return r.Hits.Total.Value, doctors, nil
}
