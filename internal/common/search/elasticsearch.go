// Package search finds candidate restaurants for a cuisine.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	apperrors "dining-concierge/internal/common/errors"
	"dining-concierge/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

// Index is the fulfillment worker's view of the search backend.
type Index interface {
	SearchByCuisine(ctx context.Context, cuisine string, maxResults int) ([]models.IndexEntry, error)
}

type Options struct {
	Index        string
	CuisineField string
	IDField      string
}

type ElasticsearchIndex struct {
	client *elasticsearch.Client
	opts   Options
}

func NewElasticsearchIndex(client *elasticsearch.Client, opts Options) *ElasticsearchIndex {
	if opts.CuisineField == "" {
		opts.CuisineField = "Cuisine"
	}
	if opts.IDField == "" {
		opts.IDField = "RestaurantID"
	}
	return &ElasticsearchIndex{client: client, opts: opts}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source map[string]interface{} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// SearchByCuisine returns up to maxResults documents whose cuisine equals
// cuisine ignoring case. The term clause covers keyword mappings, the match
// clause analysed text mappings.
func (e *ElasticsearchIndex) SearchByCuisine(ctx context.Context, cuisine string, maxResults int) ([]models.IndexEntry, error) {
	value := strings.ToLower(strings.TrimSpace(cuisine))
	query := map[string]interface{}{
		"size":    maxResults,
		"_source": []string{e.opts.IDField, e.opts.CuisineField},
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{
					map[string]interface{}{
						"term": map[string]interface{}{
							e.opts.CuisineField: map[string]interface{}{
								"value":            value,
								"case_insensitive": true,
							},
						},
					},
					map[string]interface{}{
						"match": map[string]interface{}{
							e.opts.CuisineField: map[string]interface{}{
								"query":    value,
								"operator": "and",
							},
						},
					},
				},
				"minimum_should_match": 1,
			},
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, apperrors.NewSearchUnavailableError("encode", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(e.opts.Index),
		e.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, apperrors.NewSearchUnavailableError("search", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, apperrors.NewSearchUnavailableError("search", fmt.Errorf("%s: %s", res.Status(), body))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewSearchUnavailableError("decode", err)
	}

	entries := make([]models.IndexEntry, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		id := stringField(hit.Source[e.opts.IDField])
		if id == "" {
			continue
		}
		entries = append(entries, models.IndexEntry{
			ID:      id,
			Cuisine: stringField(hit.Source[e.opts.CuisineField]),
		})
	}
	return entries, nil
}

func stringField(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return fmt.Sprintf("%.0f", t)
	default:
		return ""
	}
}
