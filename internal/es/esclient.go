package es

import (
	"fmt"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/config"
)

// NewClient connects to Elasticsearch. Returns nil when no URL is configured
// so the doctor search endpoint can degrade instead of blocking startup.
func NewClient(cfg *config.Config) (*elasticsearch.Client, error) {
	if cfg.ES_URL == "" {
		return nil, nil
	}

	esCfg := elasticsearch.Config{
		Addresses: []string{cfg.ES_URL},
		Username:  cfg.ES_USER,
		Password:  cfg.ES_PASSWORD,
	}
	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch error: %s", res.Status())
	}
	return client, nil
}
