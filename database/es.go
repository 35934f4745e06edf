package database

import (
	"log"

	"smiledesk/config"

	"github.com/elastic/go-elasticsearch/v8"
)

// ESClient is the global Elasticsearch client instance. It backs both the
// appointment store and the clinic knowledge index.
var ESClient *elasticsearch.Client

// InitES initializes the Elasticsearch connection.
func InitES() {
	cfg := elasticsearch.Config{
		Addresses: []string{config.AppConfig.ESAddr},
		Username:  config.AppConfig.ESUsername,
		Password:  config.AppConfig.ESPassword,
	}
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		log.Fatalf("failed to create Elasticsearch client: %v", err)
	}
	if res, err := client.Ping(); err != nil {
		log.Fatalf("failed to ping Elasticsearch: %v", err)
	} else {
		res.Body.Close()
	}
	ESClient = client
	log.Println("Connected to Elasticsearch successfully!")
}
