package hybrid

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"
)

// IndexedItemClassName is the Weaviate class name used when an external
// Weaviate instance backs an Index's dense half instead of the
// in-process cosine fallback against EmbeddingCache-backed vectors.
const IndexedItemClassName = "IndexedItem"

// GetIndexedItemSchema returns the Weaviate schema for hybrid search
// items: a generic text-plus-metadata record vectorized on its
// searchable text.
func GetIndexedItemSchema() *models.Class {
	indexFilterable := new(bool)
	*indexFilterable = true

	indexSearchable := new(bool)
	*indexSearchable = true

	return &models.Class{
		Class:       IndexedItemClassName,
		Description: "Items indexed for hybrid BM25+dense search",
		Vectorizer:  "text2vec-transformers",
		ModuleConfig: map[string]interface{}{
			"text2vec-transformers": map[string]interface{}{
				"vectorizeClassName": false,
			},
		},
		Properties: []*models.Property{
			{
				Name:            "itemId",
				DataType:        []string{"text"},
				Description:     "Caller-assigned identifier for the indexed item",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
				ModuleConfig: map[string]interface{}{
					"text2vec-transformers": map[string]interface{}{"skip": true},
				},
			},
			{
				Name:            "text",
				DataType:        []string{"text"},
				Description:     "Searchable text the dense vector is computed from",
				IndexSearchable: indexSearchable,
				Tokenization:    "word",
			},
			{
				Name:        "source",
				DataType:    []string{"text"},
				Description: "Originating tool or module, e.g. astx.search, hybrid.Index",
				ModuleConfig: map[string]interface{}{
					"text2vec-transformers": map[string]interface{}{"skip": true},
				},
			},
		},
	}
}

// EnsureIndexedItemSchema creates the IndexedItem class if it doesn't
// exist. Idempotent.
func EnsureIndexedItemSchema(ctx context.Context, client *weaviate.Client) error {
	schema := GetIndexedItemSchema()

	_, err := client.Schema().ClassGetter().WithClassName(IndexedItemClassName).Do(ctx)
	if err == nil {
		slog.Info("IndexedItem schema already exists")
		return nil
	}

	slog.Info("creating IndexedItem schema")
	if err := client.Schema().ClassCreator().WithClass(schema).Do(ctx); err != nil {
		return fmt.Errorf("creating IndexedItem schema: %w", err)
	}
	slog.Info("IndexedItem schema created")
	return nil
}
