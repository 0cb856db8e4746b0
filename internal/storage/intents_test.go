package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/engenium/intentd/internal/common"
	"github.com/engenium/intentd/internal/model"
)

// createTestStore creates a migrated SQLite store in a temp directory.
func createTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "intents.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := store.Close(); closeErr != nil {
			t.Errorf("Failed to close store: %v", closeErr)
		}
	})

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store
}

func seedIntents(t *testing.T, store *SQLiteStore, records ...model.IntentRecord) {
	t.Helper()
	if err := store.SaveIntents(context.Background(), records); err != nil {
		t.Fatalf("Failed to seed intents: %v", err)
	}
}

func TestSQLiteStore_SaveAndQueryIntents(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	score := 0.42
	seedIntents(t, store,
		model.IntentRecord{
			Domain:         "amazon.com",
			URL:            "https://amazon.com/dp/B000",
			PageTitle:      "Product page",
			ActionText:     "Add to Cart",
			RelevanceScore: &score,
		},
		model.IntentRecord{
			Domain:     "youtube.com",
			URL:        "https://youtube.com/watch?v=abc",
			PageTitle:  "Video",
			ActionText: "Subscribe",
		},
	)

	unlabeled, err := store.GetUnlabeledIntents(ctx)
	if err != nil {
		t.Fatalf("Failed to get unlabeled intents: %v", err)
	}
	if len(unlabeled) != 2 {
		t.Fatalf("Expected 2 unlabeled records, got %d", len(unlabeled))
	}

	first := unlabeled[0]
	if first.Domain != "amazon.com" || first.ActionText != "Add to Cart" {
		t.Errorf("Unexpected first record: %+v", first)
	}
	if first.RelevanceScore == nil || *first.RelevanceScore != 0.42 {
		t.Errorf("Relevance score not round-tripped: %+v", first.RelevanceScore)
	}
	if first.LabelSource != model.LabelSourceUnset {
		t.Errorf("Expected unset label source, got %q", first.LabelSource)
	}
	if first.Labeled() {
		t.Error("Freshly inserted record reports as labeled")
	}
}

func TestSQLiteStore_GetIntentsFilter(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	seedIntents(t, store,
		model.IntentRecord{Domain: "amazon.com", ActionText: "Add to Cart"},
		model.IntentRecord{Domain: "amazon.com", ActionText: "Buy Now"},
		model.IntentRecord{Domain: "ebay.com", ActionText: "Add to Cart"},
	)

	byDomain, err := store.GetIntents(ctx, IntentFilter{Domain: "amazon.com"})
	if err != nil {
		t.Fatalf("Failed to filter by domain: %v", err)
	}
	if len(byDomain) != 2 {
		t.Errorf("Expected 2 amazon.com records, got %d", len(byDomain))
	}

	byAction, err := store.GetIntents(ctx, IntentFilter{ActionText: "Add to Cart"})
	if err != nil {
		t.Fatalf("Failed to filter by action: %v", err)
	}
	if len(byAction) != 2 {
		t.Errorf("Expected 2 'Add to Cart' records, got %d", len(byAction))
	}

	labeled := true
	labeledOnly, err := store.GetIntents(ctx, IntentFilter{Labeled: &labeled})
	if err != nil {
		t.Fatalf("Failed to filter by label state: %v", err)
	}
	if len(labeledOnly) != 0 {
		t.Errorf("Expected no labeled records yet, got %d", len(labeledOnly))
	}
}

func TestSQLiteStore_UpdateIntentLabel(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	seedIntents(t, store, model.IntentRecord{Domain: "amazon.com", ActionText: "Add to Cart"})

	unlabeled, err := store.GetUnlabeledIntents(ctx)
	if err != nil {
		t.Fatalf("Failed to get unlabeled intents: %v", err)
	}
	id := unlabeled[0].ID

	if err := store.UpdateIntentLabel(ctx, id, "add to cart", model.LabelSourceMistralAPI); err != nil {
		t.Fatalf("Failed to update label: %v", err)
	}

	record, err := store.GetIntentByID(ctx, id)
	if err != nil {
		t.Fatalf("Failed to get record: %v", err)
	}
	if record.InferredIntent != "add to cart" {
		t.Errorf("Expected intent 'add to cart', got %q", record.InferredIntent)
	}
	if record.LabelSource != model.LabelSourceMistralAPI {
		t.Errorf("Expected label source mistral_api, got %q", record.LabelSource)
	}

	// Labeled record must drop out of the unlabeled set.
	unlabeled, err = store.GetUnlabeledIntents(ctx)
	if err != nil {
		t.Fatalf("Failed to get unlabeled intents: %v", err)
	}
	if len(unlabeled) != 0 {
		t.Errorf("Expected no unlabeled records, got %d", len(unlabeled))
	}
}

func TestSQLiteStore_UpdateIntentLabel_NeverOverwrites(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	seedIntents(t, store, model.IntentRecord{Domain: "amazon.com", ActionText: "Add to Cart"})

	unlabeled, err := store.GetUnlabeledIntents(ctx)
	if err != nil {
		t.Fatalf("Failed to get unlabeled intents: %v", err)
	}
	id := unlabeled[0].ID

	if err := store.UpdateIntentLabel(ctx, id, "add to cart", model.LabelSourceMistralAPI); err != nil {
		t.Fatalf("First label write failed: %v", err)
	}

	// The label_source transition is monotonic: a second write is rejected
	// and the stored value does not change.
	err = store.UpdateIntentLabel(ctx, id, "something else", model.LabelSourcePseudo)
	if err == nil {
		t.Fatal("Expected error when relabeling an already-labeled record")
	}
	if !errors.Is(err, common.ErrAlreadyLabeled) {
		t.Errorf("Expected ErrAlreadyLabeled, got %v", err)
	}

	record, err := store.GetIntentByID(ctx, id)
	if err != nil {
		t.Fatalf("Failed to get record: %v", err)
	}
	if record.InferredIntent != "add to cart" || record.LabelSource != model.LabelSourceMistralAPI {
		t.Errorf("Label changed after rejected overwrite: %+v", record)
	}
}

func TestSQLiteStore_UpdateIntentLabel_MissingRecord(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	err := store.UpdateIntentLabel(ctx, 999, "navigate", model.LabelSourceMistralAPI)
	if err == nil {
		t.Fatal("Expected error for missing record")
	}
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStore_SaveIntents_RejectsInconsistentLabel(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	err := store.SaveIntents(ctx, []model.IntentRecord{
		{Domain: "amazon.com", ActionText: "Add to Cart", InferredIntent: "add to cart"},
	})
	if err == nil {
		t.Fatal("Expected error for intent without label source")
	}
}

func TestSQLiteStore_CountUnlabeled(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	seedIntents(t, store,
		model.IntentRecord{Domain: "amazon.com", ActionText: "Add to Cart"},
		model.IntentRecord{Domain: "ebay.com", ActionText: "Bid"},
	)

	count, err := store.CountUnlabeled(ctx)
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 unlabeled, got %d", count)
	}
}
