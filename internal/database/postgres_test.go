package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/franckalain/foodrescue/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestPostgresDB runs against a real server and is skipped unless
// DATABASE_URL is set.
func TestPostgresDB(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	db, err := NewPostgresDB(ctx, dsn, zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	sub := &models.FoodSubmission{FoodType: "Fresh Fruits", Quantity: 3, Location: "Test Market"}
	require.NoError(t, db.SaveFoodSubmission(ctx, sub))

	got, err := db.GetFoodSubmission(ctx, sub.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.StatusAvailable, got.Status)

	require.NoError(t, db.UpdateSubmissionStatus(ctx, sub.ID, models.StatusCollected))
	assert.ErrorIs(t, db.UpdateSubmissionStatus(ctx, uuid.NewString(), models.StatusCollected), ErrNotFound)

	recent, err := db.GetRecentFoodSubmissions(ctx, 10)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(recent), 10)
	assert.NotEmpty(t, recent)

	// Same created_at: the later insert comes first.
	tie := time.Date(2999, 1, 1, 0, 0, 0, 0, time.UTC)
	first := &models.FoodSubmission{FoodType: "Bread & Bakery", Quantity: 1, Location: "Tie A", CreatedAt: tie}
	second := &models.FoodSubmission{FoodType: "Bread & Bakery", Quantity: 2, Location: "Tie B", CreatedAt: tie}
	require.NoError(t, db.SaveFoodSubmission(ctx, first))
	require.NoError(t, db.SaveFoodSubmission(ctx, second))
	recent, err = db.GetRecentFoodSubmissions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, second.ID, recent[0].ID)
	assert.Equal(t, first.ID, recent[1].ID)

	require.NoError(t, db.SaveNGO(ctx, &models.NGO{ID: "it-" + uuid.NewString(), Name: "Integration NGO", Address: "1 Test St"}))
	ngos, err := db.ListNGOs(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, ngos)
}
