package client

import (
	"fmt"
	"testing"

	"github.com/franckalain/foodrescue/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submissions(n int) []*models.FoodSubmission {
	subs := make([]*models.FoodSubmission, n)
	for i := range subs {
		subs[i] = &models.FoodSubmission{ID: fmt.Sprintf("s%d", i)}
	}
	return subs
}

func TestFeedResetIsBounded(t *testing.T) {
	var f Feed
	f.Reset(submissions(15))
	require.Equal(t, FeedSize, f.Len())
	assert.Equal(t, "s0", f.Items()[0].ID)
	assert.Equal(t, "s9", f.Items()[FeedSize-1].ID)
}

func TestFeedPrependDropsOldest(t *testing.T) {
	var f Feed
	f.Reset(submissions(FeedSize))

	f.Prepend(models.FoodSubmission{ID: "new"})

	items := f.Items()
	require.Len(t, items, FeedSize)
	assert.Equal(t, "new", items[0].ID)
	assert.Equal(t, "s0", items[1].ID)
	assert.Equal(t, "s8", items[FeedSize-1].ID)
}

func TestFeedApply(t *testing.T) {
	var f Feed
	f.Reset(submissions(2))

	f.Apply(Event{Type: "UPDATE", Data: models.FoodSubmission{ID: "s1", Status: models.StatusClaimed}})
	assert.Equal(t, models.StatusClaimed, f.Items()[1].Status)
	assert.Equal(t, 2, f.Len())

	f.Apply(Event{Type: "UPDATE", Data: models.FoodSubmission{ID: "unknown"}})
	assert.Equal(t, 2, f.Len())

	f.Apply(Event{Type: "INSERT", Data: models.FoodSubmission{ID: "s2"}})
	assert.Equal(t, "s2", f.Items()[0].ID)
	assert.Equal(t, 3, f.Len())
}

func TestFeedItemsIsACopy(t *testing.T) {
	var f Feed
	f.Reset(submissions(1))
	items := f.Items()
	items[0].ID = "changed"
	assert.Equal(t, "s0", f.Items()[0].ID)
}
