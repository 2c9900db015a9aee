// Copyright 2025 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package analysis

import (
	"math"
	"testing"

	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorse-io/eda/dataset"
)

func testDataset() *dataset.Dataset {
	return dataset.NewDataset([]dataset.Rating{
		{UserId: "u1", ItemId: "i1", Rating: 5},
		{UserId: "u1", ItemId: "i2", Rating: 3},
		{UserId: "u2", ItemId: "i1", Rating: 4},
	}, []dataset.Item{
		{ItemId: "i1", Title: "T1", Genres: []string{"Action"}},
		{ItemId: "i2", Title: "T2", Genres: []string{"Action", "Comedy"}},
	})
}

func TestSummarize(t *testing.T) {
	summary, err := Summarize(testDataset())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.NumUsers)
	assert.Equal(t, 2, summary.NumItems)
	assert.Equal(t, 2, summary.NumRatedItems)
	assert.Equal(t, 3, summary.NumRatings)
	assert.InDelta(t, 0.25, summary.Sparsity, 1e-9)
	assert.InDelta(t, 1.5, summary.RatingsPerUser, 1e-9)
	assert.InDelta(t, 1.5, summary.RatingsPerItem, 1e-9)
	// sparsity lies in [0, 1) when every (user, item) pair rates once
	assert.GreaterOrEqual(t, summary.Sparsity, 0.0)
	assert.Less(t, summary.Sparsity, 1.0)
}

func TestSummarizeEmpty(t *testing.T) {
	_, err := Summarize(dataset.NewDataset(nil, nil))
	assert.True(t, errors.IsNotValid(err))
}

func TestItemAggregates(t *testing.T) {
	items := ItemAggregates(testDataset())
	require.Len(t, items, 2)
	assert.Equal(t, "i1", items[0].Id)
	assert.Equal(t, "T1", items[0].Title)
	assert.Equal(t, 2, items[0].Count)
	assert.Equal(t, 4.5, items[0].Mean)
	assert.False(t, math.IsNaN(items[0].Std))
	// single rating: mean equals the rating, std is undefined
	assert.Equal(t, "i2", items[1].Id)
	assert.Equal(t, 1, items[1].Count)
	assert.Equal(t, 3.0, items[1].Mean)
	assert.True(t, math.IsNaN(items[1].Std))
	// per-item counts sum to the number of ratings
	assert.Equal(t, 3, lo.SumBy(items, func(a Aggregate) int { return a.Count }))
}

func TestItemAggregatesInnerJoin(t *testing.T) {
	db := testDataset()
	db.Ratings = append(db.Ratings, dataset.Rating{UserId: "u2", ItemId: "ghost", Rating: 1})
	items := ItemAggregates(db)
	// items absent from the item table are dropped
	assert.Equal(t, []string{"i1", "i2"}, lo.Map(items, func(a Aggregate, _ int) string { return a.Id }))
}

func TestUserAggregates(t *testing.T) {
	users := UserAggregates(testDataset())
	require.Len(t, users, 2)
	assert.Equal(t, "u1", users[0].Id)
	assert.Equal(t, 2, users[0].Count)
	assert.Equal(t, 4.0, users[0].Mean)
	assert.InDelta(t, 1.41, users[0].Std, 1e-9)
	assert.Equal(t, "u2", users[1].Id)
	assert.Equal(t, 1, users[1].Count)
	assert.Equal(t, 4.0, users[1].Mean)
	assert.True(t, math.IsNaN(users[1].Std))
	assert.Equal(t, 3, lo.SumBy(users, func(a Aggregate) int { return a.Count }))
}

func TestRatingHistogram(t *testing.T) {
	db := testDataset()
	db.Ratings = append(db.Ratings, dataset.Rating{UserId: "u3", ItemId: "i1", Rating: 3})
	histogram := RatingHistogram(db)
	assert.Equal(t, []RatingCount{
		{Rating: 3, Count: 2},
		{Rating: 4, Count: 1},
		{Rating: 5, Count: 1},
	}, histogram)
	// histogram counts sum to the number of ratings
	assert.Equal(t, len(db.Ratings), lo.SumBy(histogram, func(c RatingCount) int { return c.Count }))
}

func TestTopByCount(t *testing.T) {
	aggregates := []Aggregate{
		{Id: "a", Count: 1},
		{Id: "b", Count: 3},
		{Id: "c", Count: 3},
		{Id: "d", Count: 2},
	}
	top := TopByCount(aggregates, 3)
	// ties keep first-encountered order
	assert.Equal(t, []string{"b", "c", "d"}, lo.Map(top, func(a Aggregate, _ int) string { return a.Id }))
	// n larger than the aggregate is clamped
	assert.Len(t, TopByCount(aggregates, 100), 4)
	// the input is left unsorted
	assert.Equal(t, "a", aggregates[0].Id)
}

func TestCountGenres(t *testing.T) {
	db := testDataset()
	tally := CountGenres(db.Items)
	assert.Equal(t, []GenreCount{
		{Genre: "Action", Count: 2},
		{Genre: "Comedy", Count: 1},
	}, tally)
	// tally total is at least the number of items
	assert.GreaterOrEqual(t,
		lo.SumBy(tally, func(c GenreCount) int { return c.Count }), len(db.Items))
}

func TestTopGenres(t *testing.T) {
	tally := []GenreCount{
		{Genre: "Drama", Count: 2},
		{Genre: "Comedy", Count: 5},
		{Genre: "Action", Count: 2},
	}
	assert.Equal(t, []GenreCount{
		{Genre: "Comedy", Count: 5},
		{Genre: "Drama", Count: 2},
	}, TopGenres(tally, 2))
	assert.Len(t, TopGenres(tally, 10), 3)
}

func TestAnalyzeBias(t *testing.T) {
	db := testDataset()
	report := AnalyzeBias(len(db.Ratings), UserAggregates(db), ItemAggregates(db))
	// fewer users/items than the top-k thresholds: every rating is covered
	assert.Equal(t, 2, report.PowerUsers)
	assert.Equal(t, 2, report.PopularItems)
	assert.InDelta(t, 100, report.PowerUserShare, 1e-9)
	assert.InDelta(t, 100, report.PopularItemShare, 1e-9)
}

func TestAnalyzeBiasShare(t *testing.T) {
	ratings := make([]dataset.Rating, 0)
	items := make([]dataset.Item, 0)
	// 30 users with one rating each on their own item
	for i := 0; i < 30; i++ {
		id := string(rune('A' + i))
		ratings = append(ratings, dataset.Rating{UserId: id, ItemId: id, Rating: 3})
		items = append(items, dataset.Item{ItemId: id, Title: id, Genres: []string{"Action"}})
	}
	// one power user rating 30 items
	for i := 0; i < 30; i++ {
		ratings = append(ratings, dataset.Rating{UserId: "power", ItemId: string(rune('A' + i)), Rating: 4})
	}
	db := dataset.NewDataset(ratings, items)
	report := AnalyzeBias(len(ratings), UserAggregates(db), ItemAggregates(db))
	assert.Equal(t, NumPowerUsers, report.PowerUsers)
	// top 20 users hold the power user (30) plus 19 single-rating users
	assert.InDelta(t, float64(30+19)/60*100, report.PowerUserShare, 1e-9)
	assert.GreaterOrEqual(t, report.PowerUserShare, 0.0)
	assert.LessOrEqual(t, report.PowerUserShare, 100.0)
	assert.GreaterOrEqual(t, report.PopularItemShare, 0.0)
	assert.LessOrEqual(t, report.PopularItemShare, 100.0)
}
