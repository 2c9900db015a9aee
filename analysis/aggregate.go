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
	"sort"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"

	"github.com/gorse-io/eda/dataset"
)

// Aggregate is the rating statistics of a single user or item. Std is the
// sample standard deviation and NaN when Count is 1.
type Aggregate struct {
	Id    string
	Title string // item title, empty for user aggregates
	Count int
	Mean  float64
	Std   float64
}

// RatingCount is the number of records carrying a rating value.
type RatingCount struct {
	Rating float64
	Count  int
}

type accumulator struct {
	order  []string
	values map[string][]float64
}

func newAccumulator() *accumulator {
	return &accumulator{values: make(map[string][]float64)}
}

func (a *accumulator) add(id string, value float64) {
	if _, exist := a.values[id]; !exist {
		a.order = append(a.order, id)
	}
	a.values[id] = append(a.values[id], value)
}

func (a *accumulator) aggregates() []Aggregate {
	aggregates := make([]Aggregate, 0, len(a.order))
	for _, id := range a.order {
		values := a.values[id]
		aggregates = append(aggregates, Aggregate{
			Id:    id,
			Count: len(values),
			Mean:  round2(stat.Mean(values, nil)),
			Std:   round2(stat.StdDev(values, nil)),
		})
	}
	return aggregates
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// UserAggregates groups ratings by user, in first-encountered order.
func UserAggregates(db *dataset.Dataset) []Aggregate {
	acc := newAccumulator()
	for _, rating := range db.Ratings {
		acc.add(rating.UserId, rating.Rating)
	}
	return acc.aggregates()
}

// ItemAggregates groups ratings by item and joins item titles. Items never
// rated have nothing to aggregate; rated items missing from the item table
// are dropped as well (inner join).
func ItemAggregates(db *dataset.Dataset) []Aggregate {
	acc := newAccumulator()
	for _, rating := range db.Ratings {
		acc.add(rating.ItemId, rating.Rating)
	}
	aggregates := lo.Filter(acc.aggregates(), func(aggregate Aggregate, _ int) bool {
		return db.HasItem(aggregate.Id)
	})
	for i := range aggregates {
		aggregates[i].Title, _ = db.ItemTitle(aggregates[i].Id)
	}
	return aggregates
}

// RatingHistogram counts records per distinct rating value, ordered by
// ascending rating value.
func RatingHistogram(db *dataset.Dataset) []RatingCount {
	counts := make(map[float64]int)
	for _, rating := range db.Ratings {
		counts[rating.Rating]++
	}
	histogram := lo.MapToSlice(counts, func(rating float64, count int) RatingCount {
		return RatingCount{Rating: rating, Count: count}
	})
	sort.Slice(histogram, func(i, j int) bool {
		return histogram[i].Rating < histogram[j].Rating
	})
	return histogram
}

// TopByCount returns the n aggregates with the largest counts. The sort is
// stable: equal counts keep their first-encountered order.
func TopByCount(aggregates []Aggregate, n int) []Aggregate {
	sorted := make([]Aggregate, len(aggregates))
	copy(sorted, aggregates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Count > sorted[j].Count
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
