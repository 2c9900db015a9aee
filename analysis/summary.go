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

// Package analysis computes descriptive statistics over a rating dataset:
// dataset-level cardinalities, per-user and per-item aggregates, genre
// tallies and rating-volume concentration. All aggregates preserve
// first-encountered order so that top-k selections are deterministic.
package analysis

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"

	"github.com/gorse-io/eda/dataset"
)

// Summary describes the scale and sparsity of a rating dataset.
type Summary struct {
	NumUsers       int     // distinct users in the rating table
	NumItems       int     // distinct items in the item table
	NumRatedItems  int     // distinct items in the rating table
	NumRatings     int     // total rating records
	Sparsity       float64 // 1 - |ratings| / (|users| * |rated items|)
	RatingsPerUser float64
	RatingsPerItem float64
}

// Summarize computes the dataset summary. An empty rating table makes
// sparsity undefined and returns a not valid error instead of a
// misleading number.
func Summarize(db *dataset.Dataset) (*Summary, error) {
	users := mapset.NewSet[string]()
	ratedItems := mapset.NewSet[string]()
	for _, rating := range db.Ratings {
		users.Add(rating.UserId)
		ratedItems.Add(rating.ItemId)
	}
	items := mapset.NewSet[string]()
	for _, item := range db.Items {
		items.Add(item.ItemId)
	}
	numUsers := users.Cardinality()
	numRatedItems := ratedItems.Cardinality()
	if numUsers == 0 || numRatedItems == 0 {
		return nil, errors.NotValidf("dataset with %d users and %d rated items", numUsers, numRatedItems)
	}
	numRatings := len(db.Ratings)
	return &Summary{
		NumUsers:       numUsers,
		NumItems:       items.Cardinality(),
		NumRatedItems:  numRatedItems,
		NumRatings:     numRatings,
		Sparsity:       1 - float64(numRatings)/(float64(numUsers)*float64(numRatedItems)),
		RatingsPerUser: float64(numRatings) / float64(numUsers),
		RatingsPerItem: float64(numRatings) / float64(numRatedItems),
	}, nil
}
