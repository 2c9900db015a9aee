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
	"github.com/samber/lo"
)

const (
	// NumPowerUsers is the number of most active users treated as power users.
	NumPowerUsers = 20
	// NumPopularItems is the number of most rated items treated as popular items.
	NumPopularItems = 50
)

// BiasReport quantifies how much of the rating volume is concentrated on
// the most active users and the most rated items. A downstream recommender
// trained on such data inherits this bias.
type BiasReport struct {
	PowerUsers       int     // number of users counted as power users
	PowerUserShare   float64 // percentage of ratings given by power users
	PopularItems     int     // number of items counted as popular items
	PopularItemShare float64 // percentage of ratings received by popular items
}

// AnalyzeBias selects the top users and items by rating count from the
// retained aggregates and computes their share of the total rating volume.
func AnalyzeBias(numRatings int, users, items []Aggregate) BiasReport {
	powerUsers := TopByCount(users, NumPowerUsers)
	popularItems := TopByCount(items, NumPopularItems)
	countOf := func(aggregate Aggregate) int { return aggregate.Count }
	return BiasReport{
		PowerUsers:       len(powerUsers),
		PowerUserShare:   float64(lo.SumBy(powerUsers, countOf)) / float64(numRatings) * 100,
		PopularItems:     len(popularItems),
		PopularItemShare: float64(lo.SumBy(popularItems, countOf)) / float64(numRatings) * 100,
	}
}
