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
	"sort"

	"github.com/gorse-io/eda/dataset"
)

// GenreCount is the number of items listing a genre. An item with k genres
// contributes to k counts.
type GenreCount struct {
	Genre string
	Count int
}

// CountGenres tallies genre labels across all items, in first-encountered
// order.
func CountGenres(items []dataset.Item) []GenreCount {
	var order []string
	counts := make(map[string]int)
	for _, item := range items {
		for _, genre := range item.Genres {
			if _, exist := counts[genre]; !exist {
				order = append(order, genre)
			}
			counts[genre]++
		}
	}
	tally := make([]GenreCount, 0, len(order))
	for _, genre := range order {
		tally = append(tally, GenreCount{Genre: genre, Count: counts[genre]})
	}
	return tally
}

// TopGenres returns the n genres with the largest counts. The sort is
// stable: equal counts keep their first-encountered order.
func TopGenres(tally []GenreCount, n int) []GenreCount {
	sorted := make([]GenreCount, len(tally))
	copy(sorted, tally)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Count > sorted[j].Count
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
