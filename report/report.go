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

// Package report writes the analyst-facing console sections.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"

	"github.com/gorse-io/eda/analysis"
)

const (
	// MostRatedMovies is the length of the most rated movie table.
	MostRatedMovies = 10
	// HighestRatedMovies is the length of the highest rated movie table.
	HighestRatedMovies = 10
	// HighestRatedMinRatings is the minimal rating count for a movie to enter
	// the highest rated table. A handful of five star ratings says little.
	HighestRatedMinRatings = 50
)

// WriteOverview writes the dataset overview section.
func WriteOverview(w io.Writer, summary *analysis.Summary) {
	fmt.Fprintln(w, "\n=== DATASET OVERVIEW ===")
	fmt.Fprintf(w, "Users: %d\n", summary.NumUsers)
	fmt.Fprintf(w, "Movies (total): %d\n", summary.NumItems)
	fmt.Fprintf(w, "Movies (rated): %d\n", summary.NumRatedItems)
	fmt.Fprintf(w, "Total ratings: %d\n", summary.NumRatings)
	fmt.Fprintf(w, "Sparsity: %.4f\n", summary.Sparsity)
	fmt.Fprintf(w, "Avg ratings per user: %.1f\n", summary.RatingsPerUser)
	fmt.Fprintf(w, "Avg ratings per movie: %.1f\n", summary.RatingsPerItem)
}

// WriteMoviePopularity writes the most rated and the highest rated movie
// tables.
func WriteMoviePopularity(w io.Writer, items []analysis.Aggregate) {
	fmt.Fprintln(w, "\n=== MOVIE POPULARITY ANALYSIS ===")
	fmt.Fprintln(w, "Most rated movies:")
	writeMovieTable(w, analysis.TopByCount(items, MostRatedMovies))
	fmt.Fprintf(w, "Highest rated movies (min %d ratings):\n", HighestRatedMinRatings)
	writeMovieTable(w, topByMean(items, HighestRatedMovies))
}

func writeMovieTable(w io.Writer, items []analysis.Aggregate) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"title", "num ratings", "avg rating"})
	for _, item := range items {
		table.Append([]string{
			item.Title,
			strconv.Itoa(item.Count),
			strconv.FormatFloat(item.Mean, 'f', 2, 64),
		})
	}
	table.Render()
}

// topByMean returns the n aggregates with the highest mean among those with
// at least HighestRatedMinRatings ratings, stable on ties.
func topByMean(items []analysis.Aggregate, n int) []analysis.Aggregate {
	rated := lo.Filter(items, func(a analysis.Aggregate, _ int) bool {
		return a.Count >= HighestRatedMinRatings
	})
	sorted := make([]analysis.Aggregate, len(rated))
	copy(sorted, rated)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Mean > sorted[j].Mean
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// WriteFilteringInsights writes the matrix shape and the bias shares.
func WriteFilteringInsights(w io.Writer, summary *analysis.Summary, bias analysis.BiasReport) {
	fmt.Fprintln(w, "\n=== FILTERING INSIGHTS ===")
	fmt.Fprintf(w, "Matrix dimensions: %d users × %d movies\n", summary.NumUsers, summary.NumRatedItems)
	fmt.Fprintf(w, "Matrix sparsity: %.2f%%\n", summary.Sparsity*100)
	fmt.Fprintf(w, "Power users (top %d): %d users account for %.1f%% of ratings\n",
		analysis.NumPowerUsers, bias.PowerUsers, bias.PowerUserShare)
	fmt.Fprintf(w, "Popular movies (top %d): %d movies account for %.1f%% of ratings\n",
		analysis.NumPopularItems, bias.PopularItems, bias.PopularItemShare)
}

// WriteSummary writes the final section listing the generated artifacts.
func WriteSummary(w io.Writer) {
	fmt.Fprintln(w, "\n=== SUMMARY ===")
	fmt.Fprintln(w, "Generated visualizations:")
	fmt.Fprintln(w, "- basic_distributions.png: Rating patterns & user activity")
	fmt.Fprintln(w, "- popularity_vs_rating.png: Movie popularity bias analysis")
	fmt.Fprintln(w, "- user_behavior_analysis.png: User rating behavior & biases")
	fmt.Fprintln(w, "- genre_distribution.png: Content distribution")
}
