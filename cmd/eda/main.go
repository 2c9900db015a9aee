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

package main

import (
	"fmt"
	"os"

	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gorse-io/eda/analysis"
	"github.com/gorse-io/eda/base/log"
	"github.com/gorse-io/eda/chart"
	"github.com/gorse-io/eda/cmd/version"
	"github.com/gorse-io/eda/dataset"
	"github.com/gorse-io/eda/report"
)

// Input and output files, all in the working directory. The analysis
// contract is fixed: no flags change these names or any threshold.
const (
	ratingsFile = "ratings.csv"
	moviesFile  = "movies.csv"

	distributionsChart = "basic_distributions.png"
	popularityChart    = "popularity_vs_rating.png"
	behaviorChart      = "user_behavior_analysis.png"
	genreChart         = "genre_distribution.png"

	topGenres = 10
)

var edaCommand = &cobra.Command{
	Use:   "eda",
	Short: "Exploratory analysis for MovieLens style rating datasets.",
	Long: "Profiles ratings.csv and movies.csv in the working directory before the dataset\n" +
		"is imported into a recommender system: scale, sparsity, rating distributions,\n" +
		"popularity bias, user behavior and genre composition. Writes four PNG figures\n" +
		"and prints a report to stdout.",
	Run: func(cmd *cobra.Command, args []string) {
		// Show version
		if showVersion, _ := cmd.PersistentFlags().GetBool("version"); showVersion {
			fmt.Println(version.BuildInfo())
			return
		}

		// setup logger
		debug, _ := cmd.PersistentFlags().GetBool("debug")
		log.SetLogger(cmd.PersistentFlags(), debug)

		// load dataset
		db, err := dataset.LoadDataset(ratingsFile, moviesFile)
		if err != nil {
			if errors.IsNotFound(err) {
				fmt.Println("ERROR: Dataset files not found.")
				os.Exit(1)
			}
			log.Logger().Fatal("failed to load dataset", zap.Error(err))
		}
		fmt.Println("Successfully loaded MovieLens dataset")

		// dataset overview
		summary, err := analysis.Summarize(db)
		if err != nil {
			log.Logger().Fatal("failed to summarize dataset", zap.Error(err))
		}
		report.WriteOverview(os.Stdout, summary)

		// rating and user activity distributions
		users := analysis.UserAggregates(db)
		activity := lo.Map(users, func(a analysis.Aggregate, _ int) float64 { return float64(a.Count) })
		renderChart(distributionsChart, func() error {
			return chart.Distributions(analysis.RatingHistogram(db), activity, distributionsChart)
		})

		// item popularity
		items := analysis.ItemAggregates(db)
		renderChart(popularityChart, func() error {
			return chart.Popularity(items, popularityChart)
		})
		report.WriteMoviePopularity(os.Stdout, items)

		// user behavior
		renderChart(behaviorChart, func() error {
			return chart.UserBehavior(users, behaviorChart)
		})

		// genre composition
		genres := analysis.TopGenres(analysis.CountGenres(db.Items), topGenres)
		renderChart(genreChart, func() error {
			return chart.Genres(genres, genreChart)
		})

		// bias insights
		bias := analysis.AnalyzeBias(summary.NumRatings, users, items)
		report.WriteFilteringInsights(os.Stdout, summary, bias)
		report.WriteSummary(os.Stdout)
	},
}

func renderChart(path string, render func() error) {
	if err := render(); err != nil {
		log.Logger().Fatal("failed to render chart",
			zap.String("file", path), zap.Error(err))
	}
	log.Logger().Info("rendered chart", zap.String("file", path))
}

func init() {
	edaCommand.PersistentFlags().BoolP("version", "v", false, "eda version")
	edaCommand.PersistentFlags().Bool("debug", false, "use debug log mode")
	log.AddFlags(edaCommand.PersistentFlags())
}

func main() {
	if err := edaCommand.Execute(); err != nil {
		log.Logger().Fatal("failed to execute command", zap.Error(err))
	}
}
