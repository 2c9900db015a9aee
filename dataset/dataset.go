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

package dataset

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/juju/errors"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/gorse-io/eda/base"
	"github.com/gorse-io/eda/base/log"
)

// GenreSeparator joins genre labels in the items file.
const GenreSeparator = "|"

// Rating is a single (user, item, rating) record. The timestamp column of
// the source file is ignored.
type Rating struct {
	UserId string
	ItemId string
	Rating float64
}

// Item is a single row of the item metadata file.
type Item struct {
	ItemId string
	Title  string
	Genres []string
}

// Dataset holds the two source tables. Both tables are read-only after
// loading and shared by every analyzer without synchronization.
type Dataset struct {
	Ratings   []Rating
	Items     []Item
	itemIndex map[string]int
}

// NewDataset builds a dataset from in-memory tables.
func NewDataset(ratings []Rating, items []Item) *Dataset {
	dataset := &Dataset{
		Ratings:   ratings,
		itemIndex: make(map[string]int),
	}
	for _, item := range items {
		dataset.addItem(item)
	}
	return dataset
}

func (d *Dataset) addItem(item Item) {
	d.itemIndex[item.ItemId] = len(d.Items)
	d.Items = append(d.Items, item)
}

// ItemTitle returns the title of an item, or false if the item is absent
// from the item table.
func (d *Dataset) ItemTitle(itemId string) (string, bool) {
	position, exist := d.itemIndex[itemId]
	if !exist {
		return "", false
	}
	return d.Items[position].Title, true
}

// HasItem checks whether an item appears in the item table.
func (d *Dataset) HasItem(itemId string) bool {
	_, exist := d.itemIndex[itemId]
	return exist
}

// LoadDataset reads the ratings table and the item table. Both files are
// header-leading comma separated text. A missing file yields a not found
// error before anything is read; any malformed row is fatal for the load.
func LoadDataset(ratingsPath, itemsPath string) (*Dataset, error) {
	for _, path := range []string{ratingsPath, itemsPath} {
		if _, err := os.Stat(path); err != nil {
			return nil, errors.NotFoundf("dataset file %s", path)
		}
	}
	dataset := new(Dataset)
	if err := dataset.loadRatings(ratingsPath); err != nil {
		return nil, errors.Trace(err)
	}
	if err := dataset.loadItems(itemsPath); err != nil {
		return nil, errors.Trace(err)
	}
	log.Logger().Info("loaded dataset",
		zap.String("ratings_file", ratingsPath),
		zap.String("items_file", itemsPath),
		zap.Int("num_ratings", len(dataset.Ratings)),
		zap.Int("num_items", len(dataset.Items)))
	return dataset, nil
}

func (d *Dataset) loadRatings(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Trace(err)
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return errors.Trace(err)
	}
	pbReader := progressbar.NewReader(file, progressbar.DefaultBytes(info.Size(), "Load "+path))
	scanner := bufio.NewScanner(&pbReader)
	var parseErr error
	err = base.ReadLines(scanner, ",", func(lineNumber int, fields []string) bool {
		if lineNumber == 0 {
			// skip the header
			return true
		}
		if len(fields) < 3 {
			parseErr = errors.Errorf("%s: line %d has %d fields, expect at least 3", path, lineNumber, len(fields))
			return false
		}
		rating, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			parseErr = errors.Annotatef(err, "%s: line %d", path, lineNumber)
			return false
		}
		d.Ratings = append(d.Ratings, Rating{
			UserId: fields[0],
			ItemId: fields[1],
			Rating: rating,
		})
		return true
	})
	if err != nil {
		return errors.Trace(err)
	}
	return parseErr
}

func (d *Dataset) loadItems(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Trace(err)
	}
	defer file.Close()
	d.itemIndex = make(map[string]int)
	scanner := bufio.NewScanner(file)
	var parseErr error
	err = base.ReadLines(scanner, ",", func(lineNumber int, fields []string) bool {
		if lineNumber == 0 {
			// skip the header
			return true
		}
		if len(fields) < 3 {
			parseErr = errors.Errorf("%s: line %d has %d fields, expect at least 3", path, lineNumber, len(fields))
			return false
		}
		d.addItem(Item{
			ItemId: fields[0],
			Title:  fields[1],
			Genres: strings.Split(fields[2], GenreSeparator),
		})
		return true
	})
	if err != nil {
		return errors.Trace(err)
	}
	return parseErr
}
