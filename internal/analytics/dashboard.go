package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finspect-dev/finspect/internal/model"
	"github.com/finspect-dev/finspect/internal/period"
)

// ChunkSizes are the dashboard granularities in months: monthly, quarterly, yearly.
var ChunkSizes = []int{1, 3, 12}

// Chunk is one granularity of the dashboard series.
type Chunk struct {
	Size int       `json:"chunkSize"`
	Data []Metrics `json:"data"`
}

// Books returns one book per month for every year from fromYear-1 through
// toYear. Months without a sheet are filled from the latest earlier sheet of
// the same year, or the earliest sheet of that year, with result accounts
// (code prefix "3") zeroed. Years with no sheet at all yield empty books.
func Books(sheets []model.BalanceSheet, fromYear, toYear int) ([]Book, []period.Period) {
	byYear := make(map[int][]model.BalanceSheet)
	for _, s := range sheets {
		byYear[s.Period.Year] = append(byYear[s.Period.Year], s)
	}
	for y := range byYear {
		ys := byYear[y]
		sort.Slice(ys, func(i, j int) bool { return ys[i].Period.Month < ys[j].Period.Month })
	}

	var books []Book
	var periods []period.Period
	for y := fromYear - 1; y <= toYear; y++ {
		ys := byYear[y]
		for m := 1; m <= 12; m++ {
			books = append(books, monthBook(ys, m))
			periods = append(periods, period.Period{Month: m, Year: y})
		}
	}
	return books, periods
}

// monthBook expects ys sorted by month.
func monthBook(ys []model.BalanceSheet, month int) Book {
	if len(ys) == 0 {
		return Book{}
	}
	var base *model.BalanceSheet
	for i := range ys {
		if ys[i].Period.Month == month {
			return Book(ys[i].AccountMap())
		}
		if ys[i].Period.Month < month {
			base = &ys[i]
		}
	}
	if base == nil {
		base = &ys[0]
	}
	return placeholder(base.AccountMap())
}

func placeholder(src map[string]decimal.Decimal) Book {
	b := make(Book, len(src))
	for code, v := range src {
		if strings.HasPrefix(code, "3") {
			v = decimal.Zero
		}
		b[code] = v
	}
	return b
}

// Build derives the dashboard series for the year range. now decides which
// month closes the current year in yearly chunks.
func Build(sheets []model.BalanceSheet, fromYear, toYear int, now time.Time) []Chunk {
	books, periods := Books(sheets, fromYear, toYear)
	months := make([]Metrics, len(books))
	for i, b := range books {
		months[i] = Derive(b, periods[i])
	}

	out := make([]Chunk, 0, len(ChunkSizes))
	for _, size := range ChunkSizes {
		groups := split(months, size)
		data := make([]Metrics, len(groups))
		for i := range groups {
			data[i] = combine(groups, i, size, now)
		}
		out = append(out, Chunk{Size: size, Data: data})
	}
	return out
}

func split(months []Metrics, size int) [][]Metrics {
	var groups [][]Metrics
	for i := 0; i < len(months); i += size {
		end := min(i+size, len(months))
		groups = append(groups, months[i:end])
	}
	return groups
}
