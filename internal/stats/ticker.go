package stats

import (
	"encoding/csv"
	"io"
	"strconv"
)

// Ticker appends one CSV record per resource traded on a day:
//
//	date,resource,buy_count,sell_count,transaction_count,min,median,max
//
// min, median and max describe transaction prices and are empty when
// nothing was traded.
type Ticker struct {
	w *csv.Writer
}

// NewTicker writes records to w.
func NewTicker(w io.Writer) *Ticker {
	return &Ticker{w: csv.NewWriter(w)}
}

// Record returns the ticker fields of s.
func Record(s StatsForDay) []string {
	rec := []string{
		strconv.FormatUint(uint64(s.Day), 10),
		s.Resource.String(),
		strconv.Itoa(s.Buy.Count),
		strconv.Itoa(s.Sell.Count),
		strconv.Itoa(s.Transactions.Count),
		"", "", "",
	}
	if s.Transactions.Count > 0 {
		rec[5] = strconv.FormatInt(s.Transactions.Min.Creds(), 10)
		rec[6] = strconv.FormatInt(s.Transactions.Median.Creds(), 10)
		rec[7] = strconv.FormatInt(s.Transactions.Max.Creds(), 10)
	}
	return rec
}

// Log writes every snapshot of day from h and flushes.
func (t *Ticker) Log(h *History, day Day) error {
	for _, s := range h.Day(day) {
		if err := t.w.Write(Record(s)); err != nil {
			return err
		}
	}
	t.w.Flush()
	return t.w.Error()
}
