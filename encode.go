package payments

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
)

// Header is the CSV header written by CSVEncoder.
var Header = []string{"client", "available", "held", "total", "locked"}

// CSVEncoder writes client states as CSV. The header is written before the first row,
// even when no state is ever encoded and Flush is called.
type CSVEncoder struct {
	w           *csv.Writer
	wroteHeader bool
}

// NewCSVEncoder returns an encoder writing to w.
func NewCSVEncoder(w io.Writer) *CSVEncoder {
	return &CSVEncoder{w: csv.NewWriter(w)}
}

func (e *CSVEncoder) header() error {
	if e.wroteHeader {
		return nil
	}
	e.wroteHeader = true
	return e.w.Write(Header)
}

// Encode writes one row per state.
func (e *CSVEncoder) Encode(states ...ClientState) error {
	if err := e.header(); err != nil {
		return err
	}
	for _, s := range states {
		row := []string{
			strconv.FormatUint(uint64(s.Client), 10),
			s.Available.String(),
			s.Held.String(),
			s.Total.String(),
			strconv.FormatBool(s.Locked),
		}
		if err := e.w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes any buffered data to the underlying writer.
func (e *CSVEncoder) Flush() error {
	if err := e.header(); err != nil {
		return err
	}
	e.w.Flush()
	return e.w.Error()
}

// EncodeClientStates writes states as CSV, header included.
func EncodeClientStates(w io.Writer, states []ClientState) error {
	enc := NewCSVEncoder(w)
	if err := enc.Encode(states...); err != nil {
		return err
	}
	return enc.Flush()
}

// EncodeJSON writes states as an indented JSON array.
func EncodeJSON(w io.Writer, states []ClientState) error {
	if states == nil {
		states = []ClientState{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(states)
}
