// Package output serializes decoded transactions to the stable output
// record shape spec.md §6 defines (Time, Address, Operation, Value,
// Response, WaitState, register_info), as JSON or CSV. Grounded on the
// teacher's log.go, which writes a similar flat per-record CSV log of
// decoded packets.
package output

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/MBarae/waveform-reg-access-extractor/internal/model"
)

// record is the JSON projection of a DecodedTransaction, matching
// spec.md §6's stable output keys exactly.
type record struct {
	Time         int64              `json:"Time"`
	Address      string             `json:"Address"`
	Operation    model.Operation    `json:"Operation"`
	Value        string             `json:"Value,omitempty"`
	Response     model.Response     `json:"Response,omitempty"`
	WaitState    bool               `json:"WaitState"`
	RegisterInfo registerInfoRecord `json:"register_info"`
}

type registerInfoRecord struct {
	Name      string        `json:"name"`
	HasFields bool          `json:"has_fields"`
	Fields    []fieldRecord `json:"fields"`
}

type fieldRecord struct {
	Name       string `json:"name"`
	BitOffset  int    `json:"bit_offset"`
	BitWidth   int    `json:"bit_width"`
	Value      string `json:"value"`
	IsReserved bool   `json:"is_reserved"`
}

func toRecord(tx model.DecodedTransaction) record {
	fields := make([]fieldRecord, len(tx.RegisterInfo.Fields))
	for i, f := range tx.RegisterInfo.Fields {
		fields[i] = fieldRecord{
			Name:       f.Name,
			BitOffset:  f.BitOffset,
			BitWidth:   f.BitWidth,
			Value:      f.Value,
			IsReserved: f.IsReserved,
		}
	}
	return record{
		Time:      tx.Time,
		Address:   tx.Address,
		Operation: tx.Operation,
		Value:     tx.Value,
		Response:  tx.Response,
		WaitState: tx.WaitState,
		RegisterInfo: registerInfoRecord{
			Name:      tx.RegisterInfo.Name,
			HasFields: tx.RegisterInfo.HasFields,
			Fields:    fields,
		},
	}
}

// WriteJSON writes txs as a single JSON array to w.
func WriteJSON(w io.Writer, txs []model.DecodedTransaction) error {
	records := make([]record, len(txs))
	for i, tx := range txs {
		records[i] = toRecord(tx)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// CSVWriter flattens decoded transactions into one CSV row per field
// (so registers with differing field counts still produce a regular
// table), suitable for spreadsheet review during firmware bring-up.
type CSVWriter struct {
	w *csv.Writer
}

// NewCSVWriter builds a CSVWriter and emits its header row.
func NewCSVWriter(w io.Writer) (*CSVWriter, error) {
	cw := csv.NewWriter(w)
	header := []string{
		"time", "address", "operation", "value", "response", "wait_state",
		"register", "has_fields", "field_name", "field_bit_offset", "field_bit_width", "field_value", "field_reserved",
	}
	if err := cw.Write(header); err != nil {
		return nil, err
	}
	return &CSVWriter{w: cw}, nil
}

// WriteTransaction appends one or more rows for tx: one per field, or
// a single field-less row when tx has no fields (wait states,
// register_info.has_fields == false with no synthesized field).
func (c *CSVWriter) WriteTransaction(tx model.DecodedTransaction) error {
	base := []string{
		strconv.FormatInt(tx.Time, 10),
		tx.Address,
		string(tx.Operation),
		tx.Value,
		string(tx.Response),
		strconv.FormatBool(tx.WaitState),
		tx.RegisterInfo.Name,
		strconv.FormatBool(tx.RegisterInfo.HasFields),
	}

	if len(tx.RegisterInfo.Fields) == 0 {
		row := append(append([]string{}, base...), "", "", "", "", "")
		return c.w.Write(row)
	}

	for _, f := range tx.RegisterInfo.Fields {
		row := append(append([]string{}, base...),
			f.Name,
			strconv.Itoa(f.BitOffset),
			strconv.Itoa(f.BitWidth),
			f.Value,
			strconv.FormatBool(f.IsReserved),
		)
		if err := c.w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes any buffered CSV output.
func (c *CSVWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}
