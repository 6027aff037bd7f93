package pricing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"TankSentinel/internal/calculator"
	"TankSentinel/internal/model"
)

var exportHeader = []string{
	"name", "quantity", "unit_price",
	"unit_price_with_vat", "total_without_vat", "vat", "total_with_vat",
}

// Table is a multi-row contract price sheet sharing one VAT rate.
type Table struct {
	Rate float64
	Rows []model.ContractRow
}

// NewTable creates an empty table. A non-positive rate uses DefaultVATRate.
func NewTable(rate float64) *Table {
	if rate <= 0 {
		rate = calculator.DefaultVATRate
	}
	return &Table{Rate: rate}
}

// Add appends a row after computing its VAT breakdown.
func (t *Table) Add(name string, quantity, unitPrice float64) error {
	res, err := calculator.CalculateVAT(quantity, unitPrice, t.Rate)
	if err != nil {
		return fmt.Errorf("row %q: %w", name, err)
	}
	t.Rows = append(t.Rows, model.ContractRow{
		Name:      strings.TrimSpace(name),
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Result:    res,
	})
	return nil
}

// Totals sums quantities and money columns over all rows.
func (t *Table) Totals() model.VATBreakdown {
	total := model.VATBreakdown{Rate: t.Rate}
	for _, r := range t.Rows {
		total.Quantity += r.Result.Quantity
		total.TotalWithoutVAT += r.Result.TotalWithoutVAT
		total.VATAmount += r.Result.VATAmount
		total.TotalWithVAT += r.Result.TotalWithVAT
	}
	return total
}

// ImportCSV reads rows of name,quantity,unit_price. A header row is skipped
// when its quantity column is not numeric. Extra columns are ignored, so an
// exported table can be imported back.
func ImportCSV(r io.Reader, rate float64) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	t := NewTable(rate)
	line := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line++
		if len(rec) < 3 {
			return nil, fmt.Errorf("line %d: expected at least 3 columns, got %d", line, len(rec))
		}
		qty, qErr := parseNumber(rec[1])
		if qErr != nil && line == 1 {
			continue
		}
		if qErr != nil {
			return nil, fmt.Errorf("line %d: quantity: %w", line, qErr)
		}
		price, err := parseNumber(rec[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: unit price: %w", line, err)
		}
		if err := t.Add(rec[0], qty, price); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	return t, nil
}

// ExportCSV writes the table with computed columns.
func (t *Table) ExportCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, r := range t.Rows {
		rec := []string{
			r.Name,
			formatPlain(r.Quantity),
			formatPlain(r.UnitPrice),
			formatPlain(r.Result.UnitPriceWithVAT),
			formatPlain(r.Result.TotalWithoutVAT),
			formatPlain(r.Result.VATAmount),
			formatPlain(r.Result.TotalWithVAT),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatMoney renders an amount with space-grouped thousands and a decimal
// comma, e.g. 1 234 567,50.
func FormatMoney(v float64) string {
	return humanize.FormatFloat("# ###,##", v)
}

// parseNumber accepts both decimal point and decimal comma.
func parseNumber(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	return strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
}

func formatPlain(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
