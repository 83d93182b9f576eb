package application

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Apurer/reseller-ops-api/internal/domains/inventory/domain"
	"github.com/Apurer/reseller-ops-api/internal/domains/inventory/ports"
)

var exportHeader = []string{
	"id", "model", "product", "imei", "sku", "serialNumber", "color", "location", "batch", "status", "dateAdded", "soldAt",
}

type importRow struct {
	line  int
	input ports.AddUnitInput
}

// parseImport reads a header-led CSV document. Header names are matched case-insensitively and
// ignore spaces and underscores; an id column is ignored since identifiers are assigned on intake.
func parseImport(r io.Reader) ([]importRow, error) {
	if r == nil {
		return nil, ErrEmptyImport
	}
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyImport
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrInvalidCSV, err)
	}
	columns := map[string]int{}
	for i, name := range header {
		columns[normalizeHeader(name)] = i
	}
	for _, required := range []string{"model", "product"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing %q column: %w", required, requiredColumnError(required))
		}
	}

	rows := make([]importRow, 0)
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidCSV, line, err)
		}
		if blankRecord(record) {
			continue
		}
		field := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}
		rows = append(rows, importRow{line: line, input: ports.AddUnitInput{
			Model:        field("model"),
			Product:      field("product"),
			IMEI:         field("imei"),
			SKU:          field("sku"),
			SerialNumber: field("serialnumber"),
			Color:        field("color"),
			Location:     field("location"),
			Batch:        field("batch"),
			Status:       field("status"),
			DateAdded:    field("dateadded"),
		}})
	}
	if len(rows) == 0 {
		return nil, ErrEmptyImport
	}
	return rows, nil
}

func normalizeHeader(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(name)
}

func requiredColumnError(column string) error {
	if column == "model" {
		return domain.ErrEmptyModel
	}
	return domain.ErrEmptyProduct
}

func blankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func exportRows(units []*domain.Unit) [][]string {
	rows := make([][]string, 0, len(units))
	for _, u := range units {
		soldAt := ""
		if u.SoldAt != nil {
			soldAt = u.SoldAt.UTC().Format(time.RFC3339)
		}
		rows = append(rows, []string{
			strconv.FormatInt(u.ID, 10),
			u.Model,
			u.Product,
			u.IMEI,
			u.SKU,
			u.SerialNumber,
			u.Color,
			u.Location,
			u.Batch,
			string(u.Status),
			u.DateAdded.UTC().Format(time.RFC3339),
			soldAt,
		})
	}
	return rows
}

func encodeCSV(units []*domain.Unit) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	if err := w.WriteAll(exportRows(units)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const exportSheet = "Inventory"

func encodeXLSX(units []*domain.Unit) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}
	writeRow := func(rowNum int, values []string) error {
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		row := make([]interface{}, len(values))
		for i, v := range values {
			row[i] = v
		}
		return f.SetSheetRow(exportSheet, cell, &row)
	}
	if err := writeRow(1, exportHeader); err != nil {
		return nil, err
	}
	for i, values := range exportRows(units) {
		if err := writeRow(i+2, values); err != nil {
			return nil, err
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
