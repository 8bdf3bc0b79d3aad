package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"sjsage522/menufinder/internal/crawler"

	"github.com/xuri/excelize/v2"
)

const (
	// ListSeparator joins ingredient and step lists into one cell
	ListSeparator = "|"

	sheetName = "Sheet1"
)

// Header is the column layout shared by the CSV and XLSX datasets
var Header = []string{"recipe_name", "ingredients", "steps", "type", "difficulty", "time", "image"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Row flattens a recipe into dataset columns
func Row(r crawler.Recipe) []string {
	return []string{
		r.Name,
		strings.Join(r.Ingredients, ListSeparator),
		strings.Join(r.Steps, ListSeparator),
		r.Type,
		r.Difficulty,
		r.Time,
		r.Image,
	}
}

// WriteCSV writes the dataset as UTF-8 CSV with a byte order mark so spreadsheet apps detect Thai text
func WriteCSV(w io.Writer, recipes []crawler.Recipe) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range recipes {
		if err := cw.Write(Row(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the dataset as a single-sheet workbook
func WriteXLSX(w io.Writer, recipes []crawler.Recipe) error {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return err
	}
	if err := sw.SetRow("A1", toCells(Header)); err != nil {
		return err
	}
	for i, r := range recipes {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, toCells(Row(r))); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}

// WriteFile writes the dataset to path, choosing XLSX for .xlsx files and CSV otherwise
func WriteFile(path string, recipes []crawler.Recipe) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		err = WriteXLSX(out, recipes)
	} else {
		err = WriteCSV(out, recipes)
	}
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
