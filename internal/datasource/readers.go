package datasource

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/xuri/excelize/v2"
)

// readCSV reads a delimited file whose first record is the header. Files
// ending in .tsv are tab separated.
func readCSV(path string) ([]string, [][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(bufio.NewReader(file))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		r.Comma = '\t'
	}

	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("empty file")
	}
	header := all[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return header, all[1:], nil
}

// readJSON reads an array of flat objects. Columns appear in the order their
// keys are first seen; nested values are rejected.
func readJSON(path string) ([]string, [][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	dec := json.NewDecoder(bufio.NewReader(file))
	dec.UseNumber()

	if err := expectDelim(dec, '['); err != nil {
		return nil, nil, err
	}

	var (
		header  []string
		index   = make(map[string]int)
		objects []map[string]string
	)
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("parse json: %w", err)
		}
		if d, ok := tok.(json.Delim); ok && d == ']' {
			break
		}
		if d, ok := tok.(json.Delim); !ok || d != '{' {
			return nil, nil, fmt.Errorf("parse json: record %d is not an object", len(objects)+1)
		}
		obj, err := readObject(dec)
		if err != nil {
			return nil, nil, fmt.Errorf("parse json: record %d: %w", len(objects)+1, err)
		}
		for _, kv := range obj {
			if _, ok := index[kv[0]]; !ok {
				index[kv[0]] = len(header)
				header = append(header, kv[0])
			}
		}
		m := make(map[string]string, len(obj))
		for _, kv := range obj {
			m[kv[0]] = kv[1]
		}
		objects = append(objects, m)
	}

	records := make([][]string, len(objects))
	for i, obj := range objects {
		rec := make([]string, len(header))
		for key, v := range obj {
			rec[index[key]] = v
		}
		records[i] = rec
	}
	return header, records, nil
}

// readObject reads key/value pairs up to the closing brace, preserving order.
func readObject(dec *json.Decoder) ([][2]string, error) {
	var pairs [][2]string
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if d, ok := tok.(json.Delim); ok && d == '}' {
			return pairs, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		tok, err = dec.Token()
		if err != nil {
			return nil, err
		}
		value, err := scalarString(tok)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		pairs = append(pairs, [2]string{key, value})
	}
}

func scalarString(tok json.Token) (string, error) {
	switch v := tok.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	case json.Delim:
		return "", errors.New("nested values are not supported")
	default:
		return fmt.Sprint(v), nil
	}
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty file")
		}
		return fmt.Errorf("parse json: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("parse json: expected %q, got %v", want, tok)
	}
	return nil
}

// readXLSX reads a worksheet whose first row is the header. An empty sheet
// name selects the first sheet.
func readXLSX(path, sheet string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}
	if sheet == "" {
		sheet = sheets[0]
	}
	found := false
	for _, s := range sheets {
		if s == sheet {
			found = true
			break
		}
	}
	if !found {
		return nil, nil, fmt.Errorf("sheet %q not found (have %s)", sheet, strings.Join(sheets, ", "))
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet %s is empty", sheet)
	}
	return rows[0], rows[1:], nil
}
