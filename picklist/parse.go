package picklist

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kbukum/liquidkit/errors"
)

// Recognized column headers.
const (
	ColumnSource      = "Source Well"
	ColumnDestination = "Destination Well"
	ColumnVolume      = "Volume"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Options control how rows become instructions.
type Options struct {
	// FixedVolume is used for rows when the file has no Volume column.
	FixedVolume float64
	// RequireSource makes Source Well a required column.
	RequireSource bool
	TipPolicy     TipPolicy
	AirGap        float64
	BlowOut       bool
	BlowOutAt     BlowOutAt
}

// Parse reads a pick-list from r.
func Parse(name string, r io.Reader, opts Options) (*PickList, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Storage("read", name, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.Schema(ColumnDestination, 0, "pick-list is empty")
	}
	if err != nil {
		return nil, errors.Schema("header", 0, err.Error())
	}
	headerLine, _ := cr.FieldPos(0)
	cols := indexColumns(header)

	dest, ok := cols[strings.ToLower(ColumnDestination)]
	if !ok {
		return nil, errors.Schema(ColumnDestination, 0, "column is missing")
	}
	src, hasSource := cols[strings.ToLower(ColumnSource)]
	if opts.RequireSource && !hasSource {
		return nil, errors.Schema(ColumnSource, 0, "column is missing")
	}
	vol, hasVolume := cols[strings.ToLower(ColumnVolume)]
	if !hasVolume && !(opts.FixedVolume > 0) {
		return nil, errors.Schema(ColumnVolume, 0, "column is missing and no fixed volume is set")
	}

	policy := opts.TipPolicy
	if policy == "" {
		policy = Reuse
	}

	// Rows count file lines after the header, so blank lines keep their number.
	var items []Instruction
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			row := 0
			if pe, ok := err.(*csv.ParseError); ok {
				row = pe.StartLine - headerLine
			}
			return nil, errors.Schema("row", row, err.Error())
		}
		line, _ := cr.FieldPos(0)
		row := line - headerLine
		if blank(rec) {
			continue
		}

		it := Instruction{
			Row:       row,
			TipPolicy: policy,
			AirGap:    opts.AirGap,
			BlowOut:   opts.BlowOut,
			BlowOutAt: opts.BlowOutAt,
		}
		it.Destination = field(rec, dest)
		if it.Destination == "" {
			return nil, errors.Schema(ColumnDestination, row, "value is required")
		}
		if hasSource {
			it.Source = field(rec, src)
		}
		if opts.RequireSource && it.Source == "" {
			return nil, errors.Schema(ColumnSource, row, "value is required")
		}
		if hasVolume {
			v, err := parseVolume(field(rec, vol))
			if err != nil {
				return nil, errors.Schema(ColumnVolume, row, err.Error())
			}
			it.Volume = v
		} else {
			it.Volume = opts.FixedVolume
		}
		items = append(items, it)
	}
	return New(name, items...)
}

// ParseFile reads a pick-list from a local file.
func ParseFile(path string, opts Options) (*PickList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Storage("open", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only
	return Parse(filepath.Base(path), f, opts)
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	return cols
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func parseVolume(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("value is required")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	if v <= 0 {
		return 0, fmt.Errorf("volume must be greater than 0, got %s", s)
	}
	return v, nil
}
