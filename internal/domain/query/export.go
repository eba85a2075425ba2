package query

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

var (
	ErrUnknownFormat = errors.New("unknown export format")
)

type Format string

const (
	FormatCSV Format = "csv"
	FormatTSV Format = "tsv"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV, "":
		return FormatCSV, nil
	case FormatTSV:
		return FormatTSV, nil
	default:
		return "", ErrUnknownFormat
	}
}

func (f Format) ContentType() string {
	if f == FormatTSV {
		return "text/tab-separated-values; charset=utf-8"
	}
	return "text/csv; charset=utf-8"
}

func (f Format) Extension() string {
	if f == FormatTSV {
		return "tsv"
	}
	return "csv"
}

// WriteDelimited escribe header + rows. Solo formatea: no valida contenido.
func WriteDelimited(w io.Writer, f Format, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if f == FormatTSV {
		cw.Comma = '\t'
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}
