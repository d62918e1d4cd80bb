// Package pdfinfo reads structural metadata from raw PDF bytes locally, so
// upload never spends completion tokens on something a parser can answer.
package pdfinfo

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

type Counter struct{}

func NewCounter() *Counter {
	return &Counter{}
}

func (c *Counter) CountPages(data []byte) (int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	return reader.NumPage(), nil
}
