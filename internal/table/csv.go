package table

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ReadCSV parses delimited text into a Table. name is used for reporting and, when it ends
// in ".tsv", selects tab as the default delimiter.
func ReadCSV(r io.Reader, name string, opt Options) (*Table, error) {
	br := bufio.NewReader(r)
	delim := opt.Delimiter
	if delim == 0 {
		if strings.HasSuffix(strings.ToLower(name), ".tsv") {
			delim = '\t'
		} else {
			first, err := br.Peek(sniffWindow(br))
			if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
				return nil, fmt.Errorf("sniff delimiter: %w", err)
			}
			delim = sniffDelimiter(string(first))
		}
	}
	cr := csv.NewReader(br)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comma = delim

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Table{Name: name}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) == 0 {
		return &Table{Name: name}, nil
	}
	// ReuseRecord recycles the backing array, so keep our own copy of the header.
	b := newBuilder(name, append([]string(nil), header...), opt)
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", b.rows+1, err)
		}
		b.add(rec)
	}
	return b.build(), nil
}

func sniffWindow(br *bufio.Reader) int {
	if n := br.Size(); n < 4096 {
		return n
	}
	return 4096
}

// sniffDelimiter counts candidate separators on the first line outside quotes.
func sniffDelimiter(sample string) rune {
	if i := strings.IndexByte(sample, '\n'); i >= 0 {
		sample = sample[:i]
	}
	counts := map[rune]int{}
	inQuote := false
	for _, ch := range sample {
		switch ch {
		case '"':
			inQuote = !inQuote
		case ',', ';', '\t':
			if !inQuote {
				counts[ch]++
			}
		}
	}
	best := ','
	for _, cand := range []rune{';', '\t'} {
		if counts[cand] > counts[best] {
			best = cand
		}
	}
	return best
}
