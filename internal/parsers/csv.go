package parsers

import (
	"bytes"
	"encoding/csv"
	"io"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decoder wraps r so that it yields UTF-8 without a byte order mark
func decoder(r io.Reader, enc Encoding) io.Reader {
	switch enc {
	case EncodingLatin1:
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	case EncodingWindows:
		return transform.NewReader(r, charmap.Windows1252.NewDecoder())
	default:
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	}
}

func readCSV(r io.Reader, cfg *LoadConfig) ([][]string, error) {
	reader := csv.NewReader(decoder(r, cfg.Encoding))
	configureReader(reader, cfg)

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// configureReader sets up the CSV reader with our configuration
func configureReader(reader *csv.Reader, cfg *LoadConfig) {
	reader.Comma = cfg.Delimiter
	if reader.Comma == 0 {
		reader.Comma = ','
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
}

// SniffDelimiter guesses the delimiter from the first line of sample
func SniffDelimiter(sample []byte) rune {
	line := sample
	if i := bytes.IndexByte(sample, '\n'); i >= 0 {
		line = sample[:i]
	}

	best, bestCount := ',', 0
	for _, d := range []rune{',', ';', '\t', '|'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}
