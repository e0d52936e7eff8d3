package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
)

// Diff compares two reports, ignoring their timestamps. It returns an ASCII
// rendering of the differences and whether there were any. Two runs of the
// same program from the same initial state produce no differences.
func Diff(a, b *Report, coloring bool) (string, bool, error) {
	left, err := stripped(a)
	if err != nil {
		return "", false, err
	}
	right, err := stripped(b)
	if err != nil {
		return "", false, err
	}

	delta, err := gojsondiff.New().Compare(left, right)
	if err != nil {
		return "", false, fmt.Errorf("failed to diff reports: %w", err)
	}
	if !delta.Modified() {
		return "", false, nil
	}

	var leftObj map[string]interface{}
	if err := json.Unmarshal(left, &leftObj); err != nil {
		return "", true, fmt.Errorf("failed to diff reports: %w", err)
	}

	f := formatter.NewAsciiFormatter(leftObj, formatter.AsciiFormatterConfig{
		ShowArrayIndex: true,
		Coloring:       coloring,
	})
	text, err := f.Format(delta)
	if err != nil {
		return "", true, fmt.Errorf("failed to format diff: %w", err)
	}

	return text, true, nil
}

func stripped(r *Report) ([]byte, error) {
	c := *r
	c.Timestamp = time.Time{}

	data, err := json.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return data, nil
}
