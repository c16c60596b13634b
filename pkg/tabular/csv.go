package tabular

import (
	"bytes"
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"github.com/lakeferry/lakeferry/pkg/errors"
)

// ContentType is the MIME type of encoded payloads.
const ContentType = "text/csv"

// EncodeCSV serializes the batch as UTF-8 CSV: one header row naming
// the batch's columns, then one row per record with absent fields
// encoded as empty strings. Callers filter zero-row and zero-column
// batches upstream; encoding one here yields a header-only or empty
// payload rather than an error.
func EncodeCSV(b *Batch) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(b.columns); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to write CSV header")
	}

	row := make([]string, len(b.columns))
	for _, rec := range b.rows {
		for i, col := range b.columns {
			value, ok := rec[col]
			if !ok {
				row[i] = ""
				continue
			}
			s, err := formatValue(value)
			if err != nil {
				return nil, err
			}
			row[i] = s
		}
		if err := w.Write(row); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to write CSV row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to flush CSV payload")
	}
	return buf.Bytes(), nil
}

// formatValue renders one cell using stable, locale-independent
// representations: strconv for scalars, RFC 3339 UTC for times, JSON
// for nested documents and arrays.
func formatValue(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.FormatInt(int64(v), 10), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano), nil
	case []byte:
		return base64.StdEncoding.EncodeToString(v), nil
	case map[string]interface{}, []interface{}:
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", errors.Wrap(err, errors.ErrorTypeData, "failed to encode nested value")
		}
		return string(encoded), nil
	default:
		return fmt.Sprintf("%v", v), nil
	}
}
