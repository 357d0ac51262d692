// Package export writes chat query results to the object store as
// Parquet files so analysts can pull them into other tools.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"

	"github.com/reviewdesk/reviewdesk/internal/observability"
	"github.com/reviewdesk/reviewdesk/internal/schema"
	"github.com/reviewdesk/reviewdesk/internal/storage"
	"github.com/reviewdesk/reviewdesk/internal/store"
)

// record is one exported row. The row itself is kept as a JSON document
// keyed by column name, since every generated query has a different
// column set.
type record struct {
	Position int64  `parquet:"position"`
	RowJSON  string `parquet:"row_json"`
}

// Export describes one uploaded result set.
type Export struct {
	ObjectKey string
	RowCount  int
	Size      int64
}

type Exporter struct {
	objects storage.ObjectStore
	logger  *slog.Logger
	now     func() time.Time
	newKey  func() string
}

func New(objects storage.ObjectStore, logger *slog.Logger) *Exporter {
	return &Exporter{
		objects: objects,
		logger:  logger,
		now:     time.Now,
		newKey:  uuid.NewString,
	}
}

// Run encodes the result set and uploads it under
// <table>/<yyyy>/<mm>/<dd>/<uuid>.parquet.
func (e *Exporter) Run(ctx context.Context, table schema.Table, result store.Result) (Export, error) {
	if result.Empty() {
		return Export{}, fmt.Errorf("nothing to export: result set is empty")
	}

	data, err := encodeParquet(result)
	if err != nil {
		return Export{}, err
	}

	key := fmt.Sprintf("%s/%s/%s.parquet", table.Name, e.now().UTC().Format("2006/01/02"), e.newKey())
	info, err := e.objects.Put(ctx, key, bytes.NewReader(data), int64(len(data)), storage.PutOptions{
		ContentType: "application/vnd.apache.parquet",
	})
	if err != nil {
		return Export{}, fmt.Errorf("upload export %q: %w", key, err)
	}

	observability.AddExportedRows(len(result.Rows))
	e.logger.InfoContext(ctx, "result set exported",
		"table", table.Name, "object_key", info.Key, "rows", len(result.Rows), "bytes", info.Size)

	return Export{ObjectKey: info.Key, RowCount: len(result.Rows), Size: info.Size}, nil
}

func encodeParquet(result store.Result) ([]byte, error) {
	records := make([]record, 0, len(result.Rows))
	for position, row := range result.Rows {
		document := make(map[string]any, len(result.Columns))
		for i, column := range result.Columns {
			if i < len(row) {
				document[column] = row[i]
			}
		}
		encoded, err := json.Marshal(document)
		if err != nil {
			return nil, fmt.Errorf("encode row %d: %w", position, err)
		}
		records = append(records, record{Position: int64(position), RowJSON: string(encoded)})
	}

	buf := bytes.NewBuffer(nil)
	writer := parquet.NewGenericWriter[record](buf)
	if _, err := writer.Write(records); err != nil {
		return nil, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}
