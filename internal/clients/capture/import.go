package capture

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"salescrm_backend/internal/clients/transport"
	"salescrm_backend/platform/apperr"

	"github.com/google/uuid"
)

const maxImportRows = 1000

// ParseImportCSV reads a bulk-import file. Expected header:
// name,contact[,city][,desired_product]. Column order follows the header.
func ParseImportCSV(data []byte) ([]transport.ImportRow, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, apperr.Validation("import file is empty or not valid CSV")
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	nameIdx, okName := cols["name"]
	contactIdx, okContact := cols["contact"]
	if !okName || !okContact {
		return nil, apperr.Validation("import file must have name and contact columns")
	}

	field := func(record []string, idx int, ok bool) string {
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}
	cityIdx, okCity := cols["city"]
	productIdx, okProduct := cols["desired_product"]

	rows := make([]transport.ImportRow, 0)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperr.Validation("import file is not valid CSV")
		}
		rows = append(rows, transport.ImportRow{
			Name:           field(record, nameIdx, true),
			Contact:        field(record, contactIdx, true),
			City:           field(record, cityIdx, okCity),
			DesiredProduct: field(record, productIdx, okProduct),
		})
		if len(rows) > maxImportRows {
			return nil, apperr.Validation(fmt.Sprintf("import file exceeds %d rows", maxImportRows))
		}
	}
	return rows, nil
}

// Import runs every row through the same ownership resolution as a single
// capture, so the 30-day transfer rule applies to bulk loads too. Row
// failures are reported per row; they do not abort the rest of the file.
func (s *Service) Import(ctx context.Context, rows []transport.ImportRow, sellerID uuid.UUID, fileName string, raw []byte) (transport.ImportReport, error) {
	if len(rows) == 0 {
		return transport.ImportReport{}, apperr.Validation("import file has no data rows")
	}

	report := transport.ImportReport{Rows: make([]transport.ImportRowResult, 0, len(rows))}
	for i, row := range rows {
		result, err := s.Capture(ctx, transport.CaptureClientRequest{
			Name:           row.Name,
			Contact:        row.Contact,
			City:           row.City,
			DesiredProduct: row.DesiredProduct,
		}, sellerID)
		if err != nil {
			report.Skipped++
			report.Rows = append(report.Rows, transport.ImportRowResult{
				Row:     i + 1,
				Outcome: "skipped",
				Error:   err.Error(),
			})
			continue
		}

		switch result.Outcome {
		case transport.OutcomeCreated:
			report.Created++
		case transport.OutcomeTransferred:
			report.Transferred++
		}
		report.Rows = append(report.Rows, transport.ImportRowResult{Row: i + 1, Outcome: result.Outcome})
	}

	if s.archive != nil && len(raw) > 0 {
		name := fileName
		if name == "" {
			name = fmt.Sprintf("import-%s.csv", time.Now().UTC().Format("20060102-150405"))
		}
		key, err := s.archive.Archive(ctx, name, "text/csv", raw)
		if err == nil {
			report.ArchiveKey = key
		}
		// Archive failures are deliberately non-fatal; the rows are already
		// persisted.
	}

	return report, nil
}
