package export

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/core/document"
	"github.com/joseph-ayodele/docextract/internal/repository"
)

// SummarySheet lists one line per document.
const SummarySheet = "Documents"

// Row is one document's outcome as exported.
type Row struct {
	DocumentID string
	Filename   string
	Status     constants.DocumentStatus
	Result     *document.Result
}

// Service is a tiny façade over the document repository that produces XLSX bytes.
type Service struct {
	docs   repository.DocumentRepository
	logger *slog.Logger
}

func NewService(docs repository.DocumentRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{docs: docs, logger: logger}
}

// ExportApplicationXLSX returns a workbook for every document of applicationID.
func (s *Service) ExportApplicationXLSX(ctx context.Context, applicationID string) ([]byte, error) {
	start := time.Now()
	docs, err := s.docs.List(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	rows := RowsFromDocuments(docs)
	buf, err := ResultsXLSX(rows)
	if err != nil {
		return nil, err
	}
	s.logger.Info("export.xlsx.ok",
		"application_id", applicationID,
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf, nil
}

func RowsFromDocuments(docs []*repository.Document) []Row {
	rows := make([]Row, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, Row{DocumentID: d.ID.String(), Filename: d.Filename, Status: d.Status, Result: d.Result})
	}
	return rows
}

// ResultsXLSX builds a workbook with a summary sheet and one sheet per
// document type holding field, value and confidence columns.
func ResultsXLSX(rows []Row) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, err
	}
	writeRow(f, SummarySheet, 1, "Document ID", "File", "Status", "Type", "Provider", "Success", "Confidence", "Level", "Error")

	perType := map[constants.DocumentType]int{}
	line := 2
	for _, r := range rows {
		res := r.Result
		if res == nil {
			writeRow(f, SummarySheet, line, r.DocumentID, r.Filename, string(r.Status))
			line++
			continue
		}
		writeRow(f, SummarySheet, line,
			r.DocumentID, r.Filename, string(r.Status), string(res.DocumentType), res.Provider,
			res.Success, res.OverallConfidence, res.ConfidenceLevel, truncate(res.Error, 140))
		line++

		if !res.Success || res.Extraction == nil {
			continue
		}
		sheet := string(res.Extraction.Type)
		if res.Extraction.Type == "" {
			sheet = string(constants.Other)
		}
		next, ok := perType[constants.DocumentType(sheet)]
		if !ok {
			if _, err := f.NewSheet(sheet); err != nil {
				return nil, err
			}
			writeRow(f, sheet, 1, "Document ID", "File", "Field", "Value", "Confidence", "Raw Text")
			_ = f.SetColWidth(sheet, "A", "A", 38)
			_ = f.SetColWidth(sheet, "B", "B", 28)
			_ = f.SetColWidth(sheet, "C", "C", 28)
			_ = f.SetColWidth(sheet, "D", "D", 32)
			_ = f.SetColWidth(sheet, "F", "F", 48)
			next = 2
		}
		fields := res.Extraction.Fields()
		names := make([]string, 0, len(fields))
		for n := range fields {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			fl := fields[n]
			var value any = ""
			if fl.IsSet() {
				value = fl.Value
			}
			writeRow(f, sheet, next, r.DocumentID, r.Filename, n, value, fl.Confidence, truncate(fl.RawText, 140))
			next++
		}
		perType[constants.DocumentType(sheet)] = next
	}

	_ = f.SetColWidth(SummarySheet, "A", "A", 38)
	_ = f.SetColWidth(SummarySheet, "B", "B", 28)
	_ = f.SetColWidth(SummarySheet, "C", "F", 14)
	_ = f.SetColWidth(SummarySheet, "I", "I", 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
