// Package export выгружает журнал подтверждений в Excel.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/ivanoskov/premium_access_bot/internal/model"
	"github.com/xuri/excelize/v2"
)

const SheetName = "Tracker"

// FileName возвращает имя файла выгрузки на указанную дату
func FileName(now time.Time) string {
	return fmt.Sprintf("gift_card_tracker_%s.xlsx", now.Format("20060102"))
}

// TrackerWorkbook строит книгу с одной строкой на запись журнала
func TrackerWorkbook(records []model.ApprovalRecord) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}

	headers := []string{"No", "User ID", "Status", "Created", "Updated"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(SheetName, cell, h)
	}

	styleHeader, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4F46E5"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}
	f.SetCellStyle(SheetName, "A1", "E1", styleHeader)

	statusStyles := make(map[model.Status]int)
	for status, color := range map[model.Status]string{
		model.StatusPending:     "#F59E0B",
		model.StatusApproved:    "#10B981",
		model.StatusDisapproved: "#EF4444",
	} {
		id, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Color: color}})
		if err != nil {
			return nil, err
		}
		statusStyles[status] = id
	}

	for i, rec := range records {
		row := i + 2
		f.SetCellValue(SheetName, fmt.Sprintf("A%d", row), i+1)
		f.SetCellValue(SheetName, fmt.Sprintf("B%d", row), rec.UserID)
		f.SetCellValue(SheetName, fmt.Sprintf("C%d", row), rec.Status.Label())
		f.SetCellValue(SheetName, fmt.Sprintf("D%d", row), rec.CreatedAt.Format(time.DateTime))
		f.SetCellValue(SheetName, fmt.Sprintf("E%d", row), rec.UpdatedAt.Format(time.DateTime))

		if style, ok := statusStyles[rec.Status]; ok {
			cell := fmt.Sprintf("C%d", row)
			f.SetCellStyle(SheetName, cell, cell, style)
		}
	}

	f.SetColWidth(SheetName, "A", "A", 5)
	f.SetColWidth(SheetName, "B", "B", 16)
	f.SetColWidth(SheetName, "C", "C", 14)
	f.SetColWidth(SheetName, "D", "E", 20)

	return f.WriteToBuffer()
}
