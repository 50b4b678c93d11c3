package service

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Document 表格型导出文档
type Document struct {
	Title   string
	Sheet   string
	Headers []string
	Rows    [][]string
}

// DocumentRenderer 将 Document 渲染为具体文件格式
type DocumentRenderer interface {
	Render(doc *Document) ([]byte, error)
	ContentType() string
	Extension() string
}

type xlsxRenderer struct{}

// NewXLSXRenderer 基于 excelize 的 .xlsx 渲染器
func NewXLSXRenderer() DocumentRenderer {
	return xlsxRenderer{}
}

func (xlsxRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (xlsxRenderer) Extension() string { return ".xlsx" }

// Render 第 1 行为合并标题，第 2 行为表头，数据从第 3 行开始
func (xlsxRenderer) Render(doc *Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := doc.Sheet
	if sheet == "" {
		sheet = "Sheet1"
	}
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if sheet != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}

	cols := len(doc.Headers)
	if cols == 0 {
		cols = 1
	}
	lastCol := colName(cols - 1)
	f.SetColWidth(sheet, "A", lastCol, 16)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	// 标题行
	if err := f.SetCellValue(sheet, "A1", doc.Title); err != nil {
		return nil, err
	}
	if cols > 1 {
		f.MergeCell(sheet, "A1", cell(lastCol, 1))
	}
	f.SetCellStyle(sheet, "A1", cell(lastCol, 1), headerStyle)

	// 表头
	for i, h := range doc.Headers {
		f.SetCellValue(sheet, cell(colName(i), 2), h)
	}
	if len(doc.Headers) > 0 {
		f.SetCellStyle(sheet, "A2", cell(lastCol, 2), headerStyle)
	}

	// 数据行
	for r, row := range doc.Rows {
		for c, v := range row {
			f.SetCellValue(sheet, cell(colName(c), r+3), v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("写入 Excel 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// colName 0 起始的列序号转列名
func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
