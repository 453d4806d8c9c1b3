package render

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/edupaper/authoring-service/internal/services"
	"github.com/go-pdf/fpdf"
)

const (
	pageMargin  = 15.0
	titleSize   = 18.0
	bodySize    = 12.0
	lineHeight  = 6.0
	headerGap   = 4.0
	questionGap = 5.0
)

// PDFRenderer walks a resolved paper and emits a paginated A4 document:
// centered heading and metadata, instructions, one block per question in
// paper order with sub-questions directly after their parent, and a bold
// right-aligned total as the last element. Markup content is emitted
// verbatim in a fixed-width face, never typeset.
type PDFRenderer struct {
	logger *slog.Logger
}

func NewPDFRenderer(logger *slog.Logger) *PDFRenderer {
	return &PDFRenderer{logger: logger}
}

// RenderPaper writes the paper as a PDF to w. Page breaks are handled by
// the document engine; a question block may split across pages.
//
// The printed total sums the top-level entry marks only. Sub-question
// blocks show their own mark headers, but a parent's marks are taken to
// subsume its sub-questions, so they never accumulate into the total.
func (r *PDFRenderer) RenderPaper(paper *services.PaperView, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// Heading block
	pdf.SetFont("Helvetica", "", titleSize)
	pdf.MultiCell(0, 10, tr(paper.Title), "", "C", false)
	pdf.Ln(headerGap)

	pdf.SetFont("Helvetica", "", bodySize)
	if paper.Subject != nil {
		pdf.CellFormat(0, lineHeight, tr(fmt.Sprintf("Subject: %s", paper.Subject.Name)), "", 1, "C", false, 0, "")
	}
	if paper.Grade != nil {
		pdf.CellFormat(0, lineHeight, tr(fmt.Sprintf("Grade: %s", paper.Grade.Level)), "", 1, "C", false, 0, "")
	}
	if paper.AssessmentType != nil {
		pdf.CellFormat(0, lineHeight, tr(fmt.Sprintf("Type: %s", *paper.AssessmentType)), "", 1, "C", false, 0, "")
	}
	pdf.Ln(headerGap)

	if paper.Instructions != nil && *paper.Instructions != "" {
		pdf.SetFont("Helvetica", "B", bodySize)
		pdf.CellFormat(0, lineHeight, "Instructions:", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", bodySize)
		pdf.MultiCell(0, lineHeight, tr(*paper.Instructions), "", "L", false)
		pdf.Ln(headerGap)
	}

	// Question blocks, running total accumulated as marks are emitted.
	totalMarks := 0
	for i, entry := range paper.Questions {
		totalMarks += markValue(entry.Marks)
		r.renderQuestion(pdf, tr, &entry.QuestionView, entry.QuestionView.Number, i+1)

		for j := range entry.SubQuestions {
			sub := &entry.SubQuestions[j]
			r.renderQuestion(pdf, tr, sub, sub.Number, j+1)
		}

		pdf.Ln(questionGap)
	}

	// The total line is always the last content element.
	pdf.Ln(questionGap)
	pdf.SetFont("Helvetica", "B", bodySize)
	pdf.CellFormat(0, lineHeight, tr(fmt.Sprintf("Total: %d marks", totalMarks)), "", 1, "R", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render paper %d: %w", paper.ID, err)
	}

	r.logger.Info("Rendered paper PDF",
		"paper_id", paper.ID,
		"questions", len(paper.Questions),
		"total_marks", totalMarks)
	return nil
}

// renderQuestion emits one question block: header line, then each present
// content slot in a fixed order.
func (r *PDFRenderer) renderQuestion(pdf *fpdf.Fpdf, tr func(string) string, q *services.QuestionView, number *string, position int) {
	label := fmt.Sprintf("%d", position)
	if number != nil && *number != "" {
		label = *number
	}

	pdf.SetFont("Helvetica", "B", bodySize)
	pdf.CellFormat(0, lineHeight, tr(fmt.Sprintf("Question %s [%d marks]", label, markValue(q.Marks))), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", bodySize)

	if q.Description != nil && *q.Description != "" {
		pdf.MultiCell(0, lineHeight, tr(*q.Description), "", "L", false)
	}
	if q.Text != nil && *q.Text != "" {
		pdf.MultiCell(0, lineHeight, tr(*q.Text), "", "L", false)
	}
	if q.Latex != nil && *q.Latex != "" {
		// Verbatim markup; typesetting belongs to a dedicated renderer.
		pdf.SetFont("Courier", "", bodySize)
		pdf.MultiCell(0, lineHeight, tr(*q.Latex), "", "L", false)
		pdf.SetFont("Helvetica", "", bodySize)
	}
	if q.TableData != nil {
		r.renderTable(pdf, tr, q.TableData)
	}

	pdf.Ln(headerGap)
}

// renderTable draws the headers+rows matrix as a bordered grid sized to
// the printable width.
func (r *PDFRenderer) renderTable(pdf *fpdf.Fpdf, tr func(string) string, table *services.TableData) {
	if len(table.Headers) == 0 {
		return
	}

	pageWidth, _ := pdf.GetPageSize()
	colWidth := (pageWidth - 2*pageMargin) / float64(len(table.Headers))

	pdf.SetFont("Helvetica", "B", bodySize-2)
	for _, header := range table.Headers {
		pdf.CellFormat(colWidth, lineHeight, tr(header), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", bodySize-2)
	for _, row := range table.Rows {
		for _, cell := range row {
			pdf.CellFormat(colWidth, lineHeight, tr(cell), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.SetFont("Helvetica", "", bodySize)
}

func markValue(marks *int) int {
	if marks == nil {
		return 0
	}
	return *marks
}
