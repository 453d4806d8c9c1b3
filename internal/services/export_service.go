package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/edupaper/authoring-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

// ExportService writes assessment results to spreadsheet form for teachers
// who work outside the system.
type ExportService interface {
	ExportAssessmentResults(ctx context.Context, assessmentID uint, actor Actor) ([]byte, error)
}

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

func (s *exportService) ExportAssessmentResults(ctx context.Context, assessmentID uint, actor Actor) ([]byte, error) {
	s.logger.Info("Exporting assessment results", "assessment_id", assessmentID, "user_id", actor.ID)

	assessment, err := s.repo.Assessment().GetByID(ctx, assessmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	if assessment.AssignedBy != actor.ID && !actor.IsAdmin() {
		return nil, NewPermissionError(actor.ID, assessmentID, "assessment", "export_results", "not owner")
	}

	results, err := s.repo.Assessment().GetStudentAssessments(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment results: %w", err)
	}
	stats := ComputeStatistics(results)

	f := excelize.NewFile()
	sheetName := "Results"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	// Write headers
	headers := []string{
		"Student ID", "Student Name", "Grade", "Status", "Score", "Total Marks", "Completed At",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	// Write result rows
	for rowIndex, result := range results {
		row := []interface{}{result.StudentID}

		if result.Student != nil {
			row = append(row, result.Student.Name, result.Student.Grade)
		} else {
			row = append(row, "", "")
		}

		row = append(row, string(result.Status))

		if result.Score != nil {
			row = append(row, *result.Score)
		} else {
			row = append(row, "")
		}
		if result.TotalMarks != nil {
			row = append(row, *result.TotalMarks)
		} else {
			row = append(row, "")
		}
		if result.CompletedAt != nil {
			row = append(row, result.CompletedAt.Format("2006-01-02 15:04:05"))
		} else {
			row = append(row, "")
		}

		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	// Statistics on a second sheet
	statsSheet := "Statistics"
	if _, err := f.NewSheet(statsSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	statRows := []struct {
		label string
		value interface{}
	}{
		{"Total Students", stats.TotalStudents},
		{"Completed", stats.CompletedCount},
		{"Completion Rate (%)", stats.CompletionRate},
		{"Average Score", stats.AverageScore},
		{"Highest Score", stats.HighestScore},
		{"Lowest Score", stats.LowestScore},
	}
	for i, stat := range statRows {
		f.SetCellValue(statsSheet, fmt.Sprintf("A%d", i+1), stat.label)
		f.SetCellValue(statsSheet, fmt.Sprintf("B%d", i+1), stat.value)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}
