package services

import (
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/edupaper/authoring-service/internal/models"
)

// ContentTypes flags which content slots a question actually carries so
// clients can pick a renderer without probing each field.
type ContentTypes struct {
	HasText  bool `json:"has_text"`
	HasLatex bool `json:"has_latex"`
	HasTable bool `json:"has_table"`
	HasImage bool `json:"has_image"`
}

// TableData is the parsed form of the stored table document.
type TableData struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// QuestionView is the normalized read model for a question: raw content
// fields plus parsed table data, a ready-to-embed HTML table and content
// flags. SubQuestions is always non-nil for top-level views.
type QuestionView struct {
	ID             uint                    `json:"id"`
	Number         *string                 `json:"number"`
	Description    *string                 `json:"description"`
	Text           *string                 `json:"text"`
	Latex          *string                 `json:"latex"`
	TableData      *TableData              `json:"table_data"`
	TableHTML      *string                 `json:"table_html"`
	ImageURL       *string                 `json:"image_url"`
	Difficulty     models.DifficultyLevel  `json:"difficulty"`
	Marks          *int                    `json:"marks"`
	Type           models.QuestionType     `json:"type"`
	CognitiveLevel *models.CognitiveLevel  `json:"cognitive_level"`
	Memo           *string                 `json:"memo"`
	TopicID        *uint                   `json:"topic_id"`
	ParentID       *uint                   `json:"parent_id"`
	Topic          *models.Topic           `json:"topic,omitempty"`
	CreatedBy      string                  `json:"created_by"`
	ContentTypes   ContentTypes            `json:"content_types"`
	SubQuestions   []QuestionView          `json:"sub_questions,omitempty"`
}

// ContentNormalizer turns stored questions into QuestionViews. A corrupt
// table document degrades that one question's table to nil instead of
// failing the whole read.
type ContentNormalizer struct {
	logger *slog.Logger
}

func NewContentNormalizer(logger *slog.Logger) *ContentNormalizer {
	return &ContentNormalizer{logger: logger}
}

// Normalize builds the view for a single question. Table parsing failures
// are isolated: the view is still returned with TableData and TableHTML nil
// and HasTable false.
func (n *ContentNormalizer) Normalize(q *models.Question) QuestionView {
	view := QuestionView{
		ID:             q.ID,
		Number:         q.Number,
		Description:    q.Description,
		Text:           q.Text,
		Latex:          q.Latex,
		ImageURL:       q.ImageURL,
		Difficulty:     q.Difficulty,
		Marks:          q.Marks,
		Type:           q.Type,
		CognitiveLevel: q.CognitiveLevel,
		Memo:           q.Memo,
		TopicID:        q.TopicID,
		ParentID:       q.ParentID,
		Topic:          q.Topic,
		CreatedBy:      q.CreatedBy,
	}

	if len(q.TableData) > 0 {
		table, err := parseTableData(q.TableData)
		if err != nil {
			n.logger.Warn("corrupt table data, degrading question view",
				"question_id", q.ID,
				"error", err)
		} else {
			view.TableData = table
			tableHTML := formatTableToHTML(table)
			view.TableHTML = &tableHTML
		}
	}

	view.ContentTypes = ContentTypes{
		HasText:  q.Text != nil && *q.Text != "",
		HasLatex: q.Latex != nil && *q.Latex != "",
		HasTable: view.TableData != nil,
		HasImage: q.ImageURL != nil && *q.ImageURL != "",
	}

	return view
}

// NormalizeWithSubQuestions builds the parent view and attaches normalized
// sub-question views. The returned SubQuestions slice is never nil so
// clients always see a list.
func (n *ContentNormalizer) NormalizeWithSubQuestions(q *models.Question, subQuestions []*models.Question) QuestionView {
	view := n.Normalize(q)
	view.SubQuestions = make([]QuestionView, 0, len(subQuestions))
	for _, sq := range subQuestions {
		view.SubQuestions = append(view.SubQuestions, n.Normalize(sq))
	}
	return view
}

func parseTableData(raw []byte) (*TableData, error) {
	// Imported rows sometimes carry the table double-encoded: a JSON string
	// whose content is the {headers, rows} document. Unwrap once before
	// treating the value as corrupt.
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		raw = []byte(encoded)
	}

	var table TableData
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("table data is not a valid {headers, rows} document: %w", err)
	}
	if len(table.Headers) == 0 {
		return nil, fmt.Errorf("table data has no headers")
	}
	return &table, nil
}

// formatTableToHTML renders the parsed table as an HTML fragment. Cell
// values are escaped; authored content is data here, not markup.
func formatTableToHTML(table *TableData) string {
	var b strings.Builder
	b.WriteString("<table class=\"question-table\">\n")

	b.WriteString("  <thead>\n    <tr>\n")
	for _, header := range table.Headers {
		b.WriteString("      <th>" + html.EscapeString(header) + "</th>\n")
	}
	b.WriteString("    </tr>\n  </thead>\n")

	b.WriteString("  <tbody>\n")
	for _, row := range table.Rows {
		b.WriteString("    <tr>\n")
		for _, cell := range row {
			b.WriteString("      <td>" + html.EscapeString(cell) + "</td>\n")
		}
		b.WriteString("    </tr>\n")
	}
	b.WriteString("  </tbody>\n</table>")

	return b.String()
}
