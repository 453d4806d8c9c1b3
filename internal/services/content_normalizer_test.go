package services

import (
	"log/slog"
	"testing"

	"github.com/edupaper/authoring-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func testLogger() *slog.Logger {
	return slog.Default()
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func uintPtr(u uint) *uint    { return &u }

func TestNormalize_ContentFlags(t *testing.T) {
	n := NewContentNormalizer(testLogger())

	q := &models.Question{
		ID:         1,
		Text:       strPtr("What is 2+2?"),
		Latex:      strPtr("x^2"),
		ImageURL:   strPtr("https://cdn.example.com/diagram.png"),
		Difficulty: models.DifficultyEasy,
		Marks:      intPtr(5),
		Type:       models.ShortAnswer,
	}

	view := n.Normalize(q)

	assert.True(t, view.ContentTypes.HasText)
	assert.True(t, view.ContentTypes.HasLatex)
	assert.True(t, view.ContentTypes.HasImage)
	assert.False(t, view.ContentTypes.HasTable)
	assert.Nil(t, view.TableData)
	assert.Nil(t, view.TableHTML)
}

func TestNormalize_EmptyStringsAreAbsent(t *testing.T) {
	n := NewContentNormalizer(testLogger())

	q := &models.Question{
		ID:         2,
		Text:       strPtr(""),
		Latex:      strPtr(""),
		Difficulty: models.DifficultyMedium,
		Marks:      intPtr(3),
		Type:       models.Essay,
	}

	view := n.Normalize(q)

	assert.False(t, view.ContentTypes.HasText)
	assert.False(t, view.ContentTypes.HasLatex)
	assert.False(t, view.ContentTypes.HasImage)
}

func TestNormalize_TableData(t *testing.T) {
	n := NewContentNormalizer(testLogger())

	q := &models.Question{
		ID:         3,
		TableData:  datatypes.JSON([]byte(`{"headers":["Year","Population"],"rows":[["2020","100"],["2021","140"]]}`)),
		Difficulty: models.DifficultyHard,
		Marks:      intPtr(10),
		Type:       models.MultipleChoice,
	}

	view := n.Normalize(q)

	require.NotNil(t, view.TableData)
	assert.Equal(t, []string{"Year", "Population"}, view.TableData.Headers)
	assert.Len(t, view.TableData.Rows, 2)
	assert.True(t, view.ContentTypes.HasTable)

	require.NotNil(t, view.TableHTML)
	assert.Contains(t, *view.TableHTML, "<th>Year</th>")
	assert.Contains(t, *view.TableHTML, "<td>140</td>")
}

func TestNormalize_StringEncodedTableData(t *testing.T) {
	n := NewContentNormalizer(testLogger())

	q := &models.Question{
		ID:         4,
		TableData:  datatypes.JSON([]byte(`"{\"headers\":[\"H1\"],\"rows\":[[\"c1\"]]}"`)),
		Difficulty: models.DifficultyEasy,
		Marks:      intPtr(2),
		Type:       models.MultipleChoice,
	}

	view := n.Normalize(q)

	require.NotNil(t, view.TableData)
	assert.Equal(t, []string{"H1"}, view.TableData.Headers)
	assert.Equal(t, [][]string{{"c1"}}, view.TableData.Rows)
	assert.True(t, view.ContentTypes.HasTable)
}

func TestNormalize_TableHTMLEscapesCells(t *testing.T) {
	n := NewContentNormalizer(testLogger())

	q := &models.Question{
		ID:         4,
		TableData:  datatypes.JSON([]byte(`{"headers":["<script>"],"rows":[["a < b"]]}`)),
		Difficulty: models.DifficultyEasy,
		Marks:      intPtr(1),
		Type:       models.ShortAnswer,
	}

	view := n.Normalize(q)

	require.NotNil(t, view.TableHTML)
	assert.NotContains(t, *view.TableHTML, "<script>")
	assert.Contains(t, *view.TableHTML, "&lt;script&gt;")
	assert.Contains(t, *view.TableHTML, "a &lt; b")
}

func TestNormalize_CorruptTableDegradesQuietly(t *testing.T) {
	n := NewContentNormalizer(testLogger())

	q := &models.Question{
		ID:         5,
		Text:       strPtr("Refer to the table below."),
		TableData:  datatypes.JSON([]byte(`{"headers": not json`)),
		Difficulty: models.DifficultyMedium,
		Marks:      intPtr(4),
		Type:       models.ShortAnswer,
	}

	view := n.Normalize(q)

	// The question still comes through, only the table is dropped.
	assert.Nil(t, view.TableData)
	assert.Nil(t, view.TableHTML)
	assert.False(t, view.ContentTypes.HasTable)
	assert.True(t, view.ContentTypes.HasText)
	assert.Equal(t, uint(5), view.ID)
}

func TestNormalizeWithSubQuestions_EmptyListNotNil(t *testing.T) {
	n := NewContentNormalizer(testLogger())

	parent := &models.Question{
		ID:         6,
		Difficulty: models.DifficultyEasy,
		Marks:      intPtr(2),
		Type:       models.TrueFalse,
	}

	view := n.NormalizeWithSubQuestions(parent, nil)

	require.NotNil(t, view.SubQuestions)
	assert.Empty(t, view.SubQuestions)
}

func TestNormalizeWithSubQuestions_KeepsOrder(t *testing.T) {
	n := NewContentNormalizer(testLogger())

	parent := &models.Question{ID: 7, Difficulty: models.DifficultyMedium, Marks: intPtr(0), Type: models.Essay}
	subs := []*models.Question{
		{ID: 8, Number: strPtr("1"), ParentID: uintPtr(7), Difficulty: models.DifficultyMedium, Marks: intPtr(3), Type: models.ShortAnswer},
		{ID: 9, Number: strPtr("2"), ParentID: uintPtr(7), Difficulty: models.DifficultyMedium, Marks: intPtr(5), Type: models.ShortAnswer},
	}

	view := n.NormalizeWithSubQuestions(parent, subs)

	require.Len(t, view.SubQuestions, 2)
	assert.Equal(t, uint(8), view.SubQuestions[0].ID)
	assert.Equal(t, uint(9), view.SubQuestions[1].ID)
}
