package report

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bandcheck/internal/feedback"
	"bandcheck/pkg/platform/sentinel"
)

// writeTemplate writes a plain A4-proportioned page image to a temp file and
// returns its path.
func writeTemplate(t *testing.T) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 595, 842))
	for y := 0; y < 842; y++ {
		for x := 0; x < 595; x++ {
			img.Set(x, y, color.White)
		}
	}

	path := filepath.Join(t.TempDir(), "template.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func sampleReport() feedback.Report {
	return feedback.Report{
		Criteria: []feedback.CriterionScore{
			{Label: feedback.CriterionTaskAchievement, Band: 7, Comment: "The essay addresses the task fully."},
			{Label: feedback.CriterionCoherence, Band: 6, Comment: "Paragraphing is mostly logical."},
			{Label: feedback.CriterionVocabulary, Band: 8, Comment: "A wide range of vocabulary is used."},
			{Label: feedback.CriterionGrammar, Band: 7, Comment: "Complex structures appear with some errors."},
		},
		OverallComment:  "A strong response overall with room to improve cohesion.",
		OverallScore:    7,
		HasOverallScore: true,
	}
}

func TestRenderProducesPNG(t *testing.T) {
	r := NewRenderer(writeTemplate(t), "")

	out, err := r.Render(sampleReport())
	require.NoError(t, err)
	require.NotEmpty(t, out)

	img, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 595, img.Bounds().Dx())
	assert.Equal(t, 842, img.Bounds().Dy())
}

func TestRenderIsDeterministic(t *testing.T) {
	r := NewRenderer(writeTemplate(t), "")

	first, err := r.Render(sampleReport())
	require.NoError(t, err)
	second, err := r.Render(sampleReport())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// Text past the third wrapped line of a criterion comment never reaches the
// page: two reports whose comments differ only beyond that point render to
// identical bytes, while a difference on the first line does not.
func TestRenderTruncatesCommentAfterThreeLines(t *testing.T) {
	r := NewRenderer(writeTemplate(t), "")

	// Enough filler to push the final token well past three wrapped lines.
	filler := strings.Repeat("steady progress across every paragraph ", 12)

	withZebra := sampleReport()
	withZebra.Criteria[0].Comment = filler + "ZEBRA"
	withYacht := sampleReport()
	withYacht.Criteria[0].Comment = filler + "YACHT"

	a, err := r.Render(withZebra)
	require.NoError(t, err)
	b, err := r.Render(withYacht)
	require.NoError(t, err)
	assert.Equal(t, a, b, "tail beyond the third line must not affect output")

	visible := sampleReport()
	visible.Criteria[0].Comment = "ZEBRA " + filler
	c, err := r.Render(visible)
	require.NoError(t, err)
	assert.NotEqual(t, a, c, "first-line text must affect output")
}

func TestRenderTruncatesOverallAfterFiveLines(t *testing.T) {
	r := NewRenderer(writeTemplate(t), "")

	filler := strings.Repeat("the writer shows consistent control of register and tone ", 14)

	first := sampleReport()
	first.OverallComment = filler + "ZEBRA"
	second := sampleReport()
	second.OverallComment = filler + "YACHT"

	a, err := r.Render(first)
	require.NoError(t, err)
	b, err := r.Render(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRenderDegenerateReport(t *testing.T) {
	r := NewRenderer(writeTemplate(t), "")

	out, err := r.Render(feedback.Report{OverallComment: feedback.NoOverallComment})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestRenderMissingTemplate(t *testing.T) {
	r := NewRenderer(filepath.Join(t.TempDir(), "absent.png"), "")

	_, err := r.Render(sampleReport())
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrNoTemplate)
}

func TestRenderUndecodableTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o600))

	r := NewRenderer(path, "")
	_, err := r.Render(sampleReport())
	assert.ErrorIs(t, err, sentinel.ErrNoTemplate)
}

func TestRenderMissingFont(t *testing.T) {
	r := NewRenderer(writeTemplate(t), filepath.Join(t.TempDir(), "absent.ttf"))

	_, err := r.Render(sampleReport())
	assert.ErrorIs(t, err, sentinel.ErrNoTemplate)
}
