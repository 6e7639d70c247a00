package manifest

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/lingora/lingora/modules/library/domain/entities/staging"
)

func testOptions() Options {
	return Options{
		Levels:            []string{"A1", "A2", "B1", "B2", "C1", "C2"},
		SpeechTypes:       []string{"question", "answer"},
		DefaultSpeechType: "question",
	}
}

func sessionWithFiles(names ...string) *staging.Session {
	s := staging.NewSession(time.Now())
	for _, name := range names {
		s.Files = append(s.Files, &staging.File{
			OriginalFilename: name,
			StorageKey:       name,
		})
	}
	return s
}

func TestValidate_ValidManifest(t *testing.T) {
	session := sessionWithFiles("greeting.mp3")
	raw := []byte("audio_filename,text,level\ngreeting.mp3,\"Hello!\",A1\n")

	report, err := Validate(session, "manifest.csv", raw, testOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, report.TotalRows)
	assert.Equal(t, 1, report.ValidCount())
	assert.Equal(t, 0, report.ErrorCount())

	row := report.Valid[0]
	assert.Equal(t, 2, row.RowNumber)
	assert.Equal(t, "greeting.mp3", row.AudioFilename)
	assert.Equal(t, "Hello!", row.Text)
	assert.Equal(t, "A1", row.Level)
	assert.Equal(t, "question", row.SpeechType)
	assert.Empty(t, row.TagNames)
}

func TestValidate_MissingRequiredColumns(t *testing.T) {
	session := sessionWithFiles("a.mp3")
	raw := []byte("audio_filename,tags\na.mp3,greetings\n")

	_, err := Validate(session, "manifest.csv", raw, testOptions())
	require.Error(t, err)

	var structural *StructuralError
	require.ErrorAs(t, err, &structural)
	assert.Contains(t, structural.Error(), "level")
	assert.Contains(t, structural.Error(), "text")
}

func TestValidate_UnparsableCSV(t *testing.T) {
	session := sessionWithFiles("a.mp3")
	raw := []byte("audio_filename,text,level\n\"unterminated,oops,A1\n")

	_, err := Validate(session, "manifest.csv", raw, testOptions())
	var structural *StructuralError
	require.ErrorAs(t, err, &structural)
}

func TestValidate_EmptyManifest(t *testing.T) {
	session := sessionWithFiles("a.mp3")

	_, err := Validate(session, "manifest.csv", []byte(""), testOptions())
	var structural *StructuralError
	require.ErrorAs(t, err, &structural)
}

func TestValidate_RowNumberCountsHeader(t *testing.T) {
	// Header is row 1; an invalid second data row reports row 3.
	session := sessionWithFiles("a.mp3", "b.mp3", "c.mp3")
	raw := []byte(
		"audio_filename,text,level\n" +
			"a.mp3,first,A1\n" +
			"b.mp3,,A1\n" +
			"c.mp3,third,A1\n")

	report, err := Validate(session, "manifest.csv", raw, testOptions())
	require.NoError(t, err)

	assert.Equal(t, 3, report.TotalRows)
	require.Equal(t, 1, report.ErrorCount())
	assert.Equal(t, 3, report.Errors[0].Row)
	assert.Equal(t, []string{"text is empty"}, report.Errors[0].Reasons)
}

func TestValidate_UnresolvedAudioFilename(t *testing.T) {
	session := sessionWithFiles("present.mp3")
	raw := []byte("audio_filename,text,level\nmissing.mp3,hi,A1\n")

	report, err := Validate(session, "manifest.csv", raw, testOptions())
	require.NoError(t, err)

	require.Equal(t, 1, report.ErrorCount())
	assert.Equal(t, 2, report.Errors[0].Row)
	require.Len(t, report.Errors[0].Reasons, 1)
	assert.Contains(t, report.Errors[0].Reasons[0], `"missing.mp3"`)
}

func TestValidate_DuplicateAudioWithinManifest(t *testing.T) {
	session := sessionWithFiles("greeting.mp3")
	raw := []byte(
		"audio_filename,text,level\n" +
			"greeting.mp3,hello,A1\n" +
			"greeting.mp3,hello again,A2\n")

	report, err := Validate(session, "manifest.csv", raw, testOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, report.ValidCount())
	require.Equal(t, 1, report.ErrorCount())
	// The later occurrence carries the error.
	assert.Equal(t, 3, report.Errors[0].Row)
	assert.Contains(t, report.Errors[0].Reasons[0], "already referenced by row 2")
}

func TestValidate_MultipleReasonsAccumulate(t *testing.T) {
	session := sessionWithFiles("a.mp3")
	raw := []byte("audio_filename,text,level\nmissing.mp3,,Z9\n")

	report, err := Validate(session, "manifest.csv", raw, testOptions())
	require.NoError(t, err)

	require.Equal(t, 1, report.ErrorCount())
	assert.Len(t, report.Errors[0].Reasons, 3)
}

func TestValidate_LevelNormalizedToCanonicalCase(t *testing.T) {
	session := sessionWithFiles("a.mp3")
	raw := []byte("audio_filename,text,level\na.mp3,hi,b1\n")

	report, err := Validate(session, "manifest.csv", raw, testOptions())
	require.NoError(t, err)

	require.Equal(t, 1, report.ValidCount())
	assert.Equal(t, "B1", report.Valid[0].Level)
}

func TestValidate_SpeechTypeColumn(t *testing.T) {
	t.Run("explicit value", func(t *testing.T) {
		session := sessionWithFiles("a.mp3")
		raw := []byte("audio_filename,text,level,speech_type\na.mp3,hi,A1,Answer\n")

		report, err := Validate(session, "manifest.csv", raw, testOptions())
		require.NoError(t, err)
		require.Equal(t, 1, report.ValidCount())
		assert.Equal(t, "answer", report.Valid[0].SpeechType)
	})

	t.Run("blank cell falls back to default", func(t *testing.T) {
		session := sessionWithFiles("a.mp3")
		raw := []byte("audio_filename,text,level,speech_type\na.mp3,hi,A1,\n")

		report, err := Validate(session, "manifest.csv", raw, testOptions())
		require.NoError(t, err)
		require.Equal(t, 1, report.ValidCount())
		assert.Equal(t, "question", report.Valid[0].SpeechType)
	})

	t.Run("unknown value is a row error", func(t *testing.T) {
		session := sessionWithFiles("a.mp3")
		raw := []byte("audio_filename,text,level,speech_type\na.mp3,hi,A1,monologue\n")

		report, err := Validate(session, "manifest.csv", raw, testOptions())
		require.NoError(t, err)
		require.Equal(t, 1, report.ErrorCount())
		assert.Contains(t, report.Errors[0].Reasons[0], `"monologue"`)
	})
}

func TestValidate_Tags(t *testing.T) {
	session := sessionWithFiles("a.mp3")
	raw := []byte("audio_filename,text,level,tags\na.mp3,hi,A1,\"greetings, Basics,greetings, ,daily\"\n")

	report, err := Validate(session, "manifest.csv", raw, testOptions())
	require.NoError(t, err)

	require.Equal(t, 1, report.ValidCount())
	// Trimmed, empties dropped, case-sensitive dedup, order preserved.
	assert.Equal(t, []string{"greetings", "Basics", "daily"}, report.Valid[0].TagNames)
}

func TestValidate_ErrorsPreserveRowOrder(t *testing.T) {
	session := sessionWithFiles("a.mp3")
	raw := []byte(
		"audio_filename,text,level\n" +
			"x.mp3,hi,A1\n" +
			"a.mp3,hi,A1\n" +
			"y.mp3,hi,A1\n")

	report, err := Validate(session, "manifest.csv", raw, testOptions())
	require.NoError(t, err)

	require.Equal(t, 2, report.ErrorCount())
	assert.Equal(t, 2, report.Errors[0].Row)
	assert.Equal(t, 4, report.Errors[1].Row)
}

func TestValidate_DeterministicAcrossCalls(t *testing.T) {
	session := sessionWithFiles("a.mp3")
	raw := []byte("audio_filename,text,level\na.mp3,hi,A1\nmissing.mp3,,zz\n")

	first, err := Validate(session, "manifest.csv", raw, testOptions())
	require.NoError(t, err)
	second, err := Validate(session, "manifest.csv", raw, testOptions())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestValidate_XLSXManifest(t *testing.T) {
	session := sessionWithFiles("greeting.mp3")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]string{"audio_filename", "text", "level", "tags"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]string{"greeting.mp3", "Hello!", "a1", "greetings"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	report, err := Validate(session, "manifest.xlsx", buf.Bytes(), testOptions())
	require.NoError(t, err)

	require.Equal(t, 1, report.ValidCount())
	assert.Equal(t, "Hello!", report.Valid[0].Text)
	assert.Equal(t, "A1", report.Valid[0].Level)
	assert.Equal(t, []string{"greetings"}, report.Valid[0].TagNames)
}

func TestValidate_XLSXGarbageIsStructural(t *testing.T) {
	session := sessionWithFiles("a.mp3")

	_, err := Validate(session, "manifest.xlsx", []byte("not a zip"), testOptions())
	var structural *StructuralError
	require.ErrorAs(t, err, &structural)
}
