package ocr

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	text  string
	tsv   string
	err   error
	calls [][]string
	seen  []string // staged input paths
}

func (f *fakeRunner) Run(_ context.Context, name string, _ *slog.Logger, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if len(args) > 0 {
		if _, err := os.Stat(args[0]); err == nil {
			f.seen = append(f.seen, args[0])
		}
	}
	if f.err != nil {
		return nil, []byte("boom"), f.err
	}
	if slices.Contains(args, "tsv") {
		return []byte(f.tsv), nil, nil
	}
	return []byte(f.text), nil, nil
}

const sampleTSV = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
	"1\t1\t0\t0\t0\t0\t0\t0\t100\t100\t-1\t\n" +
	"5\t1\t1\t1\t1\t1\t10\t10\t20\t10\t90\tWages\n" +
	"5\t1\t1\t1\t1\t2\t40\t10\t20\t10\t70\t75,000.00\n"

func TestMeanTSVConfidence(t *testing.T) {
	assert.InDelta(t, 0.80, MeanTSVConfidence(sampleTSV), 1e-9)
	assert.Equal(t, 0.0, MeanTSVConfidence(""))
	assert.Equal(t, 0.0, MeanTSVConfidence("header\n"))
}

func TestRecognize(t *testing.T) {
	r := &fakeRunner{text: "Box 1 Wages:\t$75,000.00\r\n\n\n\nEmployer:  Acme Corp\n", tsv: sampleTSV}
	e := NewExtractor(Config{PSM: 6}, r, nil)

	rec, err := e.Recognize(context.Background(), []byte("png-bytes"), "image/PNG")
	require.NoError(t, err)
	assert.Equal(t, "Box 1 Wages: $75,000.00\n\nEmployer: Acme Corp", rec.Text)
	assert.InDelta(t, 0.80, rec.Confidence, 1e-9)
	assert.Equal(t, "eng", rec.Language)

	require.Len(t, r.calls, 2)
	assert.Equal(t, "tesseract", r.calls[0][0])
	assert.Contains(t, r.calls[0], "--psm")
	assert.Equal(t, "tsv", r.calls[1][len(r.calls[1])-1])
	require.NotEmpty(t, r.seen)
	assert.Equal(t, ".png", filepath.Ext(r.seen[0]))

	// temp input is removed after the call
	_, statErr := os.Stat(r.seen[0])
	assert.True(t, os.IsNotExist(statErr))
}

func TestRecognizeUsesArtifactCache(t *testing.T) {
	dir := t.TempDir()
	r := &fakeRunner{text: "hello world text", tsv: sampleTSV}
	e := NewExtractor(Config{ArtifactCacheDir: dir}, r, nil)

	_, err := e.Recognize(context.Background(), []byte("same"), "image/jpeg")
	require.NoError(t, err)
	_, err = e.Recognize(context.Background(), []byte("same"), "image/jpeg")
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, ".jpg", filepath.Ext(entries[0].Name()))
}

func TestArtifactCacheIsOwnerOnly(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}
	dir := filepath.Join(t.TempDir(), "artifacts")
	e := NewExtractor(Config{ArtifactCacheDir: dir}, &fakeRunner{text: "x", tsv: sampleTSV}, nil)

	_, err := e.Recognize(context.Background(), []byte("w2 scan"), "image/png")
	require.NoError(t, err)

	st, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), st.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	info, err := entries[0].Info()
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestRecognizeRejectsInput(t *testing.T) {
	e := NewExtractor(Config{}, &fakeRunner{}, nil)
	_, err := e.Recognize(context.Background(), nil, "image/png")
	assert.Error(t, err)
	_, err = e.Recognize(context.Background(), []byte("x"), "application/pdf")
	assert.Error(t, err)
}

func TestRecognizeRunnerFailure(t *testing.T) {
	e := NewExtractor(Config{}, &fakeRunner{err: errors.New("exit status 1")}, nil)
	rec, err := e.Recognize(context.Background(), []byte("x"), "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tesseract")
	assert.Equal(t, []string{"boom"}, rec.Warnings)
}

func TestNormalize(t *testing.T) {
	in := "Name:\tJane   Doe  \r\n-----\n\n\n\nState: 0HIO"
	assert.Equal(t, "Name: Jane Doe\n\nState: OHIO", Normalize(in))
	assert.Equal(t, "", Normalize(""))
}

func TestRedactArgs(t *testing.T) {
	args := []string{"/tmp/docextract-ocr-1/3f9a.png", "stdout", "-l", "eng", "--psm", "6"}
	assert.Equal(t, "<file.png> stdout -l eng --psm 6", redactArgs(args))
	assert.Equal(t, "", redactArgs(nil))
}

func TestExecRunnerMissingBinary(t *testing.T) {
	_, _, err := ExecRunner{}.Run(context.Background(), "docextract-no-such-binary", slog.Default(), "x")
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...(truncated)", truncate("abcdef", 2))
}
