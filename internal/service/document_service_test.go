package service

import (
	"bytes"
	"context"
	"math/rand/v2"
	"os"
	"path/filepath"
	"quizify_backend/internal/util"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDocuments(t *testing.T) (*DocumentService, string) {
	t.Helper()
	root := t.TempDir()
	svc := NewDocumentService(
		newTestClassifier(t),
		NewQuestionPoolAssembler(rand.New(rand.NewPCG(1, 2))),
		&StorageService{Store: &LocalDocumentStore{Root: root}},
	)
	svc.NewID = func() string { return "doc-1" }
	return svc, root
}

func TestIngestPDFUsesCourseText(t *testing.T) {
	svc, root := newTestDocuments(t)
	pdf := []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")

	pool, err := svc.Ingest(context.Background(), "lecture.pdf", int64(len(pdf)), bytes.NewReader(pdf))
	require.NoError(t, err)

	assert.Equal(t, util.MimePDF, pool.ContentType)
	assert.Equal(t, "/uploads/documents/doc-1.pdf", pool.DocumentURL)
	assert.Equal(t, 14, pool.Candidates)
	assert.Len(t, pool.Questions, MaxPoolQuestions)
	assert.Contains(t, pool.MatchedTopics, "Artificial Intelligence")
	assert.Contains(t, pool.Topics, "Database")

	stored, err := os.ReadFile(filepath.Join(root, "documents", "doc-1.pdf"))
	require.NoError(t, err)
	assert.Equal(t, pdf, stored)
}

func TestIngestPlainTextUsesItsContent(t *testing.T) {
	svc, _ := newTestDocuments(t)
	text := []byte("Today we covered the stack and the queue.")

	pool, err := svc.Ingest(context.Background(), "notes.txt", int64(len(text)), bytes.NewReader(text))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(pool.ContentType, util.MimePlainText))
	assert.Equal(t, 5, pool.Candidates)
	assert.Len(t, pool.Questions, 5)
	assert.Equal(t, []string{"Data Structures"}, pool.MatchedTopics)
}

func TestIngestRejectsOtherTypes(t *testing.T) {
	svc, root := newTestDocuments(t)
	png := []byte("\x89PNG\r\n\x1a\n0000IHDR")

	_, err := svc.Ingest(context.Background(), "slide.png", int64(len(png)), bytes.NewReader(png))
	assert.ErrorIs(t, err, util.ErrInvalidDocument)

	_, err = os.Stat(filepath.Join(root, "documents"))
	assert.True(t, os.IsNotExist(err))
}

func TestIngestRejectsLargeFiles(t *testing.T) {
	svc, _ := newTestDocuments(t)

	_, err := svc.Ingest(context.Background(), "big.pdf", util.MaxDocumentSize+1, bytes.NewReader(nil))
	assert.ErrorIs(t, err, util.ErrDocumentTooLarge)

	big := bytes.Repeat([]byte("a"), int(util.MaxDocumentSize)+1)
	_, err = svc.Ingest(context.Background(), "big.txt", 0, bytes.NewReader(big))
	assert.ErrorIs(t, err, util.ErrDocumentTooLarge)
}

func TestGenerateFromTextWithoutTriggers(t *testing.T) {
	svc, _ := newTestDocuments(t)

	pool := svc.GenerateFromText("Medieval poetry")
	assert.Equal(t, 3, pool.Candidates)
	assert.Len(t, pool.Questions, 3)
	assert.Empty(t, pool.MatchedTopics)
	assert.Empty(t, pool.Topics)
}
