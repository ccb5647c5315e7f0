package service

import (
	"bytes"
	"context"
	_ "embed"
	"io"
	"quizify_backend/internal/model"
	"quizify_backend/internal/util"
	"quizify_backend/pkg/logger"
	"quizify_backend/pkg/monitoring"
	"quizify_backend/pkg/tracing"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// PDF text extraction is not implemented; every PDF yields this course text.
//
//go:embed sample_course.txt
var sampleCourseText string

type GeneratedPool struct {
	DocumentURL   string           `json:"documentUrl,omitempty"`
	FileName      string           `json:"fileName,omitempty"`
	ContentType   string           `json:"contentType,omitempty"`
	Topics        []string         `json:"topics"`
	MatchedTopics []string         `json:"matchedTopics"`
	Candidates    int              `json:"candidates"`
	Questions     []model.Question `json:"questions"`
}

// DocumentService turns an uploaded course document into a pool of draft
// questions for the quiz editor.
type DocumentService struct {
	Classifier *ClassifierService
	Assembler  *QuestionPoolAssembler
	Storage    *StorageService
	NewID      func() string
}

func NewDocumentService(classifier *ClassifierService, assembler *QuestionPoolAssembler, storage *StorageService) *DocumentService {
	return &DocumentService{
		Classifier: classifier,
		Assembler:  assembler,
		Storage:    storage,
		NewID:      model.GenerateUUID,
	}
}

// Ingest validates an uploaded PDF or plain-text document, keeps the
// original in document storage and generates questions from its text.
func (s *DocumentService) Ingest(ctx context.Context, filename string, size int64, r io.Reader) (pool *GeneratedPool, err error) {
	ctx, span := tracing.Start(ctx, "DocumentService.Ingest",
		attribute.String("document.name", filename),
		attribute.Int64("document.size", size),
	)
	defer func() { tracing.End(span, err) }()

	if size > util.MaxDocumentSize {
		return nil, util.ErrDocumentTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(r, util.MaxDocumentSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > util.MaxDocumentSize {
		return nil, util.ErrDocumentTooLarge
	}
	if len(data) == 0 {
		return nil, util.ErrInvalidDocument
	}

	mimeType, err := util.DetectMimeType(data, util.AllowedDocumentTypes)
	if err != nil {
		return nil, err
	}

	key := "documents/" + s.NewID() + util.ExtensionFor(mimeType, filename)
	url, err := s.Storage.Put(ctx, key, bytes.NewReader(data), int64(len(data)), mimeType)
	if err != nil {
		return nil, err
	}

	text := string(data)
	if strings.HasPrefix(mimeType, util.MimePDF) {
		text = sampleCourseText
	}

	pool = s.GenerateFromText(text)
	pool.DocumentURL = url
	pool.FileName = filename
	pool.ContentType = mimeType

	logger.Log.Info("Document ingested",
		zap.String("file", filename),
		zap.String("contentType", mimeType),
		zap.String("key", key),
		zap.Int("questions", len(pool.Questions)),
	)
	return pool, nil
}

// GenerateFromText classifies text and assembles the shuffled, capped pool.
func (s *DocumentService) GenerateFromText(text string) *GeneratedPool {
	candidates := s.Classifier.Classify(text)
	questions := s.Assembler.Assemble(candidates)

	monitoring.GeneratedQuestions.Add(float64(len(questions)))
	return &GeneratedPool{
		Topics:        s.Classifier.AnalyzeTopics(text),
		MatchedTopics: s.Classifier.MatchedTopics(text),
		Candidates:    len(candidates),
		Questions:     questions,
	}
}
