package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colorizer-backend/internal/domains/image/model"
	"colorizer-backend/internal/shared"
)

// pngBytes carries the PNG magic so content sniffing accepts it.
var pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x01}

// ========================================
// MOCKS
// ========================================

type mockRepo struct {
	createFn        func(ctx context.Context, image *model.Image) error
	getByIDFn       func(ctx context.Context, id int) (*model.Image, error)
	getByTokenFn    func(ctx context.Context, token string) (*model.Image, error)
	listBySessionFn func(ctx context.Context, sessionID string) ([]*model.Image, error)
	updateResultFn  func(ctx context.Context, id int, colorizedURL string) error
	updateFailureFn func(ctx context.Context, id int, errorMessage string) error
	failStaleFn     func(ctx context.Context, cutoff time.Time, errorMessage string) (int64, error)
}

func (m *mockRepo) Create(ctx context.Context, image *model.Image) error {
	return m.createFn(ctx, image)
}

func (m *mockRepo) GetByID(ctx context.Context, id int) (*model.Image, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockRepo) GetByPublicToken(ctx context.Context, token string) (*model.Image, error) {
	return m.getByTokenFn(ctx, token)
}

func (m *mockRepo) ListBySession(ctx context.Context, sessionID string) ([]*model.Image, error) {
	return m.listBySessionFn(ctx, sessionID)
}

func (m *mockRepo) UpdateResult(ctx context.Context, id int, colorizedURL string) error {
	return m.updateResultFn(ctx, id, colorizedURL)
}

func (m *mockRepo) UpdateFailure(ctx context.Context, id int, errorMessage string) error {
	return m.updateFailureFn(ctx, id, errorMessage)
}

func (m *mockRepo) FailStale(ctx context.Context, cutoff time.Time, errorMessage string) (int64, error) {
	return m.failStaleFn(ctx, cutoff, errorMessage)
}

type mockColorizer struct {
	colorizeFn func(ctx context.Context, imageBytes []byte, mimeType string) (string, error)
}

func (m *mockColorizer) Colorize(ctx context.Context, imageBytes []byte, mimeType string) (string, error) {
	return m.colorizeFn(ctx, imageBytes, mimeType)
}

type mockArchive struct {
	uploads []string
}

func (m *mockArchive) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	m.uploads = append(m.uploads, key)
	return "http://minio/" + key, nil
}

type mockQueue struct {
	enqueued  []*asynq.Task
	enqueueFn func(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

func (m *mockQueue) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	m.enqueued = append(m.enqueued, task)
	if m.enqueueFn != nil {
		return m.enqueueFn(task, opts...)
	}
	return &asynq.TaskInfo{}, nil
}

const testMaxUpload = int64(10 * 1024 * 1024)

func newTestService(repo *mockRepo, colorizer *mockColorizer, archive *mockArchive, queue *mockQueue) ImageService {
	var arch ObjectArchive
	if archive != nil {
		arch = archive
	}
	return NewImageService(repo, colorizer, arch, queue, testMaxUpload, 60*time.Second)
}

func validUploadRequest(data []byte) model.UploadRequest {
	return model.UploadRequest{
		Filename:  "photo.png",
		MimeType:  "image/png",
		SizeBytes: int64(len(data)),
	}
}

// ========================================
// SUBMIT
// ========================================

func TestSubmit_CreatesProcessingRecordAndEnqueues(t *testing.T) {
	var created *model.Image
	repo := &mockRepo{
		createFn: func(ctx context.Context, image *model.Image) error {
			image.ID = 42
			created = image
			return nil
		},
	}
	queue := &mockQueue{}
	archive := &mockArchive{}

	svc := newTestService(repo, &mockColorizer{}, archive, queue)

	img, err := svc.Submit(context.Background(), "session-1", validUploadRequest(pngBytes), pngBytes)
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, 42, img.ID)
	assert.Equal(t, "session-1", img.SessionID)
	assert.Equal(t, model.StatusProcessing, img.Status)
	assert.True(t, strings.HasPrefix(img.OriginalURL, "data:image/png;base64,"))
	assert.Len(t, img.PublicToken, 64)
	assert.Nil(t, img.ColorizedURL)

	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, shared.TypeColorizeImage, queue.enqueued[0].Type())

	require.Len(t, archive.uploads, 1)
	assert.Equal(t, "images/42/original.png", archive.uploads[0])
}

func TestSubmit_TokensAreUnique(t *testing.T) {
	repo := &mockRepo{
		createFn: func(ctx context.Context, image *model.Image) error { return nil },
	}
	svc := newTestService(repo, &mockColorizer{}, nil, &mockQueue{})

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		img, err := svc.Submit(context.Background(), "s", validUploadRequest(pngBytes), pngBytes)
		require.NoError(t, err)
		assert.False(t, seen[img.PublicToken])
		seen[img.PublicToken] = true
	}
}

func TestSubmit_RejectsOversizedUpload(t *testing.T) {
	repo := &mockRepo{
		createFn: func(ctx context.Context, image *model.Image) error {
			t.Fatal("no record should be created for a rejected upload")
			return nil
		},
	}
	svc := newTestService(repo, &mockColorizer{}, nil, &mockQueue{})

	req := validUploadRequest(pngBytes)
	req.SizeBytes = testMaxUpload + 1

	_, err := svc.Submit(context.Background(), "s", req, pngBytes)
	assert.ErrorIs(t, err, model.ErrFileTooLarge)
}

func TestSubmit_RejectsNonImageContentType(t *testing.T) {
	repo := &mockRepo{
		createFn: func(ctx context.Context, image *model.Image) error {
			t.Fatal("no record should be created for a rejected upload")
			return nil
		},
	}
	svc := newTestService(repo, &mockColorizer{}, nil, &mockQueue{})

	req := validUploadRequest(pngBytes)
	req.MimeType = "application/pdf"

	_, err := svc.Submit(context.Background(), "s", req, pngBytes)
	assert.ErrorIs(t, err, model.ErrNotAnImage)
}

func TestSubmit_RejectsMislabeledContent(t *testing.T) {
	// Declared image/png but the bytes are plain text.
	repo := &mockRepo{
		createFn: func(ctx context.Context, image *model.Image) error {
			t.Fatal("no record should be created for a rejected upload")
			return nil
		},
	}
	svc := newTestService(repo, &mockColorizer{}, nil, &mockQueue{})

	data := []byte("just some text pretending to be a photo")
	_, err := svc.Submit(context.Background(), "s", validUploadRequest(data), data)
	assert.ErrorIs(t, err, model.ErrNotAnImage)
}

func TestSubmit_EnqueueFailureMarksRecordFailed(t *testing.T) {
	var failedID int
	var failedMsg string
	repo := &mockRepo{
		createFn: func(ctx context.Context, image *model.Image) error {
			image.ID = 7
			return nil
		},
		updateFailureFn: func(ctx context.Context, id int, errorMessage string) error {
			failedID = id
			failedMsg = errorMessage
			return nil
		},
	}
	queue := &mockQueue{
		enqueueFn: func(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
			return nil, errors.New("redis down")
		},
	}
	svc := newTestService(repo, &mockColorizer{}, nil, queue)

	_, err := svc.Submit(context.Background(), "s", validUploadRequest(pngBytes), pngBytes)
	require.Error(t, err)
	assert.Equal(t, 7, failedID)
	assert.Contains(t, failedMsg, "schedule")
}

// ========================================
// OWNER ACCESS
// ========================================

func TestGetForOwner_ReturnsOwnRecord(t *testing.T) {
	repo := &mockRepo{
		getByIDFn: func(ctx context.Context, id int) (*model.Image, error) {
			return &model.Image{ID: id, SessionID: "session-1"}, nil
		},
	}
	svc := newTestService(repo, &mockColorizer{}, nil, &mockQueue{})

	img, err := svc.GetForOwner(context.Background(), 5, "session-1")
	require.NoError(t, err)
	assert.Equal(t, 5, img.ID)
}

func TestGetForOwner_ForeignSessionLooksLikeMissing(t *testing.T) {
	repo := &mockRepo{
		getByIDFn: func(ctx context.Context, id int) (*model.Image, error) {
			return &model.Image{ID: id, SessionID: "someone-else"}, nil
		},
	}
	svc := newTestService(repo, &mockColorizer{}, nil, &mockQueue{})

	_, err := svc.GetForOwner(context.Background(), 5, "session-1")
	assert.ErrorIs(t, err, model.ErrImageNotFound)
}

func TestGetForOwner_MissingRecord(t *testing.T) {
	repo := &mockRepo{
		getByIDFn: func(ctx context.Context, id int) (*model.Image, error) {
			return nil, model.ErrImageNotFound
		},
	}
	svc := newTestService(repo, &mockColorizer{}, nil, &mockQueue{})

	_, err := svc.GetForOwner(context.Background(), 99, "session-1")
	assert.ErrorIs(t, err, model.ErrImageNotFound)
}

// ========================================
// PROCESS IMAGE
// ========================================

func processingRecord(id int, data []byte, mime string) *model.Image {
	return &model.Image{
		ID:          id,
		SessionID:   "s",
		OriginalURL: model.EncodeDataURL(mime, data),
		Status:      model.StatusProcessing,
	}
}

func TestProcessImage_SuccessStoresResult(t *testing.T) {
	resultURL := model.EncodeDataURL("image/png", []byte("colorized"))

	var storedURL string
	repo := &mockRepo{
		getByIDFn: func(ctx context.Context, id int) (*model.Image, error) {
			return processingRecord(id, pngBytes, "image/png"), nil
		},
		updateResultFn: func(ctx context.Context, id int, colorizedURL string) error {
			storedURL = colorizedURL
			return nil
		},
	}
	colorizer := &mockColorizer{
		colorizeFn: func(ctx context.Context, imageBytes []byte, mimeType string) (string, error) {
			assert.Equal(t, pngBytes, imageBytes)
			assert.Equal(t, "image/png", mimeType)
			return resultURL, nil
		},
	}
	archive := &mockArchive{}
	svc := newTestService(repo, colorizer, archive, &mockQueue{})

	require.NoError(t, svc.ProcessImage(context.Background(), 3))
	assert.Equal(t, resultURL, storedURL)
	assert.Equal(t, []string{"images/3/colorized.png"}, archive.uploads)
}

func TestProcessImage_FailureRecordedOnRecord(t *testing.T) {
	var failureMsg string
	repo := &mockRepo{
		getByIDFn: func(ctx context.Context, id int) (*model.Image, error) {
			return processingRecord(id, pngBytes, "image/png"), nil
		},
		updateResultFn: func(ctx context.Context, id int, colorizedURL string) error {
			t.Fatal("result must not be stored on failure")
			return nil
		},
		updateFailureFn: func(ctx context.Context, id int, errorMessage string) error {
			failureMsg = errorMessage
			return nil
		},
	}
	colorizer := &mockColorizer{
		colorizeFn: func(ctx context.Context, imageBytes []byte, mimeType string) (string, error) {
			return "", errors.New("deoldify API timeout after 1m0s")
		},
	}
	svc := newTestService(repo, colorizer, nil, &mockQueue{})

	// The job itself succeeds: the failure lives on the record.
	require.NoError(t, svc.ProcessImage(context.Background(), 3))
	assert.Equal(t, "deoldify API timeout after 1m0s", failureMsg)
}

func TestProcessImage_SkipsTerminalRecord(t *testing.T) {
	repo := &mockRepo{
		getByIDFn: func(ctx context.Context, id int) (*model.Image, error) {
			return &model.Image{ID: id, Status: model.StatusFailed}, nil
		},
	}
	colorizer := &mockColorizer{
		colorizeFn: func(ctx context.Context, imageBytes []byte, mimeType string) (string, error) {
			t.Fatal("terminal records must not be reprocessed")
			return "", nil
		},
	}
	svc := newTestService(repo, colorizer, nil, &mockQueue{})

	require.NoError(t, svc.ProcessImage(context.Background(), 3))
}

func TestProcessImage_UnreadableOriginal(t *testing.T) {
	var failureMsg string
	repo := &mockRepo{
		getByIDFn: func(ctx context.Context, id int) (*model.Image, error) {
			return &model.Image{ID: id, OriginalURL: "not a data url", Status: model.StatusProcessing}, nil
		},
		updateFailureFn: func(ctx context.Context, id int, errorMessage string) error {
			failureMsg = errorMessage
			return nil
		},
	}
	svc := newTestService(repo, &mockColorizer{}, nil, &mockQueue{})

	require.NoError(t, svc.ProcessImage(context.Background(), 3))
	assert.Contains(t, failureMsg, "unreadable original")
}

// ========================================
// STALE SWEEPER
// ========================================

func TestFailStale_CutoffIsTwiceJobTimeout(t *testing.T) {
	var gotCutoff time.Time
	var gotMsg string
	repo := &mockRepo{
		failStaleFn: func(ctx context.Context, cutoff time.Time, errorMessage string) (int64, error) {
			gotCutoff = cutoff
			gotMsg = errorMessage
			return 2, nil
		},
	}
	svc := newTestService(repo, &mockColorizer{}, nil, &mockQueue{})

	swept, err := svc.FailStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), swept)
	assert.NotEmpty(t, gotMsg)

	expected := time.Now().Add(-2 * 60 * time.Second)
	assert.WithinDuration(t, expected, gotCutoff, 2*time.Second)
}
