package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/openpan/drive-service/config"
	"github.com/openpan/drive-service/entity"
	"github.com/openpan/drive-service/infra"
	"github.com/openpan/drive-service/infra/produce"
	"github.com/openpan/drive-service/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubSigner records presign calls and returns canned URLs.
type stubSigner struct {
	presignedKeys []string
	uploadID      string
	aborted       []string
}

func (s *stubSigner) PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, error) {
	s.presignedKeys = append(s.presignedKeys, key)
	return "https://storage.test/" + key + "?signed=1", nil
}

func (s *stubSigner) CreateMultipart(ctx context.Context, key, contentType string) (string, error) {
	if s.uploadID == "" {
		s.uploadID = "upload-1"
	}
	return s.uploadID, nil
}

func (s *stubSigner) PresignPart(ctx context.Context, key, uploadID string, partNumber int32, expires time.Duration) (string, error) {
	return "https://storage.test/" + key + "?part=1", nil
}

func (s *stubSigner) CompleteMultipart(ctx context.Context, key, uploadID string, parts []infra.CompletedPart) error {
	return nil
}

func (s *stubSigner) AbortMultipart(ctx context.Context, key, uploadID string) error {
	s.aborted = append(s.aborted, uploadID)
	return nil
}

// stubStore serves object metadata from an in-memory map.
type stubStore struct {
	objects map[string]infra.ObjectStat
}

func (s *stubStore) StatObject(ctx context.Context, key string) (*infra.ObjectStat, error) {
	stat, ok := s.objects[key]
	if !ok {
		return nil, &notFoundError{key: key}
	}
	return &stat, nil
}

func (s *stubStore) RemoveObject(ctx context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

func (s *stubStore) GetObjectStream(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	return nil, 0, &notFoundError{key: key}
}

type notFoundError struct{ key string }

func (e *notFoundError) Error() string { return "object not found: " + e.key }

// stubPublisher collects published messages.
type stubPublisher struct {
	purges   []produce.PurgeMessage
	verifies []produce.VerifyMessage
}

func (p *stubPublisher) PublishPurge(ctx context.Context, msg produce.PurgeMessage) error {
	p.purges = append(p.purges, msg)
	return nil
}

func (p *stubPublisher) PublishVerify(ctx context.Context, msg produce.VerifyMessage) error {
	p.verifies = append(p.verifies, msg)
	return nil
}

type testHarness struct {
	ctrl      *Controller
	repo      *repository.Repository
	signer    *stubSigner
	store     *stubStore
	publisher *stubPublisher
	userID    uuid.UUID
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&entity.Blob{},
		&entity.UserFile{},
		&entity.StorageAccount{},
		&entity.PendingUpload{},
	))

	cfg := &config.Config{EnvConfig: &config.EnvConfig{}}
	cfg.EnvConfig.Upload.SignedURLExpireSeconds = 900
	cfg.EnvConfig.Upload.PendingTTLSeconds = 3600
	cfg.EnvConfig.Storage.FreeQuotaBytes = 10 * 1024 * 1024

	repo := repository.NewRepository(db)
	signer := &stubSigner{}
	store := &stubStore{objects: map[string]infra.ObjectStat{}}
	publisher := &stubPublisher{}

	ctrl := &Controller{
		Config:     cfg,
		Repository: repo,
		Logger:     infra.InitLoggerClient(cfg.EnvConfig),
		Signer:     signer,
		Store:      store,
		Publisher:  publisher,
	}

	return &testHarness{
		ctrl:      ctrl,
		repo:      repo,
		signer:    signer,
		store:     store,
		publisher: publisher,
		userID:    uuid.New(),
	}
}

// do runs a handler with an authenticated request and returns the recorder.
func (h *testHarness) do(t *testing.T, handler gin.HandlerFunc, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set("user_id", h.userID.String())

	handler(c)
	return w
}

// doWithParamAndBody runs a handler that reads an :id path parameter plus a
// JSON body.
func (h *testHarness) doWithParamAndBody(t *testing.T, handler gin.HandlerFunc, method, id string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, "/rpc/files/"+id, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set("user_id", h.userID.String())
	c.Params = gin.Params{{Key: "id", Value: id}}

	handler(c)
	return w
}

func listAllQuery() repository.ListQuery {
	return repository.ListQuery{}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
