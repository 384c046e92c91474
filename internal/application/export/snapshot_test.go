package export

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/mhtech-dashboard/internal/domain/theme"
	"github.com/turtacn/mhtech-dashboard/internal/domain/view"
	kafkainfra "github.com/turtacn/mhtech-dashboard/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/render"
	minioinfra "github.com/turtacn/mhtech-dashboard/internal/infrastructure/storage/minio"
	"github.com/turtacn/mhtech-dashboard/pkg/errors"
)

type MockSnapshotRepository struct {
	mock.Mock

	mu      sync.Mutex
	uploads map[string][]byte
}

func (m *MockSnapshotRepository) Upload(ctx context.Context, req *minioinfra.UploadRequest) (*minioinfra.UploadResult, error) {
	args := m.Called(ctx, req)
	m.mu.Lock()
	if m.uploads == nil {
		m.uploads = map[string][]byte{}
	}
	m.uploads[req.ObjectKey] = req.Data
	m.mu.Unlock()
	if r := args.Get(0); r != nil {
		return r.(*minioinfra.UploadResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSnapshotRepository) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockSnapshotRepository) List(ctx context.Context, id string) ([]*minioinfra.ObjectMetadata, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]*minioinfra.ObjectMetadata), args.Error(1)
}

func (m *MockSnapshotRepository) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockSnapshotRepository) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, key, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockSnapshotRepository) uploaded(key string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uploads[key]
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishEvent(ctx context.Context, eventType string, payload interface{}) error {
	return m.Called(ctx, eventType, payload).Error(0)
}

type stubRenderer struct {
	fail view.ChartKind
}

func (r stubRenderer) Render(_ context.Context, spec view.ChartSpec, _ theme.Name, f render.Format) (*render.Image, error) {
	if spec.Kind == r.fail {
		return nil, errors.New(errors.ErrCodeRenderFailed, "stub failure")
	}
	return &render.Image{Format: f, Data: []byte(string(spec.Kind) + "-" + string(f))}, nil
}

type SnapshotServiceTestSuite struct {
	suite.Suite
	repo *MockSnapshotRepository
	pub  *MockPublisher
	svc  *SnapshotService
}

func (s *SnapshotServiceTestSuite) SetupTest() {
	s.repo = new(MockSnapshotRepository)
	s.pub = new(MockPublisher)
	s.svc = NewSnapshotService(view.NewDispatcher(nil), stubRenderer{}, s.repo,
		WithSnapshotEvents(s.pub),
		WithIDGenerator(func() string { return "snap-1" }),
		WithPresignTTL(10*time.Minute),
		WithConcurrency(3))
}

func TestSnapshotServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SnapshotServiceTestSuite))
}

func (s *SnapshotServiceTestSuite) expectStorage() {
	s.repo.On("Upload", mock.Anything, mock.Anything).Return(&minioinfra.UploadResult{}, nil)
	s.repo.On("PresignedURL", mock.Anything, mock.Anything, 10*time.Minute).
		Return("https://minio.local/presigned", nil)
}

func (s *SnapshotServiceTestSuite) TestCreate_Success() {
	s.expectStorage()
	s.pub.On("PublishEvent", mock.Anything, kafkainfra.EventSnapshotCreated, mock.MatchedBy(func(p kafkainfra.SnapshotCreatedPayload) bool {
		return p.SnapshotID == "snap-1" && p.Objects == 12 && p.Bytes > 0
	})).Return(nil).Once()

	snap, err := s.svc.Create(context.Background(), &SnapshotInput{Theme: "dark"})
	s.Require().NoError(err)

	s.Equal("snap-1", snap.ID)
	s.Equal(theme.Dark, snap.Theme)
	s.Require().Len(snap.Objects, 12)
	s.Equal("country-counts.png", snap.Objects[0].Name)
	s.Equal("country-counts.svg", snap.Objects[1].Name)
	s.Equal(WorkbookName, snap.Objects[10].Name)
	s.Equal(ManifestName, snap.Objects[11].Name)
	for _, o := range snap.Objects {
		s.True(strings.HasPrefix(o.Key, "snapshots/snap-1/"), o.Key)
		s.Equal("https://minio.local/presigned", o.URL)
		s.Positive(o.Size)
	}
	s.repo.AssertNumberOfCalls(s.T(), "Upload", 12)
	s.pub.AssertExpectations(s.T())
}

func (s *SnapshotServiceTestSuite) TestCreate_ManifestListsObjects() {
	s.expectStorage()
	s.pub.On("PublishEvent", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := s.svc.Create(context.Background(), nil)
	s.Require().NoError(err)

	raw := s.repo.uploaded(minioinfra.SnapshotKey("snap-1", ManifestName))
	s.Require().NotEmpty(raw)
	var doc manifestDoc
	s.Require().NoError(json.Unmarshal(raw, &doc))
	s.Equal("snap-1", doc.ID)
	s.Equal(theme.Light, doc.Theme)
	s.Equal("full", doc.HeatmapRange)
	s.Len(doc.Objects, 11)
	s.Equal("age-distribution.png", doc.Objects[0].Name)
}

func (s *SnapshotServiceTestSuite) TestCreate_RenderFailure() {
	s.svc.renderer = stubRenderer{fail: view.KindHeatmap}

	_, err := s.svc.Create(context.Background(), nil)
	s.Error(err)
	s.True(errors.IsCode(err, errors.ErrCodeSnapshotFailed))
	s.repo.AssertNotCalled(s.T(), "Upload", mock.Anything, mock.Anything)
	s.pub.AssertNotCalled(s.T(), "PublishEvent", mock.Anything, mock.Anything, mock.Anything)
}

func (s *SnapshotServiceTestSuite) TestCreate_UploadFailure() {
	s.repo.On("Upload", mock.Anything, mock.Anything).
		Return(nil, minioinfra.ErrUploadFailed.WithDetail("x"))

	_, err := s.svc.Create(context.Background(), nil)
	s.True(errors.IsCode(err, errors.ErrCodeStorageFailed))
	s.pub.AssertNotCalled(s.T(), "PublishEvent", mock.Anything, mock.Anything, mock.Anything)
}

func (s *SnapshotServiceTestSuite) TestCreate_PublishFailureIsNotFatal() {
	s.expectStorage()
	s.pub.On("PublishEvent", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New(errors.ErrCodeExternalService, "broker down"))

	snap, err := s.svc.Create(context.Background(), nil)
	s.NoError(err)
	s.Len(snap.Objects, 12)
}

func (s *SnapshotServiceTestSuite) TestCreate_UnknownTheme() {
	_, err := s.svc.Create(context.Background(), &SnapshotInput{Theme: "sepia"})
	s.True(errors.IsCode(err, errors.ErrCodeUnknownTheme))
}

func TestSnapshotService_Disabled(t *testing.T) {
	svc := NewSnapshotService(nil, nil, nil)
	_, err := svc.Create(context.Background(), nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeFeatureDisabled))
}

func TestSnapshotService_Cancelled(t *testing.T) {
	repo := new(MockSnapshotRepository)
	svc := NewSnapshotService(nil, render.NewChartRenderer(), repo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Create(ctx, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeTimeout))
	repo.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestSnapshot_Bytes(t *testing.T) {
	s := &Snapshot{Objects: []SnapshotObject{{Size: 3}, {Size: 4}}}
	assert.Equal(t, int64(7), s.Bytes())
}
