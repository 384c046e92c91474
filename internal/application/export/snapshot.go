package export

import (
	"context"
	"encoding/json"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/mhtech-dashboard/internal/domain/theme"
	"github.com/turtacn/mhtech-dashboard/internal/domain/view"
	kafkainfra "github.com/turtacn/mhtech-dashboard/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/render"
	minioinfra "github.com/turtacn/mhtech-dashboard/internal/infrastructure/storage/minio"
	"github.com/turtacn/mhtech-dashboard/pkg/errors"
)

const (
	// DefaultConcurrency bounds parallel renders and uploads.
	DefaultConcurrency = 4
	// DefaultPresignTTL is the lifetime of returned download URLs.
	DefaultPresignTTL = time.Hour

	WorkbookName = "datasets.xlsx"
	ManifestName = "manifest.json"
)

// SnapshotInput selects the theme charts are rendered with.
type SnapshotInput struct {
	Theme string `json:"theme"`
}

// SnapshotObject is one stored file of a snapshot.
type SnapshotObject struct {
	Name        string `json:"name"`
	View        string `json:"view,omitempty"`
	Format      string `json:"format,omitempty"`
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	URL         string `json:"url,omitempty"`
}

// Snapshot is the result of a completed upload.
type Snapshot struct {
	ID        string           `json:"id"`
	Seed      int64            `json:"seed"`
	Theme     theme.Name       `json:"theme"`
	CreatedAt time.Time        `json:"created_at"`
	Objects   []SnapshotObject `json:"objects"`
}

// Bytes returns the total stored size.
func (s *Snapshot) Bytes() int64 {
	var n int64
	for _, o := range s.Objects {
		n += o.Size
	}
	return n
}

type artifact struct {
	obj  SnapshotObject
	data []byte
}

// SnapshotService renders every chart and uploads the bundle to object storage.
type SnapshotService struct {
	dispatcher  *view.Dispatcher
	renderer    render.Renderer
	workbook    *WorkbookExporter
	repo        minioinfra.SnapshotRepository
	events      kafkainfra.EventPublisher
	metrics     *prometheus.AppMetrics
	logger      logging.Logger
	concurrency int
	presignTTL  time.Duration
	newID       func() string
	now         func() time.Time
}

// SnapshotOption configures a SnapshotService.
type SnapshotOption func(*SnapshotService)

func WithSnapshotEvents(p kafkainfra.EventPublisher) SnapshotOption {
	return func(s *SnapshotService) {
		if p != nil {
			s.events = p
		}
	}
}

func WithSnapshotMetrics(m *prometheus.AppMetrics) SnapshotOption {
	return func(s *SnapshotService) { s.metrics = m }
}

func WithSnapshotLogger(l logging.Logger) SnapshotOption {
	return func(s *SnapshotService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithConcurrency bounds parallel work; values below 1 are ignored.
func WithConcurrency(n int) SnapshotOption {
	return func(s *SnapshotService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func WithPresignTTL(ttl time.Duration) SnapshotOption {
	return func(s *SnapshotService) {
		if ttl > 0 {
			s.presignTTL = ttl
		}
	}
}

// WithIDGenerator replaces uuid-based snapshot ids.
func WithIDGenerator(fn func() string) SnapshotOption {
	return func(s *SnapshotService) {
		if fn != nil {
			s.newID = fn
		}
	}
}

func NewSnapshotService(dispatcher *view.Dispatcher, renderer render.Renderer, repo minioinfra.SnapshotRepository, opts ...SnapshotOption) *SnapshotService {
	if dispatcher == nil {
		dispatcher = view.NewDispatcher(nil)
	}
	if renderer == nil {
		renderer = render.NewChartRenderer()
	}
	s := &SnapshotService{
		dispatcher:  dispatcher,
		renderer:    renderer,
		repo:        repo,
		events:      kafkainfra.NopPublisher{},
		logger:      logging.NewNopLogger(),
		concurrency: DefaultConcurrency,
		presignTTL:  DefaultPresignTTL,
		newID:       uuid.NewString,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.workbook = NewWorkbookExporter(dispatcher.Provider(), s.logger)
	return s
}

// Create renders every chart view in every format, adds the workbook and a
// manifest, and uploads them under snapshots/<id>/.
func (s *SnapshotService) Create(ctx context.Context, input *SnapshotInput) (*Snapshot, error) {
	if s.repo == nil {
		return nil, errors.FeatureDisabled("snapshots")
	}
	if input == nil {
		input = &SnapshotInput{}
	}
	t, err := theme.Parse(input.Theme, theme.Light)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		ID:        s.newID(),
		Seed:      s.dispatcher.Provider().Seed(),
		Theme:     t,
		CreatedAt: s.now(),
	}
	log := s.logger.With(logging.String("snapshot_id", snap.ID))

	artifacts, err := s.collect(ctx, snap.ID, t)
	if err != nil {
		prometheus.RecordExport(s.metrics, "snapshot", err)
		log.Error("snapshot render failed", logging.Err(err))
		return nil, wrapSnapshotErr(err, "failed to render snapshot")
	}

	manifest, err := s.manifest(snap, artifacts)
	if err != nil {
		prometheus.RecordExport(s.metrics, "snapshot", err)
		return nil, err
	}
	artifacts = append(artifacts, manifest)

	if err := s.upload(ctx, artifacts); err != nil {
		prometheus.RecordExport(s.metrics, "snapshot", err)
		log.Error("snapshot upload failed", logging.Err(err))
		return nil, wrapSnapshotErr(err, "failed to upload snapshot")
	}

	snap.Objects = make([]SnapshotObject, len(artifacts))
	for i, a := range artifacts {
		snap.Objects[i] = a.obj
	}
	prometheus.RecordExport(s.metrics, "snapshot", nil)
	log.Info("snapshot created", logging.Int("objects", len(snap.Objects)), logging.Int64("bytes", snap.Bytes()))

	payload := kafkainfra.SnapshotCreatedPayload{
		SnapshotID: snap.ID,
		Objects:    len(snap.Objects),
		Bytes:      snap.Bytes(),
		CreatedAt:  snap.CreatedAt,
	}
	if err := s.events.PublishEvent(ctx, kafkainfra.EventSnapshotCreated, payload); err != nil {
		log.Warn("failed to publish snapshot event", logging.Err(err))
	}
	return snap, nil
}

// wrapSnapshotErr keeps cancellation and storage codes intact.
func wrapSnapshotErr(err error, msg string) error {
	switch errors.GetCode(err) {
	case errors.ErrCodeTimeout, errors.ErrCodeStorageFailed:
		return err
	}
	return errors.Wrap(err, errors.ErrCodeSnapshotFailed, msg)
}

// collect renders charts and the workbook concurrently. Results keep a stable
// order: views in sidebar order, PNG before SVG, workbook last.
func (s *SnapshotService) collect(ctx context.Context, id string, t theme.Name) ([]artifact, error) {
	type job struct {
		label  view.Label
		format render.Format
	}
	var jobs []job
	for _, l := range view.Labels() {
		if l == view.Home {
			continue
		}
		for _, f := range render.Formats() {
			jobs = append(jobs, job{l, f})
		}
	}

	out := make([]artifact, len(jobs)+1)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			res, err := s.dispatcher.Dispatch(j.label)
			if err != nil {
				return err
			}
			img, err := s.renderer.Render(gctx, res.Chart, t, j.format)
			if err != nil {
				return err
			}
			name := res.Slug + "." + string(j.format)
			out[i] = artifact{
				obj: SnapshotObject{
					Name:        name,
					View:        res.Slug,
					Format:      string(j.format),
					Key:         minioinfra.SnapshotKey(id, name),
					ContentType: img.ContentType(),
					Size:        int64(len(img.Data)),
				},
				data: img.Data,
			}
			return nil
		})
	}
	g.Go(func() error {
		data, err := s.workbook.Build(gctx)
		if err != nil {
			return err
		}
		out[len(jobs)] = artifact{
			obj: SnapshotObject{
				Name:        WorkbookName,
				Key:         minioinfra.SnapshotKey(id, WorkbookName),
				ContentType: WorkbookContentType,
				Size:        int64(len(data)),
			},
			data: data,
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

type manifestDoc struct {
	ID           string           `json:"id"`
	Seed         int64            `json:"seed"`
	Theme        theme.Name       `json:"theme"`
	HeatmapRange string           `json:"heatmap_range"`
	CreatedAt    time.Time        `json:"created_at"`
	Objects      []SnapshotObject `json:"objects"`
}

func (s *SnapshotService) manifest(snap *Snapshot, artifacts []artifact) (artifact, error) {
	doc := manifestDoc{
		ID:           snap.ID,
		Seed:         snap.Seed,
		Theme:        snap.Theme,
		HeatmapRange: string(s.dispatcher.HeatmapRange()),
		CreatedAt:    snap.CreatedAt,
	}
	for _, a := range artifacts {
		doc.Objects = append(doc.Objects, a.obj)
	}
	sort.SliceStable(doc.Objects, func(i, j int) bool { return doc.Objects[i].Name < doc.Objects[j].Name })

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return artifact{}, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode manifest")
	}
	return artifact{
		obj: SnapshotObject{
			Name:        ManifestName,
			Key:         minioinfra.SnapshotKey(snap.ID, ManifestName),
			ContentType: "application/json",
			Size:        int64(len(data)),
		},
		data: data,
	}, nil
}

// upload stores every artifact and fills in its presigned URL.
func (s *SnapshotService) upload(ctx context.Context, artifacts []artifact) error {
	var uploaded atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i := range artifacts {
		a := &artifacts[i]
		g.Go(func() error {
			res, err := s.repo.Upload(gctx, &minioinfra.UploadRequest{
				ObjectKey:   a.obj.Key,
				Data:        a.data,
				ContentType: a.obj.ContentType,
				Metadata:    map[string]string{"snapshot-name": a.obj.Name},
			})
			if err != nil {
				return err
			}
			if res.Size > 0 {
				a.obj.Size = res.Size
			}
			url, err := s.repo.PresignedURL(gctx, a.obj.Key, s.presignTTL)
			if err != nil {
				return err
			}
			a.obj.URL = url
			uploaded.Add(1)
			return nil
		})
	}
	err := g.Wait()
	s.logger.Debug("snapshot upload finished", logging.Int64("uploaded", uploaded.Load()), logging.Int("total", len(artifacts)))
	return err
}
