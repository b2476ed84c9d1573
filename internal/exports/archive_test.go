package exports

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"leadengine_backend/internal/adapters/storage"
	"leadengine_backend/internal/leads/domain"
	"leadengine_backend/internal/leads/forecast"
	"leadengine_backend/platform/apperr"
	"leadengine_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	buckets     []string
	objects     map[string][]byte
	contentType string
	err         error
	signErr     error
	signed      []string
}

func (s *memoryStore) GenerateDownloadURL(_ context.Context, bucket, fileKey string) (*storage.PresignedURL, error) {
	if s.signErr != nil {
		return nil, s.signErr
	}
	s.signed = append(s.signed, bucket+"/"+fileKey)
	return &storage.PresignedURL{
		URL:       "https://minio.local/" + bucket + "/" + fileKey + "?X-Amz-Signature=abc",
		FileKey:   fileKey,
		ExpiresAt: time.Date(2026, 10, 18, 12, 15, 0, 0, time.UTC),
	}, nil
}

func (s *memoryStore) EnsureBucketExists(_ context.Context, bucket string) error {
	s.buckets = append(s.buckets, bucket)
	return nil
}

func (s *memoryStore) UploadObject(_ context.Context, bucket, fileKey, contentType string, reader io.Reader, _ int64) error {
	if s.err != nil {
		return s.err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	if s.objects == nil {
		s.objects = make(map[string][]byte)
	}
	s.objects[bucket+"/"+fileKey] = data
	s.contentType = contentType
	return nil
}

func sampleRun() (forecast.PipelineForecast, []forecast.LeadPrediction) {
	day := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	score := 82
	preds := []forecast.LeadPrediction{
		{
			LeadID:          uuid.MustParse("11111111-1111-1111-1111-111111111111"),
			Probability:     0.75,
			Bucket:          domain.BucketHot,
			CloseDate:       day.AddDate(0, 0, 12),
			DealValue:       1200,
			TimeToCloseDays: 12,
			Factors:         forecast.PredictionFactors{Industry: "saas", OverallScore: &score},
		},
		{
			LeadID:          uuid.MustParse("22222222-2222-2222-2222-222222222222"),
			Probability:     0.2,
			Bucket:          domain.BucketCold,
			CloseDate:       day.AddDate(0, 0, 30),
			DealValue:       800,
			TimeToCloseDays: 30,
			Factors:         forecast.PredictionFactors{Industry: "retail"},
		},
	}
	f := forecast.PipelineForecast{
		ForecastDate:     day,
		PredictedRevenue: 1200,
		ConfidenceLow:    840,
		ConfidenceHigh:   1560,
		PredictedCloses:  1,
	}
	return f, preds
}

func TestPredictionRecordSchema(t *testing.T) {
	schema := parquet.SchemaOf(new(PredictionRecord))
	require.NotNil(t, schema)

	for _, col := range []string{"run_id", "lead_id", "predicted_close_probability", "bucket", "overall_score", "pipeline_predicted_revenue"} {
		_, ok := schema.Lookup(col)
		assert.True(t, ok, "column %s should exist", col)
	}
}

func TestWriteAndReadPredictionsParquet(t *testing.T) {
	f, preds := sampleRun()
	records := ConvertPredictions("run-1", f, preds)

	var buf bytes.Buffer
	require.NoError(t, WritePredictionsParquet(&buf, records))

	rows, err := ReadPredictionsParquet(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "run-1", rows[0].RunID)
	assert.Equal(t, preds[0].LeadID.String(), rows[0].LeadID)
	assert.Equal(t, "hot", rows[0].Bucket)
	assert.InDelta(t, 0.75, rows[0].Probability, 1e-9)
	require.NotNil(t, rows[0].OverallScore)
	assert.Equal(t, int32(82), *rows[0].OverallScore)
	assert.Nil(t, rows[1].OverallScore)
	assert.Equal(t, int32(1), rows[1].PipelineCloses)
}

func TestForecastArchiveUploadsParquet(t *testing.T) {
	store := &memoryStore{}
	archive, err := NewForecastArchive(context.Background(), store, "forecast-archive", logger.Discard())
	require.NoError(t, err)
	assert.Equal(t, []string{"forecast-archive"}, store.buckets)

	f, preds := sampleRun()
	key, err := archive.Archive(context.Background(), "run-42", f, preds)
	require.NoError(t, err)
	assert.Equal(t, "forecasts/2026-10-18/run-42.parquet", key)
	assert.Equal(t, "application/vnd.apache.parquet", store.contentType)

	data := store.objects["forecast-archive/"+key]
	rows, err := ReadPredictionsParquet(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestForecastArchivePropagatesUploadError(t *testing.T) {
	store := &memoryStore{err: errors.New("bucket gone")}
	archive, err := NewForecastArchive(context.Background(), store, "forecast-archive", logger.Discard())
	require.NoError(t, err)

	f, preds := sampleRun()
	_, err = archive.Archive(context.Background(), "run-1", f, preds)
	assert.ErrorContains(t, err, "bucket gone")
}

func TestNewForecastArchiveRequiresBucket(t *testing.T) {
	_, err := NewForecastArchive(context.Background(), &memoryStore{}, "", logger.Discard())
	assert.Error(t, err)
}

func TestDownloadURL(t *testing.T) {
	store := &memoryStore{}
	archive, err := NewForecastArchive(context.Background(), store, "forecast-archive", logger.Discard())
	require.NoError(t, err)

	object := "forecasts/2026-10-18/run-1.parquet"
	link, err := archive.DownloadURL(context.Background(), object)
	require.NoError(t, err)
	assert.Equal(t, object, link.FileKey)
	assert.Contains(t, link.URL, "forecast-archive/"+object)
	assert.Equal(t, []string{"forecast-archive/" + object}, store.signed)
}

func TestDownloadURLRejectsForeignKeys(t *testing.T) {
	store := &memoryStore{}
	archive, err := NewForecastArchive(context.Background(), store, "forecast-archive", logger.Discard())
	require.NoError(t, err)

	for _, object := range []string{"", "/forecasts/a.parquet", "forecasts/../secrets.parquet", "quotes/2026/q.pdf", "forecasts/2026-10-18/run.csv"} {
		_, err := archive.DownloadURL(context.Background(), object)
		assert.True(t, apperr.Is(err, apperr.KindValidation), object)
	}
	assert.Empty(t, store.signed)
}

func TestDownloadURLSigningFailureIsUnavailable(t *testing.T) {
	store := &memoryStore{signErr: errors.New("connection refused")}
	archive, err := NewForecastArchive(context.Background(), store, "forecast-archive", logger.Discard())
	require.NoError(t, err)

	_, err = archive.DownloadURL(context.Background(), "forecasts/2026-10-18/run-1.parquet")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))
	assert.ErrorContains(t, err, "connection refused")
}
