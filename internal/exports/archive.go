package exports

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"leadengine_backend/internal/adapters/storage"
	"leadengine_backend/internal/leads/forecast"
	"leadengine_backend/platform/apperr"
	"leadengine_backend/platform/logger"

	"github.com/parquet-go/parquet-go"
)

const (
	dateLayout   = "2006-01-02"
	objectPrefix = "forecasts/"
	objectSuffix = ".parquet"
)

// ObjectUploader is the storage capability the archive needs.
type ObjectUploader interface {
	EnsureBucketExists(ctx context.Context, bucket string) error
	UploadObject(ctx context.Context, bucket, fileKey, contentType string, reader io.Reader, size int64) error
	GenerateDownloadURL(ctx context.Context, bucket, fileKey string) (*storage.PresignedURL, error)
}

// ForecastArchive uploads one Parquet file per forecast run.
type ForecastArchive struct {
	store  ObjectUploader
	bucket string
	log    *logger.Logger
}

// NewForecastArchive creates the archive and makes sure its bucket exists.
func NewForecastArchive(ctx context.Context, store ObjectUploader, bucket string, log *logger.Logger) (*ForecastArchive, error) {
	if bucket == "" {
		return nil, fmt.Errorf("archive bucket is required")
	}
	if err := store.EnsureBucketExists(ctx, bucket); err != nil {
		return nil, err
	}
	return &ForecastArchive{store: store, bucket: bucket, log: log}, nil
}

// Archive implements forecast.Archiver and returns the object key.
func (a *ForecastArchive) Archive(ctx context.Context, runID string, f forecast.PipelineForecast, predictions []forecast.LeadPrediction) (string, error) {
	var buf bytes.Buffer
	if err := WritePredictionsParquet(&buf, ConvertPredictions(runID, f, predictions)); err != nil {
		return "", err
	}

	key := ObjectKey(runID, f)
	if err := a.store.UploadObject(ctx, a.bucket, key, storage.ContentTypeParquet, &buf, int64(buf.Len())); err != nil {
		return "", err
	}

	a.log.WithContext(ctx).Info("forecast archived",
		"bucket", a.bucket,
		"object", key,
		"rows", len(predictions),
	)
	return key, nil
}

// DownloadURL signs a short-lived link to an archived run. Only keys under
// forecasts/ ending in .parquet are accepted.
func (a *ForecastArchive) DownloadURL(ctx context.Context, object string) (*storage.PresignedURL, error) {
	if err := storage.ValidateFileKey(object); err != nil {
		return nil, apperr.Validation(err.Error()).WithOp("exports.DownloadURL")
	}
	if !strings.HasPrefix(object, objectPrefix) || !strings.HasSuffix(object, objectSuffix) {
		return nil, apperr.Validation("object is not a forecast archive").WithOp("exports.DownloadURL")
	}

	link, err := a.store.GenerateDownloadURL(ctx, a.bucket, object)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "failed to sign archive link", err).WithOp("exports.DownloadURL")
	}
	return link, nil
}

// ObjectKey is forecasts/<date>/<runID>.parquet.
func ObjectKey(runID string, f forecast.PipelineForecast) string {
	return objectPrefix + f.ForecastDate.UTC().Format(dateLayout) + "/" + runID + objectSuffix
}

// WritePredictionsParquet writes records to w using struct schema inference.
func WritePredictionsParquet(w io.Writer, records []PredictionRecord) error {
	writer := parquet.NewGenericWriter[PredictionRecord](w)

	if _, err := writer.Write(records); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

// ReadPredictionsParquet reads an archive back, for audits and tests.
func ReadPredictionsParquet(r io.ReaderAt, size int64) ([]PredictionRecord, error) {
	rows, err := parquet.Read[PredictionRecord](r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet file: %w", err)
	}
	return rows, nil
}

var _ forecast.Archiver = (*ForecastArchive)(nil)
