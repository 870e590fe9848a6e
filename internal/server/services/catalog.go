package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/kinogate/internal/common"
	"github.com/dmitrijs2005/kinogate/internal/logging"
	sc "github.com/dmitrijs2005/kinogate/internal/server/config"
	"github.com/dmitrijs2005/kinogate/internal/server/models"
	"github.com/dmitrijs2005/kinogate/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// ErrExportDisabled is returned by Export when no bucket is configured.
var ErrExportDisabled = errors.New("catalog export is not configured")

const exportLinkTTL = 15 * time.Minute

var (
	timeNow = time.Now

	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// CatalogService serves content lookups and curation.
type CatalogService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	logger      logging.Logger
}

func NewCatalogService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config, l logging.Logger) *CatalogService {
	return &CatalogService{
		db:          db,
		repomanager: m,
		config:      cfg,
		logger:      l.With("module", "catalog"),
	}
}

// Lookup finds a record by code. Unknown codes yield common.ErrorNotFound.
func (s *CatalogService) Lookup(ctx context.Context, code string) (*models.ContentRecord, error) {
	code = models.NormalizeCode(code)
	if code == "" {
		return nil, common.ErrorNotFound
	}
	return s.repomanager.Content(s.db).GetByCode(ctx, code)
}

// Add stores a new record. A taken code yields common.ErrorAlreadyExists.
func (s *CatalogService) Add(ctx context.Context, rec *models.ContentRecord) error {
	if rec.AddedAt.IsZero() {
		rec.AddedAt = timeNow()
	}
	if err := s.repomanager.Content(s.db).Create(ctx, rec); err != nil {
		return err
	}
	s.logger.Info(ctx, "content added", "code", rec.Code, "added_by", rec.AddedBy)
	return nil
}

// Delete removes a record by code. Unknown codes yield common.ErrorNotFound.
func (s *CatalogService) Delete(ctx context.Context, code string) error {
	if err := s.repomanager.Content(s.db).Delete(ctx, code); err != nil {
		return err
	}
	s.logger.Info(ctx, "content deleted", "code", models.NormalizeCode(code))
	return nil
}

// ExportEnabled reports whether Export can run.
func (s *CatalogService) ExportEnabled() bool {
	return s.config.ExportEnabled()
}

type exportItem struct {
	Code        string    `json:"code"`
	FileID      string    `json:"file_id"`
	Kind        string    `json:"kind"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	AddedBy     int64     `json:"added_by"`
	AddedAt     time.Time `json:"added_at"`
}

type exportDocument struct {
	ExportedAt time.Time    `json:"exported_at"`
	Items      []exportItem `json:"items"`
}

// ExportResult describes an uploaded catalog snapshot.
type ExportResult struct {
	Key     string
	URL     string
	Records int
}

// ExportKey builds the object key of a catalog snapshot taken at t.
func ExportKey(t time.Time) string {
	return fmt.Sprintf("exports/%d/%02d/%02d/%s.json", t.Year(), t.Month(), t.Day(), uuid.New())
}

func (s *CatalogService) getS3Clients(ctx context.Context) (*s3.Client, *s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3AccessKey,
			s.config.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.config.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return client, newS3PresignClient(client), nil
}

// Export uploads the whole catalog as JSON and returns a presigned download
// link valid for 15 minutes.
func (s *CatalogService) Export(ctx context.Context) (*ExportResult, error) {
	if !s.ExportEnabled() {
		return nil, ErrExportDisabled
	}

	records, err := s.repomanager.Content(s.db).List(ctx)
	if err != nil {
		return nil, err
	}

	now := timeNow().UTC()
	doc := exportDocument{ExportedAt: now, Items: make([]exportItem, 0, len(records))}
	for _, r := range records {
		doc.Items = append(doc.Items, exportItem{
			Code:        r.Code,
			FileID:      r.FileID,
			Kind:        string(r.Kind),
			Title:       r.Title,
			Description: r.Description,
			AddedBy:     r.AddedBy,
			AddedAt:     r.AddedAt,
		})
	}

	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}

	client, presignClient, err := s.getS3Clients(ctx)
	if err != nil {
		return nil, fmt.Errorf("s3 config: %w", err)
	}

	bucket := s.config.S3Bucket
	key := ExportKey(now)

	if _, err := putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	}); err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(exportLinkTTL))
	if err != nil {
		return nil, fmt.Errorf("presign export: %w", err)
	}

	s.logger.Info(ctx, "catalog exported", "key", key, "records", len(records))

	return &ExportResult{Key: key, URL: req.URL, Records: len(records)}, nil
}
