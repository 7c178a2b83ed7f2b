// file: internal/services/file_service.go
package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"visualverse/internal/config"
	"visualverse/internal/validation"

	"github.com/cenkalti/backoff/v4"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

const uploadTimeout = 2 * time.Minute

// fileService uploads doodle images to Cloudinary
type fileService struct {
	cloudinary *cloudinary.Cloudinary
	cfg        config.CloudinaryConfig
	logger     *zap.Logger
}

// NewFileService creates a new file service backed by Cloudinary
func NewFileService(cld *cloudinary.Cloudinary, cfg config.CloudinaryConfig, logger *zap.Logger) FileService {
	return &fileService{
		cloudinary: cld,
		cfg:        cfg,
		logger:     logger,
	}
}

// UploadImage uploads a doodle image. Transient upload failures are
// retried with exponential backoff up to the configured limit.
func (s *fileService) UploadImage(ctx context.Context, req *UploadImageRequest) (*UploadImageResult, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid upload request", err)
	}
	if err := validateFilename(req.Filename); err != nil {
		return nil, NewValidationError(err.Error(), nil)
	}

	uploadCtx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	params := uploader.UploadParams{
		Folder:         s.uploadFolder(req.Folder, req.UserID),
		ResourceType:   "image",
		UseFilename:    boolPtr(false),
		UniqueFilename: boolPtr(true),
		Tags:           []string{"visualverse", "doodle"},
	}

	var result *uploader.UploadResult
	operation := func() error {
		var err error
		result, err = s.cloudinary.Upload.Upload(uploadCtx, req.Reader, params)
		return err
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(s.cfg.MaxRetries)),
		uploadCtx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		s.logger.Error("Failed to upload image",
			zap.Int64("user_id", req.UserID),
			zap.String("filename", req.Filename),
			zap.Error(err),
		)
		return nil, NewInternalError("failed to upload image")
	}

	s.logger.Info("Image uploaded",
		zap.Int64("user_id", req.UserID),
		zap.String("public_id", result.PublicID),
		zap.Int("bytes", result.Bytes),
	)
	return &UploadImageResult{
		URL:      result.SecureURL,
		PublicID: result.PublicID,
		Bytes:    int64(result.Bytes),
	}, nil
}

// DeleteImage removes an uploaded image
func (s *fileService) DeleteImage(ctx context.Context, publicID string) error {
	if publicID == "" {
		return NewValidationError("public ID is required", nil)
	}

	deleteCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	result, err := s.cloudinary.Upload.Destroy(deleteCtx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		s.logger.Error("Failed to delete image",
			zap.String("public_id", publicID),
			zap.Error(err),
		)
		return NewInternalError("failed to delete image")
	}
	if result.Result != "ok" {
		return NewInternalError("image deletion was not successful")
	}
	return nil
}

// uploadFolder builds a dated per-user folder path
func (s *fileService) uploadFolder(base string, userID int64) string {
	if base == "" {
		base = "doodles"
	}
	now := time.Now()
	return fmt.Sprintf("visualverse/%s/%d/%02d/user_%d", base, now.Year(), now.Month(), userID)
}

func validateFilename(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename is required")
	}
	for _, pattern := range []string{"../", "..\\", "<", ">", "|", "?", "*"} {
		if strings.Contains(filename, pattern) {
			return fmt.Errorf("filename contains invalid characters")
		}
	}
	if filepath.Ext(filename) == "" {
		return fmt.Errorf("file must have an extension")
	}
	return nil
}

func boolPtr(b bool) *bool { return &b }
