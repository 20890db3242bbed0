package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adnalow/next-level/internal/client"
	"github.com/adnalow/next-level/internal/model"
)

// UploadService stores resumes in object storage and hands back the public
// URL applications reference.
type UploadService struct {
	r2Client client.StorageClient
}

func NewUploadService(r2Client client.StorageClient) *UploadService {
	return &UploadService{
		r2Client: r2Client,
	}
}

// UploadResume uploads a resume file and returns its URL.
func (s *UploadService) UploadResume(ctx context.Context, userID, filename string, file io.Reader) (*model.UploadResumeResponse, error) {
	resumeID := uuid.New().String()

	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".pdf"
	}
	key := fmt.Sprintf("resumes/%s/%s%s", userID, resumeID, ext)

	// Use mock response if client is not configured
	if s.r2Client == nil {
		return s.uploadMock(resumeID, key)
	}

	fileURL, err := s.r2Client.Upload(ctx, key, file, contentTypeForExt(ext))
	if err != nil {
		return nil, fmt.Errorf("failed to upload resume: %w", err)
	}

	return &model.UploadResumeResponse{
		ID:        resumeID,
		FileURL:   fileURL,
		CreatedAt: time.Now(),
	}, nil
}

func contentTypeForExt(ext string) string {
	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}

// Mock implementation for development/testing
func (s *UploadService) uploadMock(resumeID, key string) (*model.UploadResumeResponse, error) {
	return &model.UploadResumeResponse{
		ID:        resumeID,
		FileURL:   fmt.Sprintf("https://cdn.next-level.app/%s", key),
		CreatedAt: time.Now(),
	}, nil
}
