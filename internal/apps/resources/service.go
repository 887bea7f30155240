package resources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/btechub/portal-backend/internal/apps"
	"github.com/btechub/portal-backend/internal/apps/achievements"
	"github.com/google/uuid"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

var ErrInvalidResource = errors.New("title and a valid file url are required")

type Service struct {
	store    Store
	progress apps.Progress
}

func NewService(store Store, progress apps.Progress) *Service {
	if progress == nil {
		progress = apps.NoProgress{}
	}
	return &Service{store: store, progress: progress}
}

func (s *Service) List(ctx context.Context, f Filter) (*Page, error) {
	f.Subject = strings.TrimSpace(f.Subject)
	f.Unit = strings.TrimSpace(f.Unit)
	f.Query = strings.TrimSpace(f.Query)
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	f.Limit = min(f.Limit, MaxPageSize)
	f.Offset = max(f.Offset, 0)

	items, total, err := s.store.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	if items == nil {
		items = []Resource{}
	}
	return &Page{Resources: items, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Resource, error) {
	return s.store.Get(ctx, id)
}

// Download counts a download and returns the file URL. Signed-in users earn
// first_resource and bookworm progress.
func (s *Service) Download(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (string, int64, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return "", 0, err
	}
	downloads, err := s.store.IncrementDownloads(ctx, id)
	if err != nil {
		return "", 0, fmt.Errorf("count download: %w", err)
	}

	if userID != nil {
		for _, achievementID := range []string{achievements.FirstResource, achievements.Bookworm} {
			if err := s.progress.Increment(ctx, *userID, achievementID, 1); err != nil {
				slog.Error("resource progress failed", "user_id", userID.String(), "achievement", achievementID, "error", err)
			}
		}
	}
	return r.FileURL, downloads, nil
}

func (s *Service) Create(ctx context.Context, r *Resource, uploader *uuid.UUID) error {
	r.Title = strings.TrimSpace(r.Title)
	r.FileURL = strings.TrimSpace(r.FileURL)
	if r.Title == "" || !validFileURL(r.FileURL) {
		return ErrInvalidResource
	}
	if r.FileType == "" {
		r.FileType = fileType(r.FileURL)
	}
	r.ID = uuid.Nil
	r.Downloads = 0
	r.UploadedBy = uploader
	if err := s.store.Create(ctx, r); err != nil {
		return fmt.Errorf("create resource: %w", err)
	}
	slog.Info("resource created", "resource_id", r.ID.String(), "subject", r.Subject, "unit", r.Unit)
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}

func validFileURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "https" || u.Scheme == "http") && u.Host != ""
}

// fileType guesses the type from the URL path extension, e.g. "pdf".
func fileType(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	path := u.Path
	if i := strings.LastIndex(path, "."); i >= 0 && i > strings.LastIndex(path, "/") {
		return strings.ToLower(path[i+1:])
	}
	return ""
}
