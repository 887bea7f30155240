package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/btechub/portal-backend/internal/dto"
	"github.com/btechub/portal-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrReportNotFound  = errors.New("report not found")
	ErrInvalidReport   = errors.New("invalid report")
	ErrDuplicateReport = errors.New("content already reported by this user")
	ErrSelfReport      = errors.New("cannot report your own content")
)

// TimeoutDuration is how long a user is blocked from chat after one violation.
// There is no escalation for repeat offenders.
const TimeoutDuration = 5 * time.Minute

// BannedWords is matched as a plain lower-cased substring, so "classic"
// would match "ass". That is why "ass" is not on the list.
var BannedWords = []string{
	// English
	"fuck", "shit", "bitch", "bastard", "asshole", "cunt", "dick", "pussy",
	"whore", "slut", "motherfucker", "nigger", "faggot", "retard",
	// Arabic
	"كس امك", "يلعن", "ابن الكلب", "حمار", "غبي", "حقير", "منيوك", "شرموط",
	"قحبة", "زبالة", "تفو",
}

// ContentVerdict is the result of screening one chat message.
// Term is for logs only and is never shown to users.
type ContentVerdict struct {
	Safe           bool   `json:"safe"`
	TimeoutRequest bool   `json:"timeout_request,omitempty"`
	Term           string `json:"-"`
}

// ReportStore persists user reports.
type ReportStore interface {
	Create(report *models.Report) error
	Exists(reporterID uuid.UUID, contentType, contentID string) (bool, error)
	List(status string, limit, offset int) ([]models.Report, int64, error)
	UpdateStatus(id uuid.UUID, status, note string) (bool, error)
}

type ModerationService struct {
	words   []string
	reports ReportStore
}

func NewModerationService(db *gorm.DB) *ModerationService {
	return NewModerationServiceWithStore(&gormReportStore{db: db})
}

func NewModerationServiceWithStore(reports ReportStore) *ModerationService {
	words := make([]string, 0, len(BannedWords))
	for _, w := range BannedWords {
		words = append(words, strings.ToLower(w))
	}
	return &ModerationService{words: words, reports: reports}
}

// CheckMessageContent lower-cases text and reports the first banned term it
// contains. No normalisation: spacing or leetspeak slips through.
func (ms *ModerationService) CheckMessageContent(text string) ContentVerdict {
	lowered := strings.ToLower(text)
	for _, w := range ms.words {
		if strings.Contains(lowered, w) {
			return ContentVerdict{Safe: false, TimeoutRequest: true, Term: w}
		}
	}
	return ContentVerdict{Safe: true}
}

// TimeoutUntil is the end of the timeout window for a violation at now.
func TimeoutUntil(now time.Time) time.Time {
	return now.Add(TimeoutDuration)
}

// IsTimedOut reports whether until is set and still in the future.
func IsTimedOut(until *time.Time, now time.Time) bool {
	return until != nil && until.After(now)
}

var reportContentTypes = map[string]bool{"message": true, "user": true, "resource": true}

func (s *ModerationService) CreateReport(reporterID uuid.UUID, req *dto.CreateReportRequest) (*models.Report, error) {
	if !reportContentTypes[req.ContentType] {
		return nil, fmt.Errorf("%w: content_type must be message, user, or resource", ErrInvalidReport)
	}
	if strings.TrimSpace(req.ContentID) == "" || strings.TrimSpace(req.Reason) == "" {
		return nil, fmt.Errorf("%w: content_id and reason are required", ErrInvalidReport)
	}

	exists, err := s.reports.Exists(reporterID, req.ContentType, req.ContentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing reports: %w", err)
	}
	if exists {
		return nil, ErrDuplicateReport
	}

	report := models.Report{
		ID:          uuid.New(),
		ReporterID:  reporterID,
		ContentType: req.ContentType,
		ContentID:   req.ContentID,
		ChannelID:   req.ChannelID,
		Reason:      strings.TrimSpace(req.Reason),
		Status:      models.ReportPending,
	}
	if err := s.reports.Create(&report); err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}
	return &report, nil
}

func (s *ModerationService) ListReports(status string, limit, offset int) ([]models.Report, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.reports.List(status, limit, offset)
}

func (s *ModerationService) ActionReport(reportID uuid.UUID, req *dto.ActionReportRequest) error {
	switch req.Status {
	case models.ReportReviewed, models.ReportActioned, models.ReportDismissed:
	default:
		return fmt.Errorf("%w: status must be reviewed, actioned, or dismissed", ErrInvalidReport)
	}

	found, err := s.reports.UpdateStatus(reportID, req.Status, req.AdminNote)
	if err != nil {
		return err
	}
	if !found {
		return ErrReportNotFound
	}
	return nil
}

type gormReportStore struct {
	db *gorm.DB
}

func (s *gormReportStore) Create(report *models.Report) error {
	return s.db.Create(report).Error
}

func (s *gormReportStore) Exists(reporterID uuid.UUID, contentType, contentID string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Report{}).
		Where("reporter_id = ? AND content_type = ? AND content_id = ?", reporterID, contentType, contentID).
		Count(&count).Error
	return count > 0, err
}

func (s *gormReportStore) List(status string, limit, offset int) ([]models.Report, int64, error) {
	var reports []models.Report
	var total int64

	query := s.db.Model(&models.Report{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (s *gormReportStore) UpdateStatus(id uuid.UUID, status, note string) (bool, error) {
	result := s.db.Model(&models.Report{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"admin_note": note,
		})
	return result.RowsAffected > 0, result.Error
}
