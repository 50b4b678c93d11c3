package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/resitasrav/BookLab-System/internal/dto"
	"github.com/resitasrav/BookLab-System/internal/model"
	"github.com/resitasrav/BookLab-System/internal/repository"
)

var ErrAnnouncementNotFound = errors.New("公告不存在")

// AnnouncementService 公告业务接口
type AnnouncementService interface {
	Create(ctx context.Context, req *dto.CreateAnnouncementRequest) (*dto.AnnouncementResponse, error)
	List(ctx context.Context, activeOnly bool) ([]dto.AnnouncementResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateAnnouncementRequest) (*dto.AnnouncementResponse, error)
	Delete(ctx context.Context, id string) error
}

type announcementService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAnnouncementService 创建 AnnouncementService 实例
func NewAnnouncementService(repo *repository.Repository, logger *zap.Logger) AnnouncementService {
	return &announcementService{repo: repo, logger: logger}
}

func (s *announcementService) Create(ctx context.Context, req *dto.CreateAnnouncementRequest) (*dto.AnnouncementResponse, error) {
	a := &model.Announcement{Title: req.Title, Content: req.Content, IsActive: true}
	if err := s.repo.Announcement.Create(ctx, a); err != nil {
		s.logger.Error("发布公告失败", zap.Error(err))
		return nil, err
	}
	return toAnnouncementResponse(a), nil
}

func (s *announcementService) List(ctx context.Context, activeOnly bool) ([]dto.AnnouncementResponse, error) {
	list, err := s.repo.Announcement.List(ctx, activeOnly)
	if err != nil {
		s.logger.Error("列出公告失败", zap.Error(err))
		return nil, err
	}
	out := make([]dto.AnnouncementResponse, 0, len(list))
	for i := range list {
		out = append(out, *toAnnouncementResponse(&list[i]))
	}
	return out, nil
}

func (s *announcementService) Update(ctx context.Context, id string, req *dto.UpdateAnnouncementRequest) (*dto.AnnouncementResponse, error) {
	a, err := s.repo.Announcement.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnnouncementNotFound
		}
		s.logger.Error("查询公告失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if req.Title != nil {
		a.Title = *req.Title
	}
	if req.Content != nil {
		a.Content = *req.Content
	}
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}
	if err := s.repo.Announcement.Update(ctx, a); err != nil {
		s.logger.Error("更新公告失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toAnnouncementResponse(a), nil
}

func (s *announcementService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Announcement.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAnnouncementNotFound
		}
		return err
	}
	if err := s.repo.Announcement.Delete(ctx, id); err != nil {
		s.logger.Error("删除公告失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func toAnnouncementResponse(a *model.Announcement) *dto.AnnouncementResponse {
	return &dto.AnnouncementResponse{
		ID:        a.AnnouncementID,
		Title:     a.Title,
		Content:   a.Content,
		IsActive:  a.IsActive,
		CreatedAt: formatTime(a.CreatedAt),
	}
}
