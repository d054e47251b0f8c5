package firms

import (
	"context"
	"errors"
	"strings"

	"multinvest-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNameRequired = errors.New("Firm name is required")
	ErrFirmNotFound = errors.New("Firm not found")
)

type Service struct {
	DB *gorm.DB
}

// CreateFirmInput is the admin form for a new opportunity.
type CreateFirmInput struct {
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description"`
	ImageURL    string `json:"image_url" form:"image_url"`
}

// List returns every firm ordered by name.
func (s *Service) List(ctx context.Context) ([]domain.Firm, error) {
	firms := []domain.Firm{}
	if err := s.DB.WithContext(ctx).Order("name ASC").Find(&firms).Error; err != nil {
		return nil, err
	}
	return firms, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Firm, error) {
	var f domain.Firm
	if err := s.DB.WithContext(ctx).Where("firm_id = ?", id).First(&f).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFirmNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (s *Service) Create(ctx context.Context, in CreateFirmInput) (*domain.Firm, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	f := &domain.Firm{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		ImageURL:    strings.TrimSpace(in.ImageURL),
	}
	if err := s.DB.WithContext(ctx).Create(f).Error; err != nil {
		return nil, err
	}
	return f, nil
}
