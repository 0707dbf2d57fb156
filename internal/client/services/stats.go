package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/docadmin/internal/client/client"
	"github.com/dmitrijs2005/docadmin/internal/client/models"
)

const homeStatPath = "/api/home/pdf_article_stat"

type StatService struct {
	client client.Client
}

func NewStatService(c client.Client) *StatService {
	return &StatService{client: c}
}

// Home returns the dashboard counters. A missing daily series decodes as
// empty.
func (s *StatService) Home(ctx context.Context) (models.HomeStat, error) {
	var st models.HomeStat
	if err := s.client.Get(ctx, homeStatPath, nil, &st); err != nil {
		return models.HomeStat{}, fmt.Errorf("home stats: %w", err)
	}
	if st.DailyAccessStats == nil {
		st.DailyAccessStats = []models.DailyAccessStat{}
	}
	return st, nil
}
