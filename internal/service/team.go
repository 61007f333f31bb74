package service

import (
	"fmt"

	"github.com/Mereki/three-point-predictor/internal/api"
	"github.com/Mereki/three-point-predictor/internal/domain"
)

type TeamService struct{}

func NewTeamService() *TeamService {
	return &TeamService{}
}

func (s *TeamService) ByAbbreviation(abbr string) (domain.Team, error) {
	t, ok := api.TeamByAbbreviation(abbr)
	if !ok {
		return domain.Team{}, fmt.Errorf("%w: %q", ErrTeamNotFound, abbr)
	}
	return t, nil
}

func (s *TeamService) ByID(id int) (domain.Team, error) {
	t, ok := api.TeamByID(id)
	if !ok {
		return domain.Team{}, fmt.Errorf("%w: id %d", ErrTeamNotFound, id)
	}
	return t, nil
}

func (s *TeamService) All() []domain.Team {
	return api.Teams()
}

func teamByID(id int) (domain.Team, bool) {
	return api.TeamByID(id)
}
