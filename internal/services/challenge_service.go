// file: internal/services/challenge_service.go
package services

import (
	"context"

	"visualverse/internal/models"
	"visualverse/internal/repositories"
	"visualverse/internal/validation"

	"go.uber.org/zap"
)

// challengeService manages the DSA drawing challenge catalog
type challengeService struct {
	challenges repositories.ChallengeRepository
	logger     *zap.Logger
}

// NewChallengeService creates a new challenge service
func NewChallengeService(challenges repositories.ChallengeRepository, logger *zap.Logger) ChallengeService {
	return &challengeService{
		challenges: challenges,
		logger:     logger,
	}
}

// GetChallenge returns one challenge
func (s *challengeService) GetChallenge(ctx context.Context, id int64) (*models.Challenge, error) {
	challenge, err := s.challenges.GetByID(ctx, id)
	if err != nil {
		return nil, NewInternalError("failed to load challenge")
	}
	if challenge == nil {
		return nil, NewNotFoundError("challenge not found")
	}
	return challenge, nil
}

// ListChallenges returns a page of active challenges
func (s *challengeService) ListChallenges(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.Challenge], error) {
	page, err := s.challenges.ListActive(ctx, params)
	if err != nil {
		return nil, NewInternalError("failed to list challenges")
	}
	return page, nil
}

// CreateChallenge adds a challenge to the catalog
func (s *challengeService) CreateChallenge(ctx context.Context, req *CreateChallengeRequest) (*models.Challenge, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid challenge definition", err)
	}

	challenge := &models.Challenge{
		Title:       req.Title,
		Prompt:      req.Prompt,
		Description: req.Description,
		Category:    req.Category,
		Difficulty:  req.Difficulty,
		Tags:        req.Tags,
		Points:      req.Points,
		TimeLimit:   req.TimeLimit,
		IsActive:    true,
	}
	if err := s.challenges.Create(ctx, challenge); err != nil {
		return nil, NewInternalError("failed to create challenge")
	}

	s.logger.Info("Challenge created",
		zap.Int64("challenge_id", challenge.ID),
		zap.String("title", challenge.Title),
	)
	return challenge, nil
}
