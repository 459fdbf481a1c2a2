package service

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"quizlive/internal/model"
	"quizlive/internal/repository"
)

// BlockService handles question-block authoring
type BlockService struct {
	blockRepo repository.BlockRepo
}

// NewBlockService creates a new block service
func NewBlockService(blockRepo repository.BlockRepo) *BlockService {
	return &BlockService{blockRepo: blockRepo}
}

// CreateBlock validates and persists a new block owned by the host
func (s *BlockService) CreateBlock(ctx context.Context, ownerID string, block *model.Block) (*model.Block, error) {
	if block.Name == "" {
		return nil, fmt.Errorf("block name is required")
	}
	if err := validateQuestions(block.Questions); err != nil {
		return nil, err
	}
	block.OwnerID = ownerID
	for i := range block.Questions {
		if block.Questions[i].ID == "" {
			block.Questions[i].ID = primitive.NewObjectID().Hex()
		}
	}
	if err := s.blockRepo.Create(ctx, block); err != nil {
		return nil, fmt.Errorf("failed to create block: %w", err)
	}
	return block, nil
}

// GetBlock retrieves a block, enforcing ownership
func (s *BlockService) GetBlock(ctx context.Context, ownerID, blockID string) (*model.Block, error) {
	block, err := s.blockRepo.GetByID(ctx, blockID)
	if err != nil {
		return nil, fmt.Errorf("failed to get block: %w", err)
	}
	if block == nil {
		return nil, nil
	}
	if block.OwnerID != ownerID {
		return nil, fmt.Errorf("unauthorized: not block owner")
	}
	return block, nil
}

// ListBlocks returns all blocks owned by the host
func (s *BlockService) ListBlocks(ctx context.Context, ownerID string) ([]*model.Block, error) {
	return s.blockRepo.ListByOwner(ctx, ownerID)
}

// UpdateBlock replaces a block's content, enforcing ownership
func (s *BlockService) UpdateBlock(ctx context.Context, ownerID string, block *model.Block) error {
	existing, err := s.GetBlock(ctx, ownerID, block.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("block not found")
	}
	if err := validateQuestions(block.Questions); err != nil {
		return err
	}
	block.OwnerID = ownerID
	block.CreatedAt = existing.CreatedAt
	for i := range block.Questions {
		if block.Questions[i].ID == "" {
			block.Questions[i].ID = primitive.NewObjectID().Hex()
		}
	}
	return s.blockRepo.Update(ctx, block)
}

// DeleteBlock removes a block, enforcing ownership
func (s *BlockService) DeleteBlock(ctx context.Context, ownerID, blockID string) error {
	existing, err := s.GetBlock(ctx, ownerID, blockID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("block not found")
	}
	return s.blockRepo.Delete(ctx, blockID)
}

func validateQuestions(questions []model.Question) error {
	for i, q := range questions {
		if q.Statement == "" {
			return fmt.Errorf("question %d: statement is required", i)
		}
		if len(q.Options) < 2 {
			return fmt.Errorf("question %d: at least two options required", i)
		}
		if q.CorrectOptionIndex < 0 || q.CorrectOptionIndex >= len(q.Options) {
			return fmt.Errorf("question %d: correct option index out of range", i)
		}
	}
	return nil
}
