package service

import (
	"context"
	"fmt"

	"github.com/timmy/contentfactory/internal/config"
	"github.com/timmy/contentfactory/internal/dedup"
	"github.com/timmy/contentfactory/internal/domain"
	"github.com/timmy/contentfactory/internal/logger"
	"github.com/timmy/contentfactory/internal/repository"
)

// QualityScanner runs the near-duplicate pass over generated articles and
// records findings as pending quality flags.
type QualityScanner struct {
	repos *repository.Repositories
	cfg   config.QualityConfig
}

// NewQualityScanner creates a QualityScanner.
func NewQualityScanner(repos *repository.Repositories, cfg config.QualityConfig) *QualityScanner {
	return &QualityScanner{repos: repos, cfg: cfg}
}

// ScanRequest selects the articles to compare. QueueID wins over BatchIDs.
type ScanRequest struct {
	QueueID   string
	BatchIDs  []string
	NgramSize int
	Threshold int
}

// ScanResult summarizes a scan.
type ScanResult struct {
	Scanned    int               `json:"scanned"`
	Collisions []dedup.Collision `json:"collisions"`
	FlagIDs    []string          `json:"flag_ids"`
}

// ScanDuplicates compares every pair of the selected articles and stores a
// flag per collision.
func (s *QualityScanner) ScanDuplicates(ctx context.Context, req ScanRequest) (*ScanResult, error) {
	ctx = logger.SetComponent(ctx, "quality")

	var (
		articles []domain.GeneratedArticle
		err      error
	)
	switch {
	case req.QueueID != "":
		ctx = logger.SetQueueID(ctx, req.QueueID)
		articles, err = s.repos.Articles.ByQueue(ctx, req.QueueID, s.cfg.MaxScanArticles)
	case len(req.BatchIDs) > 0:
		articles, err = s.repos.Articles.ByIDs(ctx, req.BatchIDs, s.cfg.MaxScanArticles)
	default:
		return nil, fmt.Errorf("%w: queue_id or batch_ids is required", ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("load articles: %w", err)
	}

	n := req.NgramSize
	if n <= 0 {
		n = s.cfg.NgramSize
	}
	threshold := req.Threshold
	if threshold <= 0 {
		threshold = s.cfg.Threshold
	}

	docs := make([]dedup.Document, len(articles))
	for i, a := range articles {
		docs[i] = dedup.Document{ID: a.ID, HTML: a.FullHTMLBody}
	}
	collisions := dedup.Scan(docs, n, threshold)

	result := &ScanResult{Scanned: len(articles), Collisions: collisions, FlagIDs: []string{}}
	for _, c := range collisions {
		flag := &domain.QualityFlag{
			QueueID:        req.QueueID,
			ArticleAID:     c.ArticleA,
			ArticleBID:     c.ArticleB,
			SharedShingles: domain.StringArray(c.SharedShingles),
			SharedCount:    c.SharedCount,
			Similarity:     c.Similarity,
			Status:         domain.QualityFlagPending,
		}
		if err := s.repos.Flags.Create(ctx, flag); err != nil {
			return nil, fmt.Errorf("save quality flag: %w", err)
		}
		result.FlagIDs = append(result.FlagIDs, flag.ID)
	}

	logger.With(logger.Fields{logger.FieldCount: len(collisions)}).
		Info(ctx, "Scanned %d articles (n=%d, threshold=%d)", len(articles), n, threshold)
	return result, nil
}
