package favorites

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Service toggles favorite membership against the repository. Cached
// membership is only invalidated after the write succeeds, so a failed write
// never flips what the client sees.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

func NewService(repo Repository, cache Cache, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, cache: cache, log: log}
}

func (s *Service) List(ctx context.Context, sessionID string) ([]string, error) {
	ids, err := s.cache.Get(ctx, sessionID)
	if err == nil {
		return ids, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		s.log.Warn("favorites cache get failed", slog.Any("err", err))
	}

	ids, err = s.repo.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	go func() {
		if errSet := s.cache.Set(context.Background(), sessionID, ids); errSet != nil {
			s.log.Warn("favorites cache set failed", slog.Any("err", errSet))
		}
	}()

	return ids, nil
}

func (s *Service) IsFavorite(ctx context.Context, sessionID, productID string) (bool, error) {
	ids, err := s.List(ctx, sessionID)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == productID {
			return true, nil
		}
	}
	return false, nil
}

// Toggle flips membership of productID and reports the new state. The
// repository is the source of truth for the pre-toggle membership check.
func (s *Service) Toggle(ctx context.Context, sessionID, productID string) (bool, error) {
	ids, err := s.repo.List(ctx, sessionID)
	if err != nil {
		return false, err
	}
	isFav := false
	for _, id := range ids {
		if id == productID {
			isFav = true
			break
		}
	}

	if isFav {
		if err := s.repo.Remove(ctx, sessionID, productID); err != nil {
			return true, err
		}
	} else {
		if err := s.repo.Add(ctx, sessionID, productID); err != nil {
			return false, err
		}
	}

	s.invalidate(sessionID)
	return !isFav, nil
}

func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if err := s.repo.Clear(ctx, sessionID); err != nil {
		return err
	}
	s.invalidate(sessionID)
	return nil
}

func (s *Service) invalidate(sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, sessionID); err != nil {
		s.log.Warn("favorites cache invalidate failed", slog.Any("err", err))
	}
}
