package picklist

import (
	"bytes"
	"context"
	"path"
	"strings"
	"time"

	"github.com/kbukum/liquidkit/logger"
	"github.com/kbukum/liquidkit/resilience"
	"github.com/kbukum/liquidkit/storage"
)

// Store reads pick-lists from object storage, retrying transient read failures.
type Store struct {
	storage storage.Storage
	retry   resilience.RetryConfig
	log     *logger.Logger
}

// NewStore creates a Store over s. A zero retry config uses the defaults.
func NewStore(s storage.Storage, retry resilience.RetryConfig, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	retry.ApplyDefaults()
	return &Store{storage: s, retry: retry, log: log.WithComponent("picklist")}
}

// Load downloads and parses the pick-list stored under name.
// Only the download is retried; a malformed file fails immediately.
func (s *Store) Load(ctx context.Context, name string, opts Options) (*PickList, error) {
	cfg := s.retry
	cfg.OnRetry = func(attempt int, err error, backoff time.Duration) {
		s.log.Warn("pick-list read failed, retrying", logger.Fields(
			logger.FieldBatch, name,
			"attempt", attempt,
			"backoff", backoff.String(),
			logger.FieldError, err.Error(),
		))
	}

	data, err := resilience.Retry(ctx, cfg, func() ([]byte, error) {
		return storage.ReadAll(ctx, s.storage, name)
	})
	if err != nil {
		return nil, err
	}

	list, err := Parse(path.Base(name), bytes.NewReader(data), opts)
	if err != nil {
		return nil, err
	}
	s.log.Info("pick-list loaded", logger.Fields(
		logger.FieldBatch, name,
		"rows", list.Len(),
		logger.FieldVolume, list.TotalVolume(),
	))
	return list, nil
}

// Names returns the stored objects under prefix that look like pick-lists.
func (s *Store) Names(ctx context.Context, prefix string) ([]string, error) {
	files, err := s.storage.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, f := range files {
		if strings.EqualFold(path.Ext(f.Path), ".csv") {
			names = append(names, f.Path)
		}
	}
	return names, nil
}
