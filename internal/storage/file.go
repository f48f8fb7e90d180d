package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/yourname/rehabtracker/internal"
)

// FileStorage keeps daily logs in memory and writes them to a JSON file
// from a debounced background worker.
type FileStorage struct {
	logs         map[string]*internal.DailyLog // date -> DailyLog
	mu           sync.RWMutex
	saveMu       sync.Mutex // one writer of logsFile at a time
	logsFile     string
	saveChan     chan struct{}
	shutdownChan chan struct{}
	workerDone   chan struct{}
	closeOnce    sync.Once
	saveDelay    time.Duration
	now          func() time.Time
	logger       internal.Logger
}

func NewFileStorage(logsFile string, logger internal.Logger) (*FileStorage, error) {
	s := &FileStorage{
		logs:         make(map[string]*internal.DailyLog),
		logsFile:     logsFile,
		saveChan:     make(chan struct{}, 1),
		shutdownChan: make(chan struct{}),
		workerDone:   make(chan struct{}),
		saveDelay:    500 * time.Millisecond,
		now:          time.Now,
		logger:       logger,
	}

	if err := s.loadDailyLogs(); err != nil {
		logger.Errorf("storage: failed to load daily logs: %v", err)
		return nil, err
	}

	go s.saveWorker()

	return s, nil
}

func (s *FileStorage) loadDailyLogs() error {
	file, err := os.Open(s.logsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	var logs []*internal.DailyLog
	if err := json.NewDecoder(file).Decode(&logs); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range logs {
		date, err := internal.NormalizeDate(l.Date)
		if err != nil {
			return fmt.Errorf("storage: bad record in %s: %w", s.logsFile, err)
		}
		if _, dup := s.logs[date]; dup {
			return fmt.Errorf("storage: duplicate record for %s in %s", date, s.logsFile)
		}
		l.Date = date
		s.logs[date] = l
	}
	return nil
}

func atomicWriteFileJSON(filePath string, data interface{}) error {
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tempFile := filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

// saveDailyLogs snapshots the logs under the read lock; upserts mutate the
// stored records in place.
func (s *FileStorage) saveDailyLogs() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	logs := make([]internal.DailyLog, 0, len(s.logs))
	for _, l := range s.logs {
		logs = append(logs, l.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(logs, func(i, j int) bool { return logs[i].Date < logs[j].Date })
	return atomicWriteFileJSON(s.logsFile, logs)
}

func (s *FileStorage) saveWorker() {
	defer close(s.workerDone)
	timer := time.NewTimer(s.saveDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-s.saveChan:
			timer.Reset(s.saveDelay)
		case <-timer.C:
			if err := s.saveDailyLogs(); err != nil {
				s.logger.Errorf("storage: error saving daily logs: %v", err)
			}
		case <-s.shutdownChan:
			return
		}
	}
}

func (s *FileStorage) signalSave() {
	select {
	case s.saveChan <- struct{}{}:
	default:
	}
}

// Close stops the worker and writes pending changes synchronously.
func (s *FileStorage) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.shutdownChan)
		<-s.workerDone
		err = s.saveDailyLogs()
	})
	return err
}

// --- DailyLogRepository ---
func (s *FileStorage) UpsertDailyLog(ctx context.Context, date string, patch *internal.DailyLogPatch) (*internal.DailyLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	l, ok := s.logs[date]
	if !ok {
		created := internal.NewDailyLog(date)
		created.CreatedAt = now
		l = &created
		s.logs[date] = l
	}
	patch.ApplyTo(l)
	l.UpdatedAt = now
	s.signalSave()

	out := l.Clone()
	return &out, nil
}

func (s *FileStorage) GetDailyLog(ctx context.Context, date string) (*internal.DailyLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.logs[date]
	if !ok {
		return nil, fmt.Errorf("storage: daily log %s: %w", date, internal.ErrNotFound)
	}
	out := l.Clone()
	return &out, nil
}

func (s *FileStorage) ListDailyLogs(ctx context.Context, from, to string) ([]internal.DailyLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	logs := []internal.DailyLog{}
	for date, l := range s.logs {
		if from != "" && date < from {
			continue
		}
		if to != "" && date > to {
			continue
		}
		logs = append(logs, l.Clone())
	}
	sort.Slice(logs, func(i, j int) bool { return logs[i].Date > logs[j].Date })
	return logs, nil
}

func (s *FileStorage) LatestDailyLogBefore(ctx context.Context, date string) (*internal.DailyLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *internal.DailyLog
	for d, l := range s.logs {
		if d < date && (latest == nil || d > latest.Date) {
			latest = l
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("storage: no daily log before %s: %w", date, internal.ErrNotFound)
	}
	out := latest.Clone()
	return &out, nil
}

func (s *FileStorage) DeleteDailyLog(ctx context.Context, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.logs[date]; !ok {
		return fmt.Errorf("storage: daily log %s: %w", date, internal.ErrNotFound)
	}
	delete(s.logs, date)
	s.signalSave()
	return nil
}

// --- Compile-time assertions ---
var _ Store = (*FileStorage)(nil)
