package backup

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"messagely/internal/storage"
)

const (
	snapshotSuffix = ".db"
	// fixed width so lexical key order is chronological
	snapshotStamp = "20060102T150405.000000000Z"
)

// SnapshotFunc writes a consistent copy of the database to dest.
type SnapshotFunc func(ctx context.Context, dest string) error

// Manager periodically snapshots the database and ships it to object storage.
type Manager interface {
	Start(ctx context.Context) error
	Shutdown()
	// RunOnce takes one snapshot, uploads it and prunes old ones.
	RunOnce(ctx context.Context) (string, error)
}

type Config struct {
	Dir       string
	Interval  time.Duration
	Retain    int
	Bucket    string
	KeyPrefix string
	Logger    *logrus.Logger
}

type manager struct {
	cfg      Config
	snapshot SnapshotFunc
	storage  storage.Service
	now      func() time.Time

	wg     sync.WaitGroup
	cancel context.CancelFunc
	runMu  sync.Mutex
	last   time.Time
}

func NewManager(cfg Config, snapshot SnapshotFunc, store storage.Service) Manager {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Retain <= 0 {
		cfg.Retain = 24
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	cfg.KeyPrefix = strings.Trim(cfg.KeyPrefix, "/")
	return &manager{
		cfg:      cfg,
		snapshot: snapshot,
		storage:  store,
		now:      time.Now,
	}
}

func (m *manager) Start(ctx context.Context) error {
	if err := os.MkdirAll(m.cfg.Dir, 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				if _, err := m.RunOnce(loopCtx); err != nil {
					m.cfg.Logger.Warnf("backup failed: %v", err)
				}
			}
		}
	}()

	m.cfg.Logger.Infof("backup manager started, every %s to s3://%s/%s", m.cfg.Interval, m.cfg.Bucket, m.cfg.KeyPrefix)
	return nil
}

func (m *manager) Shutdown() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	m.cfg.Logger.Info("backup manager stopped")
}

func (m *manager) RunOnce(ctx context.Context) (string, error) {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	name := "messagely-" + m.nextStamp().Format(snapshotStamp) + snapshotSuffix
	local := filepath.Join(m.cfg.Dir, name)
	defer os.Remove(local)

	if err := m.snapshot(ctx, local); err != nil {
		return "", fmt.Errorf("snapshot: %w", err)
	}

	key := name
	if m.cfg.KeyPrefix != "" {
		key = path.Join(m.cfg.KeyPrefix, name)
	}
	location, err := m.storage.UploadFile(ctx, local, m.cfg.Bucket, key)
	if err != nil {
		return "", err
	}
	m.cfg.Logger.WithField("location", location).Info("backup uploaded")

	if err := m.prune(ctx); err != nil {
		m.cfg.Logger.Warnf("prune backups: %v", err)
	}
	return location, nil
}

// nextStamp returns a time strictly after the previous snapshot's, so two runs
// never share a key. Callers hold runMu.
func (m *manager) nextStamp() time.Time {
	ts := m.now().UTC()
	if !ts.After(m.last) {
		ts = m.last.Add(time.Nanosecond)
	}
	m.last = ts
	return ts
}

// prune keeps the newest Retain snapshots. Keys embed a sortable UTC timestamp.
func (m *manager) prune(ctx context.Context) error {
	prefix := m.cfg.KeyPrefix
	if prefix != "" {
		prefix += "/"
	}
	objects, err := m.storage.ListObjects(ctx, m.cfg.Bucket, prefix)
	if err != nil {
		return err
	}

	var keys []string
	for _, obj := range objects {
		if strings.HasSuffix(obj.Key, snapshotSuffix) {
			keys = append(keys, obj.Key)
		}
	}
	if len(keys) <= m.cfg.Retain {
		return nil
	}
	sort.Strings(keys)
	stale := keys[:len(keys)-m.cfg.Retain]
	if err := m.storage.DeleteObjects(ctx, m.cfg.Bucket, stale); err != nil {
		return err
	}
	m.cfg.Logger.Infof("pruned %d old backups", len(stale))
	return nil
}
