package usagelog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/scienceol/cellbank/pkg/common/code"
	"github.com/scienceol/cellbank/pkg/middleware/logger"
	"github.com/scienceol/cellbank/pkg/repo"
	"github.com/scienceol/cellbank/pkg/repo/model"
)

const tubeNoColumn = "Used Tube No"

type csvImpl struct {
	path string
	mu   sync.Mutex
}

// NewCSV stores the log as a CSV file rewritten on every change.
func NewCSV(path string) repo.UsageLogRepo {
	return &csvImpl{path: path}
}

func (c *csvImpl) List(ctx context.Context) ([]*model.UsageEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.read(ctx)
}

func (c *csvImpl) Get(ctx context.Context, index int64) (*model.UsageEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := c.read(ctx)
	if err != nil {
		return nil, err
	}
	if index < 1 || index > int64(len(entries)) {
		return nil, code.UsageNotFound.WithMsgf("index %d", index)
	}
	return entries[index-1], nil
}

func (c *csvImpl) Append(ctx context.Context, entry *model.UsageEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := c.read(ctx)
	if err != nil {
		return err
	}
	entries = append(entries, entry)
	if err := c.write(ctx, entries); err != nil {
		return err
	}
	entry.Index = int64(len(entries))
	return nil
}

func (c *csvImpl) Update(ctx context.Context, entry *model.UsageEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := c.read(ctx)
	if err != nil {
		return err
	}
	if entry.Index < 1 || entry.Index > int64(len(entries)) {
		return code.UsageNotFound.WithMsgf("index %d", entry.Index)
	}
	entries[entry.Index-1] = entry
	return c.write(ctx, entries)
}

func (c *csvImpl) Delete(ctx context.Context, index int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := c.read(ctx)
	if err != nil {
		return err
	}
	if index < 1 || index > int64(len(entries)) {
		return code.UsageNotFound.WithMsgf("index %d", index)
	}
	entries = append(entries[:index-1], entries[index:]...)
	return c.write(ctx, entries)
}

// read loads the log; a log written before tube numbers were tracked is
// rewritten with the extra column. Caller holds mu.
func (c *csvImpl) read(ctx context.Context) ([]*model.UsageEntry, error) {
	f, err := os.Open(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*model.UsageEntry{}, nil
		}
		return nil, code.UsageLogReadErr.WithErr(err)
	}
	defer f.Close()

	header, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && header == "" {
		return []*model.UsageEntry{}, nil
	}
	if _, err := f.Seek(0, 0); err != nil {
		return nil, code.UsageLogReadErr.WithErr(err)
	}

	entries := []*model.UsageEntry{}
	if err := gocsv.UnmarshalFile(f, &entries); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return []*model.UsageEntry{}, nil
		}
		logger.Errorf(ctx, "read usage log %s err: %+v", c.path, err)
		return nil, code.UsageLogReadErr.WithErr(err)
	}
	for i, e := range entries {
		e.Index = int64(i + 1)
	}

	if !strings.Contains(header, tubeNoColumn) {
		logger.Infof(ctx, "usage log %s has no %q column, upgrading", c.path, tubeNoColumn)
		if err := c.write(ctx, entries); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// write replaces the file atomically and renumbers entries. Caller holds mu.
func (c *csvImpl) write(ctx context.Context, entries []*model.UsageEntry) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return code.UsageLogWriteErr.WithErr(err)
	}
	tmp := fmt.Sprintf("%s.%d.tmp", c.path, time.Now().UnixNano())
	f, err := os.Create(tmp)
	if err != nil {
		return code.UsageLogWriteErr.WithErr(err)
	}
	if err := gocsv.MarshalFile(&entries, f); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		logger.Errorf(ctx, "write usage log %s err: %+v", c.path, err)
		return code.UsageLogWriteErr.WithErr(err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return code.UsageLogWriteErr.WithErr(err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		_ = os.Remove(tmp)
		return code.UsageLogWriteErr.WithErr(err)
	}
	for i, e := range entries {
		e.Index = int64(i + 1)
	}
	return nil
}
