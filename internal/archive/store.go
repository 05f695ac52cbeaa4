package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"hr-ledger/config"
)

// ErrNotFound the named archive does not exist
var ErrNotFound = errors.New("archive not found")

// Info one stored archive
type Info struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Store keeps snapshot archives by name.
// Implementations stream through io.Reader/io.Writer.
type Store interface {
	// Put stores the bytes of r under name, replacing any previous archive
	Put(ctx context.Context, name string, r io.Reader) error
	// Get writes the archive to w; ErrNotFound when it is missing
	Get(ctx context.Context, name string, w io.Writer) error
	// List returns the archives, newest first
	List(ctx context.Context) ([]Info, error)
}

// NewStoreFromConfig builds the store selected by archive.type
func NewStoreFromConfig(ctx context.Context, cfg *config.ArchiveConfig) (Store, error) {
	switch cfg.Type {
	case "filesystem":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("filesystem archive requires archive.dir to be set")
		}
		return NewFileSystemStore(cfg.Dir)
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 archive requires archive.s3_bucket to be set")
		}
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown archive type: %s", cfg.Type)
	}
}

// Name builds the archive name of a snapshot taken at t.
// Encrypted archives get the .age suffix.
func Name(t time.Time, encrypted bool) string {
	name := "ledger-" + t.UTC().Format("20060102T150405Z") + ".json"
	if encrypted {
		name += AgeSuffix
	}
	return name
}

// IsEncrypted reports whether name was written with encryption
func IsEncrypted(name string) bool {
	return strings.HasSuffix(name, AgeSuffix)
}

func validName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid archive name %q", name)
	}
	return nil
}

func sortNewestFirst(list []Info) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].ModTime.Equal(list[j].ModTime) {
			return list[i].Name > list[j].Name
		}
		return list[i].ModTime.After(list[j].ModTime)
	})
}
