package storage

import (
	"context"
	"io"
)

// Provider 文件存储接口
type Provider interface {
	SaveWithContext(ctx context.Context, identifier string, file io.Reader) error
	GetWithContext(ctx context.Context, identifier string) (io.ReadSeeker, error)
	DeleteWithContext(ctx context.Context, identifier string) error
	Exists(ctx context.Context, identifier string) (bool, error)
	Health(ctx context.Context) error
	Name() string
}
