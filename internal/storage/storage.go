package storage

import (
	"context"
	"errors"
	"path"
	"strings"
)

var (
	ErrNotFound   = errors.New("object_not_found")
	ErrInvalidKey = errors.New("invalid_object_key")
)

// Store archives generated invoice documents.
type Store interface {
	Enabled() bool
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// ObjectKey builds a slash separated key from non-empty segments.
func ObjectKey(parts ...string) string {
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.Trim(strings.TrimSpace(part), "/")
		if part != "" {
			cleaned = append(cleaned, part)
		}
	}
	return path.Join(cleaned...)
}

func validKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") {
		return false
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == ".." || segment == "." || segment == "" {
			return false
		}
	}
	return true
}

type noopStore struct{}

func (noopStore) Enabled() bool { return false }

func (noopStore) Put(context.Context, string, []byte, string) error { return nil }

func (noopStore) Get(context.Context, string) ([]byte, error) { return nil, ErrNotFound }

func (noopStore) Delete(context.Context, string) error { return nil }
