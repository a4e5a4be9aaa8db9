package storage

import (
	"context"
	"fmt"
	"os"
)

type LocalStorage struct {
	path string
}

func NewLocalStorage(path string) *LocalStorage {
	return &LocalStorage{path: path}
}

func (s *LocalStorage) ReadTemplates(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read templates: %w", err)
	}
	return data, nil
}

func (s *LocalStorage) Close() error {
	return nil
}
