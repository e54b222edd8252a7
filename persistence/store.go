package persistence

import (
	"fmt"
	"os"

	"bananarealm/models"
)

// BoardStore supplies the authoritative board at boot. The world is the
// only durable state; everything after load lives in memory.
type BoardStore interface {
	Load() (*models.Board, error)
}

// FileStore loads the board from a flat text file in the board grammar.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (*models.Board, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("load board %s: %w", s.path, err)
	}
	b, err := ParseBoard(string(data))
	if err != nil {
		return nil, fmt.Errorf("load board %s: %w", s.path, err)
	}
	return b, nil
}
