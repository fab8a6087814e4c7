package tokenstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// FileStore keeps tokens in a small JSON file, one entry per role.
type FileStore struct {
	path string

	mu sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Token(role Role) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.read()
	if err != nil {
		return "", err
	}
	token, ok := tokens[string(role)]
	if !ok || token == "" {
		return "", ErrNotFound
	}
	return token, nil
}

func (s *FileStore) Save(role Role, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.read()
	if err != nil {
		return err
	}
	tokens[string(role)] = token
	return s.write(tokens)
}

func (s *FileStore) Clear(role Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := tokens[string(role)]; !ok {
		return nil
	}
	delete(tokens, string(role))
	return s.write(tokens)
}

func (s *FileStore) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}
	tokens := map[string]string{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &tokens); err != nil {
			// A corrupted token file degrades to anonymous rather than
			// wedging every session operation.
			return map[string]string{}, nil
		}
	}
	return tokens, nil
}

func (s *FileStore) write(tokens map[string]string) error {
	data, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("failed to encode tokens: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}
