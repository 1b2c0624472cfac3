// Package avatars provides user avatar storage and placeholder generation.
package avatars

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Storage manages avatar filesystem operations.
// Thread-safe for concurrent operations.
type Storage struct {
	basePath string
	mu       sync.RWMutex // Protects file operations
}

// NewStorage creates a new Storage instance.
// basePath should be the data directory; avatars are stored in
// {basePath}/avatars/.
func NewStorage(basePath string) (*Storage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	storagePath := filepath.Join(basePath, "avatars")

	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create avatars directory: %w", err)
	}

	return &Storage{
		basePath: storagePath,
	}, nil
}

// Save stores avatar data for a user.
// Filename format: {userID}.jpg.
func (s *Storage) Save(userID string, imgData []byte) error {
	if userID == "" {
		return fmt.Errorf("user ID cannot be empty")
	}

	if len(imgData) == 0 {
		return fmt.Errorf("image data cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(userID)

	if err := os.WriteFile(path, imgData, 0644); err != nil {
		return fmt.Errorf("failed to write avatar file: %w", err)
	}

	return nil
}

// Get retrieves avatar data for a user.
func (s *Storage) Get(userID string) ([]byte, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.Path(userID)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("avatar not found for %s: %w", userID, err)
		}
		return nil, fmt.Errorf("failed to read avatar file: %w", err)
	}

	return data, nil
}

// Exists checks if an avatar exists for a user.
func (s *Storage) Exists(userID string) bool {
	if userID == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.Path(userID)
	_, err := os.Stat(path)
	return err == nil
}

// Delete removes a user's avatar.
func (s *Storage) Delete(userID string) error {
	if userID == "" {
		return fmt.Errorf("user ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(userID)

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			// Already deleted, not an error.
			return nil
		}
		return fmt.Errorf("failed to delete avatar file: %w", err)
	}

	return nil
}

// Hash computes SHA256 hash of an avatar.
// Returns hex-encoded string for ETag/cache validation.
func (s *Storage) Hash(userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("user ID cannot be empty")
	}

	data, err := s.Get(userID)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}

// Path returns the full filesystem path for a user's avatar.
func (s *Storage) Path(userID string) string {
	return filepath.Join(s.basePath, fmt.Sprintf("%s.jpg", userID))
}
