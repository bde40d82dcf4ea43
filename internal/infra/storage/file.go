package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// FileSecretStore 将全部键值加密后保存到单个文件
type FileSecretStore struct {
	path       string
	passphrase string

	mu     sync.Mutex
	values map[string]string
}

func NewFileSecretStore(path string, passphrase string) (*FileSecretStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("secret file path is required")
	}
	if passphrase == "" {
		return nil, errors.New("secret file passphrase is required")
	}
	return &FileSecretStore{path: path, passphrase: passphrase}, nil
}

// Path 返回加密文件路径
func (s *FileSecretStore) Path() string {
	return s.path
}

func (s *FileSecretStore) Store(_ context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return err
	}

	prev, existed := s.values[key]
	s.values[key] = value
	if err := s.flush(); err != nil {
		if existed {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return err
	}
	return nil
}

func (s *FileSecretStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return "", false, err
	}
	v, ok := s.values[key]
	return v, ok, nil
}

// load 首次访问时读取并解密文件，文件不存在视为空存储
func (s *FileSecretStore) load() error {
	if s.values != nil {
		return nil
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.values = make(map[string]string)
			return nil
		}
		return errors.Wrapf(err, "failed to read secret file %s", s.path)
	}

	plaintext, err := decrypt(s.passphrase, raw)
	if err != nil {
		return errors.Wrapf(err, "failed to decrypt secret file %s", s.path)
	}
	defer zeroBytes(plaintext)

	values := make(map[string]string)
	if err := json.Unmarshal(plaintext, &values); err != nil {
		return errors.Wrap(ErrInvalidEnvelope, "secret file payload is not a JSON object")
	}
	s.values = values
	return nil
}

// flush 写入同目录下的临时文件后 rename，保证文件要么是旧内容要么是新内容
func (s *FileSecretStore) flush() error {
	payload, err := json.Marshal(s.values)
	if err != nil {
		return errors.Wrap(err, "failed to marshal secrets")
	}
	defer zeroBytes(payload)

	encrypted, err := encrypt(s.passphrase, payload)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrapf(err, "failed to create secret directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".secrets-*.tmp")
	if err != nil {
		return errors.Wrap(err, "failed to create temp secret file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to chmod temp secret file")
	}
	if _, err := tmp.Write(encrypted); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to write temp secret file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to sync temp secret file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close temp secret file")
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return errors.Wrapf(err, "failed to replace secret file %s", s.path)
	}
	return nil
}
