package preference

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileStore 把偏好保存为 YAML 文件
type FileStore struct {
	path     string
	fallback string
	mu       sync.Mutex
}

// NewFileStore 创建文件存储，fallback 为未设置时返回的用户名
func NewFileStore(path, fallback string) *FileStore {
	return &FileStore{path: path, fallback: fallback}
}

func (s *FileStore) CurrentUsername(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs, err := s.read()
	if err != nil {
		return "", err
	}
	if username, ok := prefs[KeyCurrentUsername]; ok && username != "" {
		return username, nil
	}
	return s.fallback, nil
}

func (s *FileStore) SetCurrentUsername(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs, err := s.read()
	if err != nil {
		return err
	}
	if username == "" {
		delete(prefs, KeyCurrentUsername)
	} else {
		prefs[KeyCurrentUsername] = username
	}
	return s.write(prefs)
}

func (s *FileStore) read() (map[string]string, error) {
	prefs := make(map[string]string)
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return prefs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取偏好文件失败: %w", err)
	}
	if err := yaml.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("解析偏好文件失败: %w", err)
	}
	if prefs == nil {
		prefs = make(map[string]string)
	}
	return prefs, nil
}

// write 先写临时文件再重命名，避免写到一半的文件被读到
func (s *FileStore) write(prefs map[string]string) error {
	data, err := yaml.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("序列化偏好失败: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("创建偏好目录失败: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".prefs-*.yaml")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("写入偏好文件失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("写入偏好文件失败: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("保存偏好文件失败: %w", err)
	}
	return nil
}
