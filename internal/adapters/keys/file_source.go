package keys

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kevin07696/borica-gateway/internal/adapters/ports"
	"go.uber.org/zap"
)

// fileSource implements SecretReader using the local filesystem.
// Relative paths resolve against basePath.
type fileSource struct {
	basePath string
	logger   *zap.Logger
}

// NewFileSource creates a filesystem-backed secret reader
func NewFileSource(basePath string, logger *zap.Logger) ports.SecretReader {
	return &fileSource{
		basePath: basePath,
		logger:   logger,
	}
}

func (s *fileSource) resolve(secretPath string) string {
	if filepath.IsAbs(secretPath) || s.basePath == "" {
		return secretPath
	}
	return filepath.Join(s.basePath, secretPath)
}

// GetSecret reads a secret file. Files holding a JSON object with a "value"
// key are unwrapped; anything else (PEM documents) is returned verbatim.
func (s *fileSource) GetSecret(ctx context.Context, secretPath string) (*ports.Secret, error) {
	filePath := s.resolve(secretPath)

	s.logger.Debug("Reading secret from filesystem",
		zap.String("path", secretPath),
	)

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("secret not found: %s", secretPath)
		}
		return nil, fmt.Errorf("failed to read secret: %w", err)
	}

	if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
		var secretData struct {
			Value     string            `json:"value"`
			Tags      map[string]string `json:"tags"`
			CreatedAt string            `json:"created_at"`
		}
		if err := json.Unmarshal(data, &secretData); err == nil && secretData.Value != "" {
			return &ports.Secret{
				Value:     secretData.Value,
				Version:   "v1",
				Metadata:  secretData.Tags,
				CreatedAt: secretData.CreatedAt,
			}, nil
		}
	}

	return &ports.Secret{
		Value:   string(data),
		Version: "v1",
	}, nil
}

// GetSecretVersion ignores version; files have a single version
func (s *fileSource) GetSecretVersion(ctx context.Context, secretPath string, version string) (*ports.Secret, error) {
	return s.GetSecret(ctx, secretPath)
}
