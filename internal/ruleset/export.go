package ruleset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Export fetches the structured dump and writes it verbatim to a
// timestamped file in dir, returning the path written. The raw bytes
// are saved untouched so the file can be replayed against the engine's
// own tooling.
func (s *Service) Export(ctx context.Context, dir string) (string, error) {
	_, raw, err := s.Fetch(ctx)
	if err != nil && raw == nil {
		return "", err
	}

	name := fmt.Sprintf("nft_rules_backup_%s.json", time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return "", fmt.Errorf("writing backup: %w", err)
	}

	s.log.Info("ruleset exported", "path", path, "bytes", len(raw))
	return path, nil
}
