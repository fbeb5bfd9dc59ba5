package invoice

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store caches rendered invoices on disk under a name derived from the order id.
type Store struct {
	Dir string
}

func FileName(orderID uuid.UUID) string {
	return fmt.Sprintf("invoice-%s.pdf", orderID)
}

func (s *Store) Path(orderID uuid.UUID) string {
	return filepath.Join(s.Dir, FileName(orderID))
}

func (s *Store) Save(orderID uuid.UUID, data []byte) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create invoice dir: %w", err)
	}
	if err := os.WriteFile(s.Path(orderID), data, 0o644); err != nil {
		return fmt.Errorf("write invoice: %w", err)
	}
	return nil
}
