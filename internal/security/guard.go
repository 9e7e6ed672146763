package security

import (
	"log/slog"

	"github.com/brewedawakening/commerce/internal/domain"
	"github.com/brewedawakening/commerce/internal/observability/metrics"
)

// Guard enforces the ownership boundary for "read my own resource"
// endpoints: a verified caller may only act on the resource whose owner id
// matches their own subject id. It must be evaluated before any resource
// data is loaded. It is deliberately not a roles/ACL engine.
type Guard struct {
	logger *slog.Logger
}

func NewGuard(logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{logger: logger}
}

// CheckOwnership returns ErrForbidden unless subjectID equals ownerID.
func (g *Guard) CheckOwnership(subjectID, ownerID string) error {
	if subjectID == "" || subjectID != ownerID {
		g.logger.Warn("ownership check denied",
			slog.String("subject_id", subjectID),
			slog.String("owner_id", ownerID),
		)
		metrics.ObserveAuthDenial()
		return domain.ErrForbidden
	}
	return nil
}
