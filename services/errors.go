package services

import "errors"

// Ошибки сервисного слоя. Ошибки движка (leaderboard.Err*) проходят без обёртки
// и маппятся в HTTP отдельно.
var (
	ErrStandingConflict   = errors.New("standings changed concurrently, resubmit the batch")
	ErrPublishingDisabled = errors.New("export publishing is not configured")
)
