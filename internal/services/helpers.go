package services

import (
	"context"
	"math"

	"github.com/yukikurage/projecttime-api/internal/events"
	"github.com/yukikurage/projecttime-api/internal/logger"
)

// uniqueStrings removes duplicate values while keeping first-seen order
func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}

// minutesToHours converts minutes to hours rounded to two decimals.
func minutesToHours(minutes int64) float64 {
	return math.Round(float64(minutes)/60*100) / 100
}

// publish never fails the caller; broker problems are only logged.
func publish(ctx context.Context, publisher events.Publisher, event events.TaskEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.FromContext(ctx).Warn("Failed to publish task event",
			"type", event.Type,
			"organization_id", event.OrganizationID,
			"error", err,
		)
	}
}
