package config

import (
	"fmt"
	"strings"
)

// SchedulerConfig holds scheduled analysis configuration.
type SchedulerConfig struct {
	// CronSpec is the cron expression for scheduled analyses. Empty disables
	// the scheduler.
	CronSpec string
	// AreaPath is the area path analyzed on schedule.
	AreaPath string
	// ItemTypes are the work item types analyzed on schedule.
	ItemTypes []string
	// WindowDays is the lookback window of a scheduled analysis.
	WindowDays int
}

// LoadSchedulerConfigFromEnv loads scheduler configuration from environment variables.
func LoadSchedulerConfigFromEnv() SchedulerConfig {
	return SchedulerConfig{
		CronSpec:   GetEnv("SCHEDULE_CRON", ""),
		AreaPath:   GetEnv("SCHEDULE_AREA_PATH", ""),
		ItemTypes:  splitList(GetEnv("SCHEDULE_ITEM_TYPES", "Requirement,Bug,Task")),
		WindowDays: GetEnvInt("SCHEDULE_WINDOW_DAYS", 14),
	}
}

// Enabled reports whether scheduled analyses are configured.
func (c SchedulerConfig) Enabled() bool {
	return c.CronSpec != ""
}

// Validate validates scheduler configuration.
func (c SchedulerConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.AreaPath == "" {
		return fmt.Errorf("SCHEDULE_AREA_PATH is required when SCHEDULE_CRON is set")
	}
	if c.WindowDays <= 0 {
		return fmt.Errorf("WindowDays must be greater than 0")
	}
	return nil
}

// splitList splits a comma-separated list, dropping empty entries.
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
