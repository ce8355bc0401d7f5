package roomblocks

import (
	"fmt"
	"strings"

	"access-sync/core/property"
)

// Config selects which room blocks get a code and when that code works.
type Config struct {
	// BlockType is the room block type that receives a code.
	BlockType string `mapstructure:"block_type" default:"out_of_service"`
	// ReasonTag is the block reason that marks a block as wanting a code.
	ReasonTag string `mapstructure:"reason_tag" default:"access"`
	// StartTime is the local clock time on the block's first day (HH:MM).
	StartTime string `mapstructure:"start_time" default:"00:01"`
	// EndTime is the local clock time on the block's last day (HH:MM).
	EndTime string `mapstructure:"end_time" default:"23:59"`
}

// Validate checks the filter and clock times.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BlockType) == "" {
		return fmt.Errorf("block_type is required")
	}
	if _, err := property.ParseClock(c.StartTime); err != nil {
		return fmt.Errorf("start_time: %w", err)
	}
	if _, err := property.ParseClock(c.EndTime); err != nil {
		return fmt.Errorf("end_time: %w", err)
	}
	return nil
}

// Matches reports whether a block of this type and reason should get a code.
func (c Config) Matches(blockType, reason string) bool {
	return strings.EqualFold(strings.TrimSpace(blockType), strings.TrimSpace(c.BlockType)) &&
		strings.EqualFold(strings.TrimSpace(reason), strings.TrimSpace(c.ReasonTag))
}
