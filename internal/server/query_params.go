package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/bizflow/pkg/db/pagination"
	"go.uber.org/zap"
)

const dateOnlyLayout = "2006-01-02"

// Filter parameters are lenient: a value that does not parse drops the
// constraint instead of failing the request, and is logged so a
// misbehaving client is visible.

func (s *Server) parseOptionalFloat(field, value string) *float64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		s.log.Warn("ignoring unparseable filter value",
			zap.String("field", field),
			zap.String("value", trimmed),
		)
		return nil
	}
	return &parsed
}

// parseOptionalBool compiles a tri-state filter option: empty and "all"
// mean no constraint.
func (s *Server) parseOptionalBool(field, value string) *bool {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" || trimmed == "all" {
		return nil
	}
	parsed, err := strconv.ParseBool(trimmed)
	if err != nil {
		s.log.Warn("ignoring unparseable filter value",
			zap.String("field", field),
			zap.String("value", trimmed),
		)
		return nil
	}
	return &parsed
}

func (s *Server) parseOptionalTime(field, value string, endOfDay bool) *time.Time {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return &parsed
	}
	if parsed, err := time.Parse(dateOnlyLayout, trimmed); err == nil {
		if endOfDay {
			parsed = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
		}
		return &parsed
	}
	s.log.Warn("ignoring unparseable filter value",
		zap.String("field", field),
		zap.String("value", trimmed),
	)
	return nil
}

func (s *Server) parseOptionalInt(field, value string) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil {
		s.log.Warn("ignoring unparseable filter value",
			zap.String("field", field),
			zap.String("value", trimmed),
		)
		return 0
	}
	return parsed
}

func (s *Server) parsePagination(c *gin.Context) pagination.Pagination {
	return pagination.Pagination{
		Page:     s.parseOptionalInt("page", c.Query("page")),
		PageSize: s.parseOptionalInt("page_size", c.Query("page_size")),
	}
}

func parsePathID(value string) (snowflake.ID, bool) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || parsed == 0 {
		return 0, false
	}
	return parsed, true
}
