package calendar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// FeedSource fetches and parses one ICS feed. Feeds occasionally return an
// empty document, so a fetch that yields no events is retried a bounded
// number of times with a fixed interval before giving up.
type FeedSource struct {
	url      string
	platform string
	attempts int
	interval time.Duration
	loc      *time.Location
	http     *http.Client
	logger   *zap.Logger
}

// NewFeedSource creates a feed source. Date-only event times are interpreted
// in loc, which should match the property's configured timezone.
func NewFeedSource(url, platform string, cfg Config, loc *time.Location, logger *zap.Logger) *FeedSource {
	attempts := cfg.RetryAttempts
	if attempts <= 0 {
		attempts = 1
	}
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}

	return &FeedSource{
		url:      url,
		platform: platform,
		attempts: attempts,
		interval: time.Duration(cfg.RetryIntervalSeconds) * time.Second,
		loc:      loc,
		http:     &http.Client{Timeout: time.Duration(timeout) * time.Second},
		logger:   logger.With(zap.String("platform", platform)),
	}
}

// Events fetches the feed, retrying failed or empty responses.
func (f *FeedSource) Events(ctx context.Context) ([]Event, error) {
	var lastErr error

	for attempt := 1; attempt <= f.attempts; attempt++ {
		if attempt == 1 {
			f.logger.Info("Getting events")
		} else {
			f.logger.Info("Getting events (retrying)", zap.Int("attempt", attempt))
		}

		events, err := f.fetch(ctx)
		if err == nil && len(events) > 0 {
			f.logger.Info("Found events", zap.Int("count", len(events)))
			return events, nil
		}
		if err == nil {
			err = fmt.Errorf("no events returned from %s feed", f.platform)
		}
		lastErr = err

		if attempt < f.attempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(f.interval):
			}
		}
	}

	return nil, lastErr
}

func (f *FeedSource) fetch(ctx context.Context) ([]Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed: %w", err)
	}

	return ParseICS(string(body), f.platform, f.loc)
}

// ParseICS extracts reservation events from an ICS document. Placeholder
// blocks ("Not available", "Unavailable") and events without a start are
// dropped, matching what the feeds publish for blocked-off dates.
func ParseICS(data, platform string, loc *time.Location) ([]Event, error) {
	lines := unfold(data)

	var events []Event
	var cur *Event
	inEvent := false

	for _, line := range lines {
		switch {
		case line == "BEGIN:VEVENT":
			inEvent = true
			cur = &Event{Platform: platform}
		case line == "END:VEVENT":
			if inEvent && cur != nil && !cur.Start.IsZero() && !isPlaceholder(cur.Summary) {
				events = append(events, *cur)
			}
			inEvent = false
			cur = nil
		case inEvent && cur != nil:
			name, value := splitProperty(line)
			switch {
			case strings.HasPrefix(name, "DTSTART"):
				if t, err := parseICSTime(name, value, loc); err == nil {
					cur.Start = t
				}
			case strings.HasPrefix(name, "DTEND"):
				if t, err := parseICSTime(name, value, loc); err == nil {
					cur.End = t
				}
			case name == "SUMMARY":
				cur.Summary = unescape(value)
			case name == "DESCRIPTION":
				cur.Description = unescape(value)
			}
		}
	}

	return events, nil
}

// unfold joins ICS continuation lines (lines starting with a space or tab)
// onto their parent line and strips line terminators.
func unfold(data string) []string {
	raw := strings.Split(strings.ReplaceAll(data, "\r\n", "\n"), "\n")
	var lines []string
	for _, l := range raw {
		if l == "" {
			continue
		}
		if (l[0] == ' ' || l[0] == '\t') && len(lines) > 0 {
			lines[len(lines)-1] += l[1:]
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

// splitProperty separates an ICS content line into its name (with parameters)
// and value.
func splitProperty(line string) (string, string) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return line, ""
	}
	return line[:idx], line[idx+1:]
}

// parseICSTime handles the date and date-time forms the reservation feeds
// use: 20240601, 20240601T150000Z and 20240601T150000.
func parseICSTime(name, value string, loc *time.Location) (time.Time, error) {
	switch {
	case strings.Contains(name, "VALUE=DATE") || len(value) == 8:
		return time.ParseInLocation("20060102", value, loc)
	case strings.HasSuffix(value, "Z"):
		return time.Parse("20060102T150405Z", value)
	default:
		return time.ParseInLocation("20060102T150405", value, loc)
	}
}

func unescape(s string) string {
	r := strings.NewReplacer("\\n", "\n", "\\N", "\n", "\\,", ",", "\\;", ";", "\\\\", "\\")
	return r.Replace(s)
}

func isPlaceholder(summary string) bool {
	s := strings.ToLower(summary)
	return strings.Contains(s, "not available") || strings.Contains(s, "unavailable")
}
