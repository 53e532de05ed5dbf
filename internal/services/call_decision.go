package services

import (
	"log/slog"
	"time"

	"github.com/callcleaner/backend/internal/models"
)

type CallAction string

const (
	ActionAllow CallAction = "allow"
	ActionBlock CallAction = "block"
	ActionWarn  CallAction = "warn"
)

const (
	ReasonWhitelisted         = "whitelisted"
	ReasonUnknownNumber       = "unknown number"
	ReasonNoRisk              = "no risk"
	ReasonSettingsUnavailable = "settings unavailable"
	ReasonOutsideWorkingHours = "outside working hours"
	ReasonSpam                = "known spam number"
	ReasonSuspicious          = "suspicious number"
	ReasonNotSpam             = "below spam threshold"
	ReasonUnrecognizedMode    = "unrecognized blocking mode"
)

const (
	RiskScoreSpam       = 85
	RiskScoreSuspicious = 50
	RiskScoreLow        = 10
)

// Decision is the outcome for one incoming call.
type Decision struct {
	Action    CallAction `json:"action"`
	Reason    string     `json:"reason"`
	RiskScore int        `json:"risk_score"`
	IsSpam    bool       `json:"is_spam"`
}

// RiskScore maps a report count onto the three score buckets.
func RiskScore(reportCount int) int {
	switch {
	case reportCount > 10:
		return RiskScoreSpam
	case reportCount > 5:
		return RiskScoreSuspicious
	default:
		return RiskScoreLow
	}
}

// Decide classifies an incoming call. The first matching rule wins and every
// inconclusive input resolves to Allow. reported and settings may be nil.
func Decide(caller string, callTime time.Time, reported *models.ReportedNumber, settings *models.UserSettings, whitelist []string) Decision {
	for _, n := range whitelist {
		if n == caller {
			return Decision{Action: ActionAllow, Reason: ReasonWhitelisted}
		}
	}

	if reported == nil {
		return Decision{Action: ActionAllow, Reason: ReasonUnknownNumber}
	}

	score := RiskScore(reported.ReportCount)
	isSpam := score == RiskScoreSpam
	if score == 0 {
		return Decision{Action: ActionAllow, Reason: ReasonNoRisk}
	}

	if settings == nil {
		return Decision{Action: ActionAllow, Reason: ReasonSettingsUnavailable, RiskScore: score, IsSpam: isSpam}
	}

	if settings.WorkingHoursMode == models.WorkingHoursCustom && outsideWorkingHours(settings, callTime) {
		return Decision{Action: ActionBlock, Reason: ReasonOutsideWorkingHours, RiskScore: score, IsSpam: isSpam}
	}

	d := Decision{RiskScore: score, IsSpam: isSpam}
	switch settings.BlockingMode {
	case models.BlockingModeAll, models.BlockingModeKnown:
		if isSpam {
			d.Action, d.Reason = ActionBlock, ReasonSpam
		} else {
			d.Action, d.Reason = ActionAllow, ReasonNotSpam
		}
	case models.BlockingModeCustom:
		switch {
		case isSpam:
			d.Action, d.Reason = ActionBlock, ReasonSpam
		case score == RiskScoreSuspicious:
			d.Action, d.Reason = ActionWarn, ReasonSuspicious
		default:
			d.Action, d.Reason = ActionAllow, ReasonNotSpam
		}
	default:
		d.Action, d.Reason = ActionAllow, ReasonUnrecognizedMode
	}
	return d
}

// outsideWorkingHours compares the call's time of day, in the call's own location,
// against the inclusive [start, end] window. Unparseable bounds disable the check.
func outsideWorkingHours(s *models.UserSettings, callTime time.Time) bool {
	if s.CustomStartTime == nil || s.CustomEndTime == nil {
		slog.Warn("working hours bounds missing, skipping check", "user_id", s.UserID.String())
		return false
	}
	start, err1 := ParseClock(*s.CustomStartTime)
	end, err2 := ParseClock(*s.CustomEndTime)
	if err1 != nil || err2 != nil {
		slog.Warn("working hours bounds unparseable, skipping check",
			"user_id", s.UserID.String(),
			"start", *s.CustomStartTime,
			"end", *s.CustomEndTime,
		)
		return false
	}

	h, m, sec := callTime.Clock()
	now := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
		time.Duration(sec)*time.Second + time.Duration(callTime.Nanosecond())
	return now < start || now > end
}

// ParseClock parses "HH:mm" into an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
