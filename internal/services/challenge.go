package services

import (
	"github.com/tbourn/campus-mood-backend/internal/clock"
	"github.com/tbourn/campus-mood-backend/internal/domain"
)

// TodayChallenge is the daily challenge with the day it belongs to.
type TodayChallenge struct {
	Date string `json:"date"`
	domain.Challenge
}

// Challenges serves the rotating daily prompt.
type Challenges struct {
	Clock clock.Clock
}

// Today returns the challenge for the clock's current day.
func (c Challenges) Today() TodayChallenge {
	now := c.Clock.Now().In(c.Clock.Location())
	return TodayChallenge{Date: clock.DayKey(c.Clock, now), Challenge: domain.ChallengeFor(now)}
}
