package analytics

type BadgeID string

const (
	BadgeFlawless     BadgeID = "flawless"
	BadgeQuickThinker BadgeID = "quick_thinker"
	BadgeHighRoller   BadgeID = "high_roller"
	BadgeSharpMind    BadgeID = "sharp_mind"
	BadgeFirstWin     BadgeID = "first_win"
	BadgeUnstoppable  BadgeID = "unstoppable"
	BadgeVeteran      BadgeID = "veteran"
)

type Badge struct {
	ID          BadgeID
	Name        string
	Description string
	Icon        string
}

var AllBadges = map[BadgeID]Badge{
	BadgeFlawless:     {ID: BadgeFlawless, Name: "Flawless", Description: "Every answer correct in a single game", Icon: "💎"},
	BadgeQuickThinker: {ID: BadgeQuickThinker, Name: "Quick Thinker", Description: "Average answer time under 5 seconds", Icon: "⚡"},
	BadgeHighRoller:   {ID: BadgeHighRoller, Name: "High Roller", Description: "1000+ points in a single game", Icon: "💯"},
	BadgeSharpMind:    {ID: BadgeSharpMind, Name: "Sharp Mind", Description: "80%+ accuracy in a game", Icon: "🧠"},
	BadgeFirstWin:     {ID: BadgeFirstWin, Name: "First Win", Description: "Won a game", Icon: "🏆"},
	BadgeUnstoppable:  {ID: BadgeUnstoppable, Name: "Unstoppable", Description: "3-game win streak", Icon: "🔥"},
	BadgeVeteran:      {ID: BadgeVeteran, Name: "Veteran", Description: "Played 10+ games", Icon: "🏅"},
}

// EvaluateGameBadges checks which badges a player earned in a single game.
func EvaluateGameBadges(stats PlayerGameStats) []Badge {
	var earned []Badge

	// Flawless: every answer correct
	if stats.Answers > 0 && stats.Correct == stats.Answers {
		earned = append(earned, AllBadges[BadgeFlawless])
	}

	// Quick Thinker: avg answer time under 5s
	if stats.Answers > 0 && stats.AvgAnswerMs > 0 && stats.AvgAnswerMs < 5000 {
		earned = append(earned, AllBadges[BadgeQuickThinker])
	}

	// High Roller: 1000+ points in a game
	if stats.Score >= 1000 {
		earned = append(earned, AllBadges[BadgeHighRoller])
	}

	// Sharp Mind: 80%+ accuracy
	if stats.Answers > 0 && stats.Accuracy >= 80.0 {
		earned = append(earned, AllBadges[BadgeSharpMind])
	}

	return earned
}

// EvaluateLifetimeBadges checks which badges a player earned across their career.
func EvaluateLifetimeBadges(stats PlayerLifetimeStats) []Badge {
	var earned []Badge

	// First Win: won at least one game
	if stats.WinCount >= 1 {
		earned = append(earned, AllBadges[BadgeFirstWin])
	}

	// Unstoppable: 3-game win streak
	if stats.WinStreak >= 3 {
		earned = append(earned, AllBadges[BadgeUnstoppable])
	}

	// Veteran: 10+ games
	if stats.GamesPlayed >= 10 {
		earned = append(earned, AllBadges[BadgeVeteran])
	}

	return earned
}
