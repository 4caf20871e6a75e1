package analytics

import "time"

type PlayerGameStats struct {
	PlayerID     string
	PlayerName   string
	PlayerAvatar string
	GameID       string
	Answers      int
	Correct      int
	Score        int
	AvgAnswerMs  float64
	FastestMs    int64
	Accuracy     float64 // percentage of correct answers
}

type PlayerLifetimeStats struct {
	PlayerID     string
	PlayerName   string
	PlayerAvatar string
	GamesPlayed  int
	TotalScore   int
	BestGame     int
	WinCount     int
	WinStreak    int
	Badges       []Badge
}

type LeaderboardEntry struct {
	PlayerID     string
	PlayerName   string
	PlayerAvatar string
	Value        int
	Rank         int
}

type GameRecap struct {
	GameID    string
	RoomCode  string
	StartedAt *time.Time
	EndedAt   *time.Time
	Players   []PlayerGameStats
}
