package usecase

import (
	"fmt"
	"time"

	"github.com/riskibarqy/sports-warehouse/internal/domain/feed"
)

func f64(v float64) *float64 {
	return &v
}

// matchDayRecords is one Arsenal v Chelsea match day as the five exports describe it,
// with names and dates written differently per feed.
func matchDayRecords() []feed.Record {
	gpsMatch := feed.NewGPSRow(feed.KindGPSMatch)
	gpsMatch.Player = "SAKA, Bukayo"
	gpsMatch.Team = "Arsenal"
	gpsMatch.Date = "2024-03-05"
	gpsMatch.DurationMin = f64(95)
	gpsMatch.TotalDistance = f64(10.45)
	gpsMatch.HSRDistance = f64(0.95)
	gpsMatch.MaxSpeed = f64(9.5)

	gpsTraining := feed.NewGPSRow(feed.KindGPSTraining)
	gpsTraining.Player = "Bukayo Saka"
	gpsTraining.Team = "Arsenal F.C."
	gpsTraining.Date = "07/03/2024"
	gpsTraining.DurationMin = f64(60)
	gpsTraining.TotalDistance = f64(6.0)

	outfield := &feed.OutfieldRow{
		Player:         "Bukayo Saka",
		Team:           "Arsenal FC",
		Date:           "05/03/2024",
		Match:          "Arsenal - Chelsea",
		Minutes:        f64(90),
		Goals:          f64(1),
		Passes:         f64(40),
		PassesAccurate: f64(34),
		Duels:          f64(10),
		DuelsWon:       f64(6),
	}

	goalkeeper := &feed.GoalkeeperRow{
		Player:        "Robert Sanchez",
		Team:          "Chelsea FC",
		Date:          "5 Mar 2024",
		Minutes:       f64(90),
		ShotsAgainst:  f64(5),
		Saves:         f64(3),
		GoalsConceded: f64(2),
		XGAgainst:     f64(2.4),
	}

	home := &feed.MatchInfoRow{
		Match:          "Arsenal - Chelsea 2:1",
		Date:           "05/03/2024",
		Team:           "Arsenal",
		Competition:    "Premier League",
		Goals:          f64(2),
		Passes:         f64(520),
		PassesAccurate: f64(468),
		Possession:     f64(58),
	}
	away := &feed.MatchInfoRow{
		Match:       "Arsenal - Chelsea 2:1",
		Date:        "05/03/2024",
		Team:        "Chelsea",
		Competition: "Premier League",
		Goals:       f64(1),
		Possession:  f64(42),
	}

	records := make([]feed.Record, 0, 6)
	records = append(records, feed.Rows(feed.KindGPSMatch, gpsMatch)...)
	records = append(records, feed.Rows(feed.KindGPSTraining, gpsTraining)...)
	records = append(records, feed.Rows(feed.KindPlayerOutfield, outfield)...)
	records = append(records, feed.Rows(feed.KindPlayerGoalkeeper, goalkeeper)...)
	records = append(records, feed.Rows(feed.KindMatchInfo, home, away)...)
	return records
}

func matchDaySource() feed.StaticSource {
	source := feed.StaticSource{}
	for _, record := range matchDayRecords() {
		source[record.Kind] = append(source[record.Kind], record)
	}
	return source
}

// gpsTrainingWithBadDates is 100 daily training sessions for one player, five of them
// with an unparseable date. The returned set holds the zero-based indexes of those rows.
func gpsTrainingWithBadDates() ([]feed.Record, map[int]bool) {
	bad := map[int]bool{3: true, 17: true, 42: true, 63: true, 88: true}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	rows := make([]feed.Row, 0, 100)
	for i := 0; i < 100; i++ {
		row := feed.NewGPSRow(feed.KindGPSTraining)
		row.Player = "Bukayo Saka"
		row.Team = "Arsenal"
		row.Date = start.AddDate(0, 0, i).Format("2006-01-02")
		if bad[i] {
			row.Date = fmt.Sprintf("day %d", i)
		}
		row.TotalDistance = f64(5000)
		rows = append(rows, row)
	}
	return feed.Rows(feed.KindGPSTraining, rows...), bad
}
