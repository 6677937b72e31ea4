package domain

// StatsRepository defines the interface for retrieving statistics about the stored launches.
type StatsRepository interface {
	// GetStats computes the launch overview shown on the statistics tab.
	GetStats() (*Stats, error)
}

// Stats is the launch overview.
type Stats struct {
	TotalLaunches  int
	Successful     int
	Failed         int
	Pending        int
	ManualLaunches int
	SyncedLaunches int
	TotalReentries int
	ByRocket       []NameCount // top 10
	BySite         []NameCount
}

// NameCount pairs a label with a launch count.
type NameCount struct {
	Name  string
	Count int
}

// SuccessRate returns the share of successful launches among those with a known outcome, in percent.
func (s *Stats) SuccessRate() float64 {
	decided := s.Successful + s.Failed
	if decided == 0 {
		return 0
	}
	return float64(s.Successful) / float64(decided) * 100
}
