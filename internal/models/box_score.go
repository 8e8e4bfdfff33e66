package models

// BoxScoreLine holds the canonical counting stats for one team or one player
// in one game. All counts are non-negative; Minutes is fractional because the
// feed reports playing time as MM:SS. Defensive rebounds are derived from
// total minus offensive rather than stored, so the two can never disagree.
type BoxScoreLine struct {
	Points  int     `json:"points"`
	FGM     int     `json:"fgm"`
	FGA     int     `json:"fga"`
	ThreePM int     `json:"three_pm"`
	ThreePA int     `json:"three_pa"`
	FTM     int     `json:"ftm"`
	FTA     int     `json:"fta"`
	ORB     int     `json:"orb"`
	TRB     int     `json:"trb"`
	AST     int     `json:"ast"`
	STL     int     `json:"stl"`
	BLK     int     `json:"blk"`
	TOV     int     `json:"tov"`
	PF      int     `json:"pf"`
	Minutes float64 `json:"minutes"`
}

// DRB returns defensive rebounds, derived as total minus offensive and
// clamped at zero for feeds that report inconsistent rebound splits.
func (l BoxScoreLine) DRB() int {
	if d := l.TRB - l.ORB; d > 0 {
		return d
	}
	return 0
}

// TwoPM returns made two-point field goals.
func (l BoxScoreLine) TwoPM() int { return l.FGM - l.ThreePM }

// TwoPA returns attempted two-point field goals.
func (l BoxScoreLine) TwoPA() int { return l.FGA - l.ThreePA }

// Add accumulates another line into this one, field by field.
func (l *BoxScoreLine) Add(o BoxScoreLine) {
	l.Points += o.Points
	l.FGM += o.FGM
	l.FGA += o.FGA
	l.ThreePM += o.ThreePM
	l.ThreePA += o.ThreePA
	l.FTM += o.FTM
	l.FTA += o.FTA
	l.ORB += o.ORB
	l.TRB += o.TRB
	l.AST += o.AST
	l.STL += o.STL
	l.BLK += o.BLK
	l.TOV += o.TOV
	l.PF += o.PF
	l.Minutes += o.Minutes
}

// IsEmpty reports whether the line carries no statistical content at all.
func (l BoxScoreLine) IsEmpty() bool {
	return l.Points == 0 && l.FGA == 0 && l.FTA == 0 && l.TRB == 0 &&
		l.AST == 0 && l.STL == 0 && l.BLK == 0 && l.TOV == 0 && l.Minutes == 0
}
