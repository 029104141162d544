package gacha

// Tracker accumulates statistics one pull at a time.
// Pulls must be added in the order they happened in game.
type Tracker struct {
	policy Policy

	pulls  int
	since4 int
	since5 int
	luck4  Ratio
	luck5  Ratio

	guaranteed bool
	rolls      int
	wins       int
	winStreak  int
	lossStreak int
	maxWin     int
	maxLoss    int
}

func NewTracker(policy Policy) *Tracker {
	return &Tracker{policy: policy}
}

// Add feeds the next pull. Every pull counts toward both distances,
// whatever its own rarity.
func (t *Tracker) Add(p Pull) {
	t.pulls++
	t.since4++
	t.since5++

	switch p.Rarity {
	case 4:
		t.luck4.Num += t.since4
		t.luck4.Den++
		t.since4 = 0
	case 5:
		t.luck5.Num += t.since5
		t.luck5.Den++
		t.since5 = 0

		if t.policy.Guarantee {
			t.roll(p)
		}
	}
}

func (t *Tracker) roll(p Pull) {
	if t.guaranteed {
		t.guaranteed = false
		return
	}

	t.rolls++

	if t.policy.IsLoss(p.ItemID) {
		t.guaranteed = true
		t.winStreak = 0
		t.lossStreak++
		t.maxLoss = max(t.maxLoss, t.lossStreak)
		return
	}

	t.wins++
	t.lossStreak = 0
	t.winStreak++
	t.maxWin = max(t.maxWin, t.winStreak)
}

// Stats reports what has been accumulated so far. The tracker can keep
// receiving pulls afterwards.
func (t *Tracker) Stats() Stats {
	s := Stats{
		Pulls: t.pulls,
		Luck4: t.luck4,
		Luck5: t.luck5,
	}

	if t.policy.Guarantee {
		s.Guarantee = &GuaranteeStats{
			WinRate:       Ratio{Num: t.wins, Den: t.rolls},
			MaxWinStreak:  t.maxWin,
			MaxLossStreak: t.maxLoss,
		}
	}

	return s
}

// Compute walks pulls, oldest first, and returns their statistics.
// The input is neither sorted nor checked; see Validate.
func Compute(pulls []Pull, policy Policy) Stats {
	t := NewTracker(policy)
	for _, p := range pulls {
		t.Add(p)
	}
	return t.Stats()
}
