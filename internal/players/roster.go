package players

// Roster holds a room's players in join order. It does no locking of its
// own: a Roster belongs to exactly one game, whose mutex serializes access.
type Roster struct {
	byID  map[string]*Player
	order []string
}

func NewRoster() *Roster {
	return &Roster{
		byID: make(map[string]*Player),
	}
}

func (r *Roster) Len() int {
	return len(r.order)
}

func (r *Roster) Get(id string) *Player {
	return r.byID[id]
}

func (r *Roster) Contains(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// Add appends a new player at the end of the join order.
func (r *Roster) Add(p *Player) {
	r.byID[p.ID] = p
	r.order = append(r.order, p.ID)
}

func (r *Roster) Remove(id string) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	delete(r.byID, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Oldest returns the earliest-joined remaining player ID, used for host
// succession.
func (r *Roster) Oldest() (string, bool) {
	if len(r.order) == 0 {
		return "", false
	}
	return r.order[0], true
}

// List returns players in join order.
func (r *Roster) List() []*Player {
	list := make([]*Player, 0, len(r.order))
	for _, id := range r.order {
		list = append(list, r.byID[id])
	}
	return list
}

// AllAnswered reports whether every player answered the current round. An
// empty roster is never all-answered, so an empty round can't close itself.
func (r *Roster) AllAnswered() bool {
	if len(r.order) == 0 {
		return false
	}
	for _, p := range r.byID {
		if !p.Answered {
			return false
		}
	}
	return true
}

// ResetRound clears every player's per-round state.
func (r *Roster) ResetRound() {
	for _, p := range r.byID {
		p.ResetRound()
	}
}

// ResetScores zeroes every score and clears round state, for a game reset.
func (r *Roster) ResetScores() {
	for _, p := range r.byID {
		p.Score = 0
		p.ResetRound()
	}
}
