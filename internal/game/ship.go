package game

// Ship is a client-reported fleet member. The server never learns where it
// sits on the board, only whether the defending client has reported it
// destroyed.
type Ship struct {
	ID        string `json:"id"`
	Size      int    `json:"size"`
	Destroyed bool   `json:"destroyed"`
}

type Fleet []Ship

func (f Fleet) markDestroyed(shipID string) bool {
	for i := range f {
		if f[i].ID == shipID {
			f[i].Destroyed = true
			return true
		}
	}
	return false
}

func (f Fleet) allDestroyed() bool {
	if len(f) == 0 {
		return false
	}
	for i := range f {
		if !f[i].Destroyed {
			return false
		}
	}
	return true
}

func (f Fleet) clone() Fleet {
	out := make(Fleet, len(f))
	copy(out, f)
	return out
}
