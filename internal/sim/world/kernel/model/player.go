package model

import "craftage.ai/internal/protocol"

type Player struct {
	ID   string
	Name string

	// Age is the index of the player's unlocked age.
	Age int

	Inventory Inventory
	Vitals    Vitals

	// Starving is set once hunger reaches zero and cleared when it recovers.
	Starving bool

	Events []protocol.Event
}

func (p *Player) AddEvent(e protocol.Event) {
	p.Events = append(p.Events, e)
	if len(p.Events) > 256 {
		p.Events = append([]protocol.Event(nil), p.Events[len(p.Events)-256:]...)
	}
}

func (p *Player) TakeEvents() []protocol.Event {
	ev := p.Events
	p.Events = nil
	return ev
}

// View is a fully committed copy of a player's state, safe to hand to other goroutines.
type View struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Inventory Inventory `json:"inventory"`
	Vitals    Vitals    `json:"vitals"`
}

func (p *Player) View() View {
	return View{
		ID:        p.ID,
		Name:      p.Name,
		Age:       p.Age,
		Inventory: p.Inventory.Clone(),
		Vitals:    p.Vitals,
	}
}
