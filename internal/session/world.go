package session

import (
	"math"
	"math/rand"

	"github.com/verte-zerg/studyquest/internal/model"
)

// Direction is a held movement direction.
type Direction int

const (
	Left  Direction = -1
	Still Direction = 0
	Right Direction = 1
)

// Glyphs are the NPC characters picked at random on spawn.
var Glyphs = []string{"Ω", "Ψ", "Φ", "Δ", "Σ", "λ"}

// World is the 1-D exploration space: the player's travelled distance and the NPCs along it.
type World struct {
	cfg      model.WorldConfig
	position float64
	distance float64
	dir      Direction
	npcs     []model.NPC
}

// VisibleNPC is an NPC with its offset from the player.
type VisibleNPC struct {
	model.NPC
	Offset float64
}

// NewWorld places one NPC every SpawnInterval up to Width.
func NewWorld(cfg model.WorldConfig, rnd *rand.Rand) *World {
	w := &World{cfg: cfg}
	if cfg.SpawnInterval <= 0 {
		return w
	}
	for p := cfg.SpawnInterval; p < cfg.Width; p += cfg.SpawnInterval {
		w.npcs = append(w.npcs, model.NPC{
			ID:       int(p),
			Position: p,
			Glyph:    Glyphs[rnd.Intn(len(Glyphs))],
		})
	}
	return w
}

// Hold sets the held direction.
func (w *World) Hold(dir Direction) {
	w.dir = dir
}

// Release clears the held direction.
func (w *World) Release() {
	w.dir = Still
}

// Held returns the held direction.
func (w *World) Held() Direction {
	return w.dir
}

// Step moves one tick in the held direction. Distance never drops below zero.
func (w *World) Step() {
	if w.dir == Still {
		return
	}
	w.position += float64(w.dir) * w.cfg.Speed
	w.distance = math.Max(0, w.distance+float64(w.dir)*w.cfg.Speed)
}

// Nearby returns the first unanswered NPC within interaction distance of the player.
func (w *World) Nearby() (model.NPC, bool) {
	for _, npc := range w.npcs {
		if !npc.Answered && math.Abs(npc.Position-w.distance) < w.cfg.InteractionDistance {
			return npc, true
		}
	}
	return model.NPC{}, false
}

// Resolve marks an NPC answered. It reports false if the NPC is unknown or already answered.
func (w *World) Resolve(id int) bool {
	for i := range w.npcs {
		if w.npcs[i].ID != id {
			continue
		}
		if w.npcs[i].Answered {
			return false
		}
		w.npcs[i].Answered = true
		return true
	}
	return false
}

// AllAnswered reports whether every NPC has been resolved.
func (w *World) AllAnswered() bool {
	for _, npc := range w.npcs {
		if !npc.Answered {
			return false
		}
	}
	return true
}

// NPCs returns a copy of the NPC list.
func (w *World) NPCs() []model.NPC {
	return append([]model.NPC(nil), w.npcs...)
}

// Visible returns NPCs within span of the player.
func (w *World) Visible(span float64) []VisibleNPC {
	var out []VisibleNPC
	for _, npc := range w.npcs {
		offset := npc.Position - w.distance
		if math.Abs(offset) < span {
			out = append(out, VisibleNPC{NPC: npc, Offset: offset})
		}
	}
	return out
}

// Distance returns the forward distance travelled.
func (w *World) Distance() float64 {
	return w.distance
}

// Position returns the scroll offset.
func (w *World) Position() float64 {
	return w.position
}
