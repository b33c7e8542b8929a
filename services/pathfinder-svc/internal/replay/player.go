// Package replay steps through a recorded search trace frame by frame and
// classifies every city for display.
package replay

import (
	"context"
	"sync"
	"time"

	"routeviz/pkg/domain"
	"routeviz/services/pathfinder-svc/internal/engine"
)

// MinDelay минимальная задержка между кадрами при автопроигрывании
const MinDelay = 50 * time.Millisecond

// Role роль города в кадре
type Role string

const (
	RoleIdle     Role = "idle"
	RoleVisited  Role = "visited"
	RolePath     Role = "path"
	RoleNeighbor Role = "neighbor"
	RoleCurrent  Role = "current"
	RoleTarget   Role = "target"
	RoleSource   Role = "source"
)

// Arc дуга, которая релаксируется в кадре
type Arc struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Frame состояние визуализации после одного шага.
// У финального кадра Step равен nil, а Index равен Total.
type Frame struct {
	Index     int             `json:"index"`
	Total     int             `json:"total"`
	Step      *engine.Step    `json:"step,omitempty"`
	Roles     map[string]Role `json:"roles"`
	ActiveArc *Arc            `json:"active_arc,omitempty"`
	Final     bool            `json:"final"`
}

// Player проигрыватель трассы
type Player struct {
	mu       sync.Mutex
	result   *engine.Result
	source   string
	target   string
	cities   []string
	pos      int
	finished bool
}

// NewPlayer создаёт проигрыватель для результата поиска
func NewPlayer(result *engine.Result, source, target string) *Player {
	cities := make([]string, 0, len(result.Distances))
	for name := range result.Distances {
		cities = append(cities, name)
	}
	return &Player{
		result: result,
		source: source,
		target: target,
		cities: cities,
	}
}

// Len возвращает число кадров, включая финальный
func (p *Player) Len() int {
	return len(p.result.Steps) + 1
}

// Finished сообщает, что финальный кадр уже показан
func (p *Player) Finished() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.finished
}

// Next возвращает следующий кадр. Когда шаги кончились, возвращается финальный
// кадр и проигрыватель помечается завершённым; последующие вызовы возвращают
// его же с false.
func (p *Player) Next() (Frame, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	steps := p.result.Steps
	if p.pos < len(steps) {
		step := steps[p.pos]
		frame := p.stepFrame(p.pos, &step)
		p.pos++
		return frame, true
	}

	fresh := !p.finished
	p.finished = true
	return p.finalFrame(), fresh
}

// Reset возвращает проигрыватель к началу
func (p *Player) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pos = 0
	p.finished = false
}

// Play проигрывает трассу с начала, выдавая кадр раз в delay.
// Канал закрывается после финального кадра или при отмене ctx.
func (p *Player) Play(ctx context.Context, delay time.Duration) <-chan Frame {
	if delay < MinDelay {
		delay = MinDelay
	}

	p.Reset()
	frames := make(chan Frame)

	go func() {
		defer close(frames)

		ticker := time.NewTicker(delay)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			if ctx.Err() != nil {
				return
			}

			frame, ok := p.Next()
			if !ok {
				return
			}

			select {
			case <-ctx.Done():
				return
			case frames <- frame:
			}

			if frame.Final {
				return
			}
		}
	}()

	return frames
}

func (p *Player) stepFrame(index int, step *engine.Step) Frame {
	roles := p.baseRoles()
	for _, name := range step.Visited {
		roles[name] = RoleVisited
	}

	var arc *Arc
	if step.Neighbor != domain.NoVertex {
		roles[step.Neighbor] = RoleNeighbor
		arc = &Arc{From: step.Current, To: step.Neighbor}
	}
	roles[step.Current] = RoleCurrent
	p.markEndpoints(roles)

	return Frame{
		Index:     index,
		Total:     len(p.result.Steps),
		Step:      step,
		Roles:     roles,
		ActiveArc: arc,
	}
}

func (p *Player) finalFrame() Frame {
	roles := p.baseRoles()
	for _, name := range p.result.Visited {
		roles[name] = RoleVisited
	}
	for _, name := range p.result.Path {
		roles[name] = RolePath
	}
	p.markEndpoints(roles)

	return Frame{
		Index: len(p.result.Steps),
		Total: len(p.result.Steps),
		Roles: roles,
		Final: true,
	}
}

func (p *Player) baseRoles() map[string]Role {
	roles := make(map[string]Role, len(p.cities))
	for _, name := range p.cities {
		roles[name] = RoleIdle
	}
	return roles
}

func (p *Player) markEndpoints(roles map[string]Role) {
	if _, ok := roles[p.target]; ok {
		roles[p.target] = RoleTarget
	}
	if _, ok := roles[p.source]; ok {
		roles[p.source] = RoleSource
	}
}
