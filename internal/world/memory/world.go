// Package memory is an in-process World collaborator. It keeps players and
// cells in maps behind one mutex and runs timed effects from its own tick
// loop. It does no physics.
package memory

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/mcoot/arenactl/internal/dependencies/clock"
	"github.com/mcoot/arenactl/internal/dependencies/random"
	"github.com/mcoot/arenactl/internal/model"
	"github.com/mcoot/arenactl/internal/settings"
	"github.com/mcoot/arenactl/internal/world"
)

// DefaultUnnamed is the name given to players that join without one
const DefaultUnnamed = "An unnamed cell"

var botNames = []string{
	"Blob", "Goo", "Nibbles", "Orbit", "Pellet", "Quark",
	"Ripple", "Spore", "Tidbit", "Vortex", "Wobble", "Zest",
}

// Config holds World configuration
type Config struct {
	TickRate    time.Duration
	ArenaSize   float64
	MaxCells    int
	SplitOffset float64
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		TickRate:    40 * time.Millisecond,
		ArenaSize:   6000,
		MaxCells:    16,
		SplitOffset: 40,
	}
}

// ChatFunc delivers a chat message to its recipients
type ChatFunc func(msg model.ChatMessage)

type player struct {
	info  model.PlayerInfo
	cells []model.CellID
}

type effect struct {
	id       world.EffectID
	cells    []model.CellID
	interval time.Duration
	next     time.Time
	until    time.Time
	onEnd    func()
}

// World implements world.Bridge in memory
type World struct {
	cfg      Config
	settings *settings.Store
	chat     ChatFunc
	clock    clock.Clock
	random   random.Random
	logger   *slog.Logger

	mu         sync.Mutex
	nextPlayer model.PlayerID
	nextCell   model.CellID
	nextEffect world.EffectID
	players    map[model.PlayerID]*player
	cells      map[model.CellID]*model.Cell
	effects    map[world.EffectID]*effect
	tickAvg    time.Duration
}

// Ensure World implements the interface
var _ world.Bridge = (*World)(nil)

// New creates an empty World
func New(cfg Config, store *settings.Store, chat ChatFunc, clk clock.Clock, rnd random.Random, logger *slog.Logger) *World {
	if cfg.TickRate <= 0 {
		cfg.TickRate = DefaultConfig().TickRate
	}
	if cfg.ArenaSize <= 0 {
		cfg.ArenaSize = DefaultConfig().ArenaSize
	}
	if cfg.MaxCells <= 0 {
		cfg.MaxCells = DefaultConfig().MaxCells
	}
	return &World{
		cfg:      cfg,
		settings: store,
		chat:     chat,
		clock:    clk,
		random:   rnd,
		logger:   logger.With(slog.String("component", "world")),
		players:  make(map[model.PlayerID]*player),
		cells:    make(map[model.CellID]*model.Cell),
		effects:  make(map[world.EffectID]*effect),
	}
}

// Settings returns the live settings store
func (w *World) Settings() *settings.Store {
	return w.settings
}

// SendChat stamps and delivers a chat message
func (w *World) SendChat(msg model.ChatMessage) {
	if msg.SentAt.IsZero() {
		msg.SentAt = w.clock.Now()
	}
	if w.chat != nil {
		w.chat(msg)
	}
}

// Status returns aggregate counts over connected trackers
func (w *World) Status() model.ServerStatus {
	values := w.settings.Snapshot()

	w.mu.Lock()
	defer w.mu.Unlock()

	status := model.ServerStatus{
		MaxConnections: values.MaxConnections,
		GameMode:       values.GameMode,
		TickAverage:    w.tickAvg,
	}
	for _, p := range w.players {
		switch p.info.Kind {
		case model.KindHuman:
			if p.info.Connected {
				status.Humans++
			}
		case model.KindBot:
			status.Bots++
		case model.KindMinion:
			status.Minions++
		}
	}
	return status
}

// Join registers a human player
func (w *World) Join(name, remoteAddr string) model.PlayerID {
	if name == "" {
		name = DefaultUnnamed
	}
	w.mu.Lock()
	id := w.addPlayerLocked(model.PlayerInfo{
		Name:       name,
		Kind:       model.KindHuman,
		RemoteAddr: remoteAddr,
	})
	w.mu.Unlock()

	w.logger.Info("player joined",
		slog.Uint64("player_id", uint64(id)),
		slog.String("remote_addr", remoteAddr))
	return id
}

// Leave marks a human as disconnected
func (w *World) Leave(id model.PlayerID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p, ok := w.players[id]; ok && p.info.Kind == model.KindHuman {
		p.info.Connected = false
	}
}

// Spawn gives a player one cell at its spawn size
func (w *World) Spawn(id model.PlayerID) error {
	spawnMass := w.settings.Snapshot().SpawnMass

	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[id]
	if !ok {
		return model.ErrPlayerNotFound
	}
	if len(p.cells) > 0 {
		return model.ErrInGame
	}
	size := p.info.SpawnSize
	if size <= 0 {
		size = model.SizeFromMass(spawnMass)
	}
	w.addCellLocked(model.CellPlayer, id, w.randomPositionLocked(), size, w.randomColorLocked())
	return nil
}

// Split halves the mass of a player's largest cell into a new sibling cell
// of the same color
func (w *World) Split(id model.PlayerID) (model.CellID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[id]
	if !ok {
		return 0, model.ErrPlayerNotFound
	}
	if len(p.cells) == 0 {
		return 0, model.ErrNotInGame
	}
	if len(p.cells) >= w.cfg.MaxCells {
		return 0, model.ErrCellLimit
	}

	var largest *model.Cell
	for _, cid := range p.cells {
		if c, ok := w.cells[cid]; ok && (largest == nil || c.Size > largest.Size) {
			largest = c
		}
	}
	largest.Size = model.SizeFromMass(largest.Mass() / 2)
	pos := model.Position{X: largest.Position.X + w.cfg.SplitOffset, Y: largest.Position.Y}
	return w.addCellLocked(model.CellPlayer, id, pos, largest.Size, largest.Color), nil
}

// Player returns a snapshot of one player
func (w *World) Player(id model.PlayerID) (model.PlayerInfo, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[id]
	if !ok {
		return model.PlayerInfo{}, false
	}
	return w.snapshotLocked(p), true
}

// Players returns snapshots of all trackers ordered by ID
func (w *World) Players() []model.PlayerInfo {
	w.mu.Lock()
	defer w.mu.Unlock()
	result := make([]model.PlayerInfo, 0, len(w.players))
	for _, p := range w.players {
		result = append(result, w.snapshotLocked(p))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// SetSkin sets or clears a player's skin
func (w *World) SetSkin(id model.PlayerID, skin string) error {
	return w.updatePlayer(id, func(p *player) { p.info.Skin = skin })
}

// SetSpawnSize sets a player's respawn size
func (w *World) SetSpawnSize(id model.PlayerID, size float64) error {
	return w.updatePlayer(id, func(p *player) { p.info.SpawnSize = size })
}

// SetMergeOverride forces or releases merging of a player's cells
func (w *World) SetMergeOverride(id model.PlayerID, on bool) error {
	return w.updatePlayer(id, func(p *player) { p.info.MergeOverride = on })
}

func (w *World) updatePlayer(id model.PlayerID, fn func(p *player)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[id]
	if !ok {
		return model.ErrPlayerNotFound
	}
	fn(p)
	return nil
}

// Cells returns a player's cells oldest first
func (w *World) Cells(owner model.PlayerID) []model.Cell {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[owner]
	if !ok {
		return nil
	}
	result := make([]model.Cell, 0, len(p.cells))
	for _, id := range p.cells {
		if c, ok := w.cells[id]; ok {
			result = append(result, *c)
		}
	}
	return result
}

// RemoveCell removes a cell and detaches it from effects
func (w *World) RemoveCell(id model.CellID) (model.Cell, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.removeCellLocked(id)
}

// AddFood adds a consumable
func (w *World) AddFood(pos model.Position, size float64, color model.Color) model.CellID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.addCellLocked(model.CellFood, model.NoPlayer, pos, size, color)
}

// ResizeCell sets a cell's size
func (w *World) ResizeCell(id model.CellID, size float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	c, ok := w.cells[id]
	if !ok {
		return model.ErrCellNotFound
	}
	c.Size = size
	return nil
}

// FoodCount returns the number of consumables in the arena
func (w *World) FoodCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, c := range w.cells {
		if c.Kind == model.CellFood {
			n++
		}
	}
	return n
}

// Foods returns every consumable ordered by ID
func (w *World) Foods() []model.Cell {
	w.mu.Lock()
	defer w.mu.Unlock()
	var result []model.Cell
	for _, c := range w.cells {
		if c.Kind == model.CellFood {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// AddBots adds n spawned bots
func (w *World) AddBots(n int) []model.PlayerID {
	w.mu.Lock()
	defer w.mu.Unlock()
	ids := make([]model.PlayerID, 0, n)
	for i := 0; i < n; i++ {
		id := w.addPlayerLocked(model.PlayerInfo{
			Name: botNames[w.random.Intn(len(botNames))],
			Kind: model.KindBot,
		})
		w.spawnLocked(id)
		ids = append(ids, id)
	}
	return ids
}

// AddMinions binds n spawned minions to owner
func (w *World) AddMinions(owner model.PlayerID, n int) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[owner]
	if !ok {
		return 0, model.ErrPlayerNotFound
	}
	if p.info.IsMinion() {
		return 0, model.ErrMinionOwner
	}
	p.info.MinionControl = true
	for i := 0; i < n; i++ {
		id := w.addPlayerLocked(model.PlayerInfo{
			Name:        p.info.Name,
			Kind:        model.KindMinion,
			MinionOwner: owner,
		})
		w.spawnLocked(id)
	}
	return n, nil
}

// RemoveMinions removes every minion bound to owner
func (w *World) RemoveMinions(owner model.PlayerID) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[owner]
	if !ok {
		return 0, model.ErrPlayerNotFound
	}
	p.info.MinionControl = false
	return w.removeMinionsLocked(owner), nil
}

// StartColorCycle schedules a recoloring effect
func (w *World) StartColorCycle(cells []model.CellID, duration, interval time.Duration, onEnd func()) world.EffectID {
	now := w.clock.Now()

	w.mu.Lock()
	defer w.mu.Unlock()
	w.nextEffect++
	e := &effect{
		id:       w.nextEffect,
		interval: interval,
		next:     now.Add(interval),
		until:    now.Add(duration),
		onEnd:    onEnd,
	}
	for _, id := range cells {
		if _, ok := w.cells[id]; ok {
			e.cells = append(e.cells, id)
		}
	}
	w.effects[e.id] = e
	return e.id
}

// CancelEffect stops an effect without calling its onEnd
func (w *World) CancelEffect(id world.EffectID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.effects[id]; !ok {
		return false
	}
	delete(w.effects, id)
	return true
}

// EffectCells returns the cells an effect still touches
func (w *World) EffectCells(id world.EffectID) ([]model.CellID, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.effects[id]
	if !ok {
		return nil, false
	}
	return append([]model.CellID(nil), e.cells...), true
}

// Run drives Step from a ticker until ctx is cancelled
func (w *World) Run(ctx context.Context) {
	ticker := w.clock.NewTicker(w.cfg.TickRate)
	defer ticker.Stop()

	w.logger.Info("world loop started", slog.Duration("tick_rate", w.cfg.TickRate))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("world loop stopped")
			return
		case now := <-ticker.C():
			w.Step(now)
			w.ObserveTick(w.clock.Now().Sub(now))
		}
	}
}

// Step reaps disconnected humans and advances effects to now
func (w *World) Step(now time.Time) {
	var finished []func()

	w.mu.Lock()
	w.reapLocked()
	for id, e := range w.effects {
		for !e.next.After(now) && !e.next.After(e.until) {
			w.applyColorLocked(e)
			e.next = e.next.Add(e.interval)
		}
		if !now.Before(e.until) {
			delete(w.effects, id)
			if e.onEnd != nil {
				finished = append(finished, e.onEnd)
			}
		}
	}
	w.mu.Unlock()

	for _, fn := range finished {
		fn()
	}
}

// ObserveTick folds a tick duration into the rolling average
func (w *World) ObserveTick(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tickAvg += (d - w.tickAvg) / 2
}

func (w *World) applyColorLocked(e *effect) {
	color := w.randomColorLocked()
	alive := e.cells[:0]
	for _, id := range e.cells {
		c, ok := w.cells[id]
		if !ok {
			continue
		}
		c.Color = color
		alive = append(alive, id)
	}
	e.cells = alive
}

func (w *World) reapLocked() {
	for id, p := range w.players {
		if p.info.Kind != model.KindHuman || p.info.Connected {
			continue
		}
		for len(p.cells) > 0 {
			w.removeCellLocked(p.cells[0])
		}
		w.removeMinionsLocked(id)
		delete(w.players, id)
		w.logger.Info("player reaped", slog.Uint64("player_id", uint64(id)))
	}
}

func (w *World) addPlayerLocked(info model.PlayerInfo) model.PlayerID {
	w.nextPlayer++
	info.ID = w.nextPlayer
	info.Connected = true
	info.JoinedAt = w.clock.Now()
	w.players[info.ID] = &player{info: info}
	return info.ID
}

func (w *World) spawnLocked(id model.PlayerID) {
	size := model.SizeFromMass(w.settings.Snapshot().SpawnMass)
	w.addCellLocked(model.CellPlayer, id, w.randomPositionLocked(), size, w.randomColorLocked())
}

func (w *World) addCellLocked(kind model.CellKind, owner model.PlayerID, pos model.Position, size float64, color model.Color) model.CellID {
	w.nextCell++
	c := &model.Cell{
		ID:       w.nextCell,
		Kind:     kind,
		Owner:    owner,
		Position: pos,
		Size:     size,
		Color:    color,
	}
	w.cells[c.ID] = c
	if p, ok := w.players[owner]; ok && kind == model.CellPlayer {
		p.cells = append(p.cells, c.ID)
	}
	return c.ID
}

func (w *World) removeCellLocked(id model.CellID) (model.Cell, bool) {
	c, ok := w.cells[id]
	if !ok {
		return model.Cell{}, false
	}
	delete(w.cells, id)

	if p, ok := w.players[c.Owner]; ok {
		for i, cid := range p.cells {
			if cid == id {
				p.cells = append(p.cells[:i], p.cells[i+1:]...)
				break
			}
		}
		if len(p.cells) == 0 {
			p.info.MergeOverride = false
		}
	}

	for _, e := range w.effects {
		for i, cid := range e.cells {
			if cid == id {
				e.cells = append(e.cells[:i], e.cells[i+1:]...)
				break
			}
		}
	}
	return *c, true
}

func (w *World) removeMinionsLocked(owner model.PlayerID) int {
	removed := 0
	for id, p := range w.players {
		if p.info.Kind != model.KindMinion || p.info.MinionOwner != owner {
			continue
		}
		for len(p.cells) > 0 {
			w.removeCellLocked(p.cells[0])
		}
		delete(w.players, id)
		removed++
	}
	return removed
}

func (w *World) snapshotLocked(p *player) model.PlayerInfo {
	info := p.info
	info.CellCount = len(p.cells)
	if info.MinionControl {
		for _, other := range w.players {
			if other.info.Kind == model.KindMinion && other.info.MinionOwner == info.ID {
				info.MinionCount++
			}
		}
	}
	return info
}

func (w *World) randomColorLocked() model.Color {
	return model.Color{
		R: uint8(w.random.Intn(256)),
		G: uint8(w.random.Intn(256)),
		B: uint8(w.random.Intn(256)),
	}
}

func (w *World) randomPositionLocked() model.Position {
	return model.Position{
		X: w.random.Float64() * w.cfg.ArenaSize,
		Y: w.random.Float64() * w.cfg.ArenaSize,
	}
}
