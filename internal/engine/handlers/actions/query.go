package actions

import (
	"sort"

	"agent-bridge/internal/core/types"
	"agent-bridge/internal/core/types/enums"
	"agent-bridge/internal/engine/handlers"
	"agent-bridge/internal/sim"
	"agent-bridge/pkg/api"
)

// Запросы ничего не меняют в мире: ответ уходит в query_result и живёт
// там LookAtTTL тиков.

const (
	// ListItemsLimit - предел записей в ответе list_all_items.
	ListItemsLimit = 30
	// sampleItems - сколько предметов контейнера показывается в примере.
	sampleItems = 5
)

type tileObject struct {
	ID       types.EntityID `json:"id"`
	Type     string         `json:"type"`
	PID      int            `json:"pid"`
	Tile     int            `json:"tile"`
	Distance int            `json:"distance"`
	Name     string         `json:"name"`
}

type tileObjectsQuery struct {
	Type    string       `json:"type"`
	Tile    int          `json:"tile"`
	Radius  int          `json:"radius"`
	Objects []tileObject `json:"objects"`
}

func HandleTileObjects(ctx handlers.Context, p api.TileObjectsPayload) (handlers.Result, error) {
	q := tileObjectsQuery{Type: "tile_objects", Tile: *p.Tile, Radius: p.RadiusOrDefault(), Objects: []tileObject{}}

	for _, o := range ctx.Sim.Objects(sim.ObjectQuery{Center: q.Tile, Radius: q.Radius}) {
		dist := ctx.Sim.TileDistance(o.Tile, q.Tile)
		if dist > q.Radius {
			continue
		}
		q.Objects = append(q.Objects, tileObject{
			ID: o.ID, Type: o.Kind.String(), PID: o.PID, Tile: o.Tile, Distance: dist, Name: o.Name,
		})
	}

	if err := ctx.Session.SetQuery(q, ctx.Tick); err != nil {
		return handlers.Result{}, err
	}
	return handlers.Ok("tile_objects at %d r=%d: %d objects", q.Tile, q.Radius, len(q.Objects))
}

type itemMatch struct {
	Location      string          `json:"location"`
	ObjectID      *types.EntityID `json:"object_id,omitempty"`
	ContainerID   *types.EntityID `json:"container_id,omitempty"`
	ContainerName string          `json:"container_name,omitempty"`
	Name          string          `json:"name,omitempty"`
	Tile          *int            `json:"tile,omitempty"`
	Distance      *int            `json:"distance,omitempty"`
	Quantity      int             `json:"quantity"`
}

type findItemQuery struct {
	Type       string      `json:"type"`
	PID        int         `json:"pid"`
	Matches    []itemMatch `json:"matches"`
	MatchCount int         `json:"match_count"`
}

// HandleFindItem ищет pid на земле, в контейнерах текущего уровня и в
// инвентаре игрока.
func HandleFindItem(ctx handlers.Context, p api.FindItemPayload) (handlers.Result, error) {
	pl, err := player(ctx)
	if err != nil {
		return handlers.Result{}, err
	}
	pid := *p.PID
	q := findItemQuery{Type: "find_item", PID: pid, Matches: []itemMatch{}}

	kinds := []enums.ObjectKind{enums.KindItem, enums.KindScenery}
	for _, o := range ctx.Sim.Objects(sim.ObjectQuery{Kinds: kinds, Center: pl.Tile, Radius: -1}) {
		id, tile, dist := o.ID, o.Tile, ctx.Sim.TileDistance(pl.Tile, o.Tile)

		if o.Kind == enums.KindItem && o.PID == pid {
			q.Matches = append(q.Matches, itemMatch{
				Location: "ground", ObjectID: &id, Name: o.Name, Tile: &tile, Distance: &dist, Quantity: max(o.Quantity, 1),
			})
		}

		items, ok := ctx.Sim.Contents(o.ID)
		if !ok {
			continue
		}
		location := "container"
		if o.Kind == enums.KindItem {
			location = "ground_container"
		}
		for _, it := range items {
			if it.PID != pid {
				continue
			}
			q.Matches = append(q.Matches, itemMatch{
				Location: location, ContainerID: &id, ContainerName: o.Name, Tile: &tile, Distance: &dist, Quantity: it.Quantity,
			})
		}
	}

	for _, it := range ctx.Sim.Inventory().Items {
		if it.PID == pid {
			q.Matches = append(q.Matches, itemMatch{Location: "player_inventory", Name: it.Name, Quantity: it.Quantity})
		}
	}
	q.MatchCount = len(q.Matches)

	if err := ctx.Session.SetQuery(q, ctx.Tick); err != nil {
		return handlers.Result{}, err
	}
	if q.MatchCount == 0 {
		return handlers.Ok("find_item pid=%d: NONE FOUND", pid)
	}
	return handlers.Ok("find_item pid=%d: %d matches", pid, q.MatchCount)
}

type sampleItem struct {
	PID      int    `json:"pid"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type itemEntry struct {
	Location    string         `json:"location"`
	ObjectID    types.EntityID `json:"object_id"`
	PID         int            `json:"pid"`
	Tile        int            `json:"tile"`
	Distance    int            `json:"distance"`
	Name        string         `json:"name"`
	ItemCount   *int           `json:"item_count,omitempty"`
	SampleItems []sampleItem   `json:"sample_items,omitempty"`
}

type listItemsQuery struct {
	Type       string      `json:"type"`
	Elevation  int         `json:"elevation"`
	Entries    []itemEntry `json:"entries"`
	EntryCount int         `json:"entry_count"`
}

// HandleListAllItems - все предметы на земле и непустые контейнеры уровня,
// ближайшие первыми, не больше ListItemsLimit.
func HandleListAllItems(ctx handlers.Context) (handlers.Result, error) {
	pl, err := player(ctx)
	if err != nil {
		return handlers.Result{}, err
	}
	q := listItemsQuery{Type: "list_all_items", Elevation: pl.Elevation, Entries: []itemEntry{}}

	kinds := []enums.ObjectKind{enums.KindItem, enums.KindScenery}
	for _, o := range ctx.Sim.Objects(sim.ObjectQuery{Kinds: kinds, Center: pl.Tile, Radius: -1}) {
		e := itemEntry{
			Location: "ground", ObjectID: o.ID, PID: o.PID, Tile: o.Tile,
			Distance: ctx.Sim.TileDistance(pl.Tile, o.Tile), Name: o.Name,
		}

		items, _ := ctx.Sim.Contents(o.ID)
		switch {
		case len(items) > 0 && o.Kind == enums.KindItem:
			e.Location = "ground_container"
		case len(items) > 0:
			e.Location = "container"
		case o.Kind == enums.KindScenery:
			continue
		}
		if len(items) > 0 {
			n := len(items)
			e.ItemCount = &n
			for _, it := range items[:min(n, sampleItems)] {
				e.SampleItems = append(e.SampleItems, sampleItem{PID: it.PID, Name: it.Name, Quantity: it.Quantity})
			}
		}
		q.Entries = append(q.Entries, e)
	}

	sort.SliceStable(q.Entries, func(i, j int) bool { return q.Entries[i].Distance < q.Entries[j].Distance })
	if len(q.Entries) > ListItemsLimit {
		q.Entries = q.Entries[:ListItemsLimit]
	}
	q.EntryCount = len(q.Entries)

	if err := ctx.Session.SetQuery(q, ctx.Tick); err != nil {
		return handlers.Result{}, err
	}
	if q.EntryCount == 0 {
		return handlers.Ok("list_all_items elev=%d: NONE", pl.Elevation)
	}
	return handlers.Ok("list_all_items elev=%d: %d entries", pl.Elevation, q.EntryCount)
}
