package actions

import (
	"fmt"

	"agent-bridge/internal/core/types"
	"agent-bridge/internal/engine/handlers"
	"agent-bridge/internal/sim"
	"agent-bridge/pkg/api"
)

// target - общая подготовка действий над объектом карты: игрок свободен
// и объект ещё существует.
func target(ctx handlers.Context, verb string, id types.EntityID) (sim.Object, error) {
	if err := idle(ctx, verb); err != nil {
		return sim.Object{}, err
	}
	o, err := resolve(ctx, id)
	if err != nil {
		return o, fmt.Errorf("%s: %w", verb, err)
	}
	return o, nil
}

func HandleUseObject(ctx handlers.Context, p api.ObjectPayload) (handlers.Result, error) {
	o, err := target(ctx, "use_object", p.ObjectID)
	if err != nil {
		return handlers.Result{}, err
	}
	if err := ctx.Sim.UseObject(o.ID); err != nil {
		return handlers.Result{}, fmt.Errorf("use_object %s: %w", o.Name, err)
	}
	return handlers.Ok("use_object: id=%s name=%s", o.ID, o.Name)
}

func HandlePickUp(ctx handlers.Context, p api.ObjectPayload) (handlers.Result, error) {
	o, err := target(ctx, "pick_up", p.ObjectID)
	if err != nil {
		return handlers.Result{}, err
	}
	if err := ctx.Sim.PickUp(o.ID); err != nil {
		return handlers.Result{}, fmt.Errorf("pick_up %s: %w", o.Name, err)
	}
	ctx.Session.RequestRefresh()
	return handlers.Ok("pick_up: id=%s name=%s", o.ID, o.Name)
}

// HandleUseSkill: без object_id навык применяется на себя.
func HandleUseSkill(ctx handlers.Context, p api.UseSkillPayload) (handlers.Result, error) {
	skill := p.Parsed()

	var id types.EntityID
	name := "self"
	if p.ObjectID.IsNil() {
		if err := idle(ctx, "use_skill"); err != nil {
			return handlers.Result{}, err
		}
		pl, err := player(ctx)
		if err != nil {
			return handlers.Result{}, err
		}
		id = pl.ID
	} else {
		o, err := target(ctx, "use_skill", p.ObjectID)
		if err != nil {
			return handlers.Result{}, err
		}
		id, name = o.ID, o.Name
	}

	if err := ctx.Sim.UseSkill(skill, id); err != nil {
		return handlers.Result{}, fmt.Errorf("use_skill %s on %s: %w", skill, name, err)
	}
	return handlers.Ok("use_skill: %s on %s", skill, name)
}

func HandleTalkTo(ctx handlers.Context, p api.ObjectPayload) (handlers.Result, error) {
	o, err := target(ctx, "talk_to", p.ObjectID)
	if err != nil {
		return handlers.Result{}, err
	}
	if err := ctx.Sim.TalkTo(o.ID); err != nil {
		return handlers.Result{}, fmt.Errorf("talk_to %s: %w", o.Name, err)
	}
	return handlers.Ok("talk_to: id=%s name=%s", o.ID, o.Name)
}

func HandleUseItemOn(ctx handlers.Context, p api.UseItemOnPayload) (handlers.Result, error) {
	o, err := target(ctx, "use_item_on", p.ObjectID)
	if err != nil {
		return handlers.Result{}, err
	}
	pid := *p.ItemPID
	if err := ctx.Sim.UseItemOn(pid, o.ID); err != nil {
		return handlers.Result{}, fmt.Errorf("use_item_on pid=%d %s: %w", pid, o.Name, err)
	}
	return handlers.Ok("use_item_on: pid=%d (%s) on %s", pid, ctx.Sim.ItemName(pid), o.Name)
}

// HandleLookAt кладёт описание в look_at_result: оно висит в состоянии
// LookAtTTL тиков.
func HandleLookAt(ctx handlers.Context, p api.ObjectPayload) (handlers.Result, error) {
	o, err := resolve(ctx, p.ObjectID)
	if err != nil {
		return handlers.Result{}, fmt.Errorf("look_at: %w", err)
	}
	text, err := ctx.Sim.LookAt(o.ID)
	if err != nil {
		return handlers.Result{}, fmt.Errorf("look_at %s: %w", o.Name, err)
	}
	ctx.Session.SetLookAt(text, ctx.Tick)
	return handlers.Ok("look_at: %s", text)
}

func HandleOpenContainer(ctx handlers.Context, p api.ObjectPayload) (handlers.Result, error) {
	o, err := target(ctx, "open_container", p.ObjectID)
	if err != nil {
		return handlers.Result{}, err
	}
	if err := ctx.Sim.OpenContainer(o.ID); err != nil {
		return handlers.Result{}, fmt.Errorf("open_container %s: %w", o.Name, err)
	}
	ctx.Session.RequestRefresh()
	return handlers.Ok("open_container: id=%s name=%s", o.ID, o.Name)
}

type holodiskQuery struct {
	Type  string `json:"type"`
	Index int    `json:"index"`
	Name  string `json:"name,omitempty"`
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

func HandleReadHolodisk(ctx handlers.Context, p api.HolodiskPayload) (handlers.Result, error) {
	disks := ctx.Sim.Holodisks()
	q := holodiskQuery{Type: "read_holodisk", Index: *p.Index}

	// Плохой индекс виден только в debug: query_result остаётся прежним.
	if q.Index < 0 || q.Index >= len(disks) {
		return handlers.BadArgs("read_holodisk: index %d out of range (0-%d)", q.Index, len(disks)-1)
	}

	d := disks[q.Index]
	if !d.Acquired {
		q.Error = "not acquired"
		if err := ctx.Session.SetQuery(q, ctx.Tick); err != nil {
			return handlers.Result{}, err
		}
		return handlers.Failed("read_holodisk: holodisk not acquired")
	}

	q.Name, q.Text = d.Name, d.Text
	if err := ctx.Session.SetQuery(q, ctx.Tick); err != nil {
		return handlers.Result{}, err
	}
	return handlers.Ok("read_holodisk: %s (%d chars)", d.Name, len(d.Text))
}
