// Package schedule reconciles externally confirmed, time-anchored events
// (flights, hotels, trains) with the optimizer's flexible candidates. A
// confirmed item always keeps its slot; silently overwriting a flight or
// hotel block is never acceptable, so unresolvable collisions surface as
// hard errors.
package schedule

import (
	"fmt"
	"strings"
	"time"

	"tripnav/internal/model"
)

// ConflictError reports an unresolvable time-block collision. It names the
// conflicting items so the caller can tell the user exactly which fixed
// event could not be accommodated.
type ConflictError struct {
	Block string
	Items []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("schedule conflict in block %s between: %s", e.Block, strings.Join(e.Items, ", "))
}

var blockIndex = func() map[string]int {
	m := make(map[string]int, len(model.BlockOrder))
	for i, b := range model.BlockOrder {
		m[b] = i
	}
	return m
}()

// BlockForTime maps an absolute start time onto the day's block grid.
func BlockForTime(t time.Time) string {
	switch h := t.Hour(); {
	case h >= 5 && h < 9:
		return model.BlockBreakfast
	case h >= 9 && h < 12:
		return model.BlockMorningActivity
	case h >= 12 && h < 14:
		return model.BlockLunch
	case h >= 14 && h < 16:
		return model.BlockCafe
	case h >= 16 && h < 18:
		return model.BlockAfternoonActivity
	case h >= 18 && h < 21:
		return model.BlockDinner
	default:
		return model.BlockEveningActivity
	}
}

// categoryForKind derives the synthetic place category for a confirmed item.
func categoryForKind(kind string) string {
	switch strings.ToUpper(kind) {
	case "FLIGHT", "TRAIN", "BUS", "FERRY":
		return "transport"
	case "HOTEL", "CHECKIN", "CHECKOUT":
		return "lodging"
	default:
		return "confirmed"
	}
}

// AsPlace converts a confirmed item into the synthetic place the optimizer
// carries through the route.
func AsPlace(item model.ConfirmedScheduleItem, day, seq int) model.Place {
	return model.Place{
		ID:        fmt.Sprintf("confirmed-%s-%d", strings.ToLower(item.Kind), seq),
		Name:      item.LocationName,
		Category:  categoryForKind(item.Kind),
		TimeBlock: BlockForTime(item.StartTime),
		Day:       day,
		Confirmed: true,
	}
}

// Merge reserves the confirmed items' blocks and fits the flexible
// candidates around them. A flexible candidate whose block is taken is
// reassigned to the nearest free block; when no block is free it is
// dropped for the day and reported in the second return value. Two
// confirmed items claiming the same block is unresolvable and errors.
func Merge(confirmed []model.ConfirmedScheduleItem, flexible []model.Place, day int) (merged, dropped []model.Place, err error) {
	occupied := make(map[string]string, len(model.BlockOrder)) // block -> item name

	merged = make([]model.Place, 0, len(confirmed)+len(flexible))
	for i, item := range confirmed {
		p := AsPlace(item, day, i)
		if holder, taken := occupied[p.TimeBlock]; taken {
			return nil, nil, &ConflictError{Block: p.TimeBlock, Items: []string{holder, p.Name}}
		}
		occupied[p.TimeBlock] = p.Name
		merged = append(merged, p)
	}

	for _, p := range flexible {
		q := p
		q.Day = day
		block := q.TimeBlock
		if _, known := blockIndex[block]; !known {
			// FREE_TIME and unknown blocks float and may co-locate.
			q.TimeBlock = model.BlockFreeTime
			merged = append(merged, q)
			continue
		}
		if _, taken := occupied[block]; taken {
			reassigned, ok := nearestFreeBlock(block, occupied)
			if !ok {
				dropped = append(dropped, q)
				continue
			}
			q.TimeBlock = reassigned
			block = reassigned
		}
		occupied[block] = q.Name
		merged = append(merged, q)
	}

	if err := Validate(merged); err != nil {
		return nil, nil, err
	}
	return merged, dropped, nil
}

// nearestFreeBlock scans outward from the taken block, preferring the
// earlier block on ties.
func nearestFreeBlock(block string, occupied map[string]string) (string, bool) {
	idx := blockIndex[block]
	for d := 1; d < len(model.BlockOrder); d++ {
		if i := idx - d; i >= 0 {
			if _, taken := occupied[model.BlockOrder[i]]; !taken {
				return model.BlockOrder[i], true
			}
		}
		if i := idx + d; i < len(model.BlockOrder) {
			if _, taken := occupied[model.BlockOrder[i]]; !taken {
				return model.BlockOrder[i], true
			}
		}
	}
	return "", false
}

// Validate asserts the block-uniqueness invariant: at most one item per
// block, FREE_TIME excepted. Violations are surfaced, never corrected.
func Validate(places []model.Place) error {
	holders := make(map[string]string, len(model.BlockOrder))
	for _, p := range places {
		if p.TimeBlock == model.BlockFreeTime || p.TimeBlock == "" {
			continue
		}
		if holder, taken := holders[p.TimeBlock]; taken {
			return &ConflictError{Block: p.TimeBlock, Items: []string{holder, p.Name}}
		}
		holders[p.TimeBlock] = p.Name
	}
	return nil
}

// Interleave reinserts confirmed places into an optimized flexible
// ordering at their temporal block positions, preserving the flexible
// order. A confirmed item lands after every flexible place whose block
// precedes its own, so its absolute time is never violated by reordering.
func Interleave(flexible, confirmed []model.Place) []model.Place {
	if len(confirmed) == 0 {
		return flexible
	}
	out := append([]model.Place(nil), flexible...)
	for _, c := range confirmed {
		pos := 0
		for _, p := range out {
			if p.Confirmed {
				if blockPos(p.TimeBlock) <= blockPos(c.TimeBlock) {
					pos++
				}
				continue
			}
			if blockPos(p.TimeBlock) < blockPos(c.TimeBlock) {
				pos++
			}
		}
		out = append(out[:pos], append([]model.Place{c}, out[pos:]...)...)
	}
	return out
}

func blockPos(block string) int {
	if i, ok := blockIndex[block]; ok {
		return i
	}
	return len(model.BlockOrder) // FREE_TIME and unknown sort last
}
