package services

import (
	"sort"
	"time"

	"github.com/zatekoja/courtside/internal/domain/entities"
)

// cluster accumulates members around a drifting mean. Offsets are kept
// relative to the first member so the running sum stays small.
type cluster struct {
	anchor  time.Time
	offsets time.Duration
	members []*entities.PlayIntent
}

func (c *cluster) center() time.Time {
	return c.anchor.Add(c.offsets / time.Duration(len(c.members)))
}

func (c *cluster) add(intent *entities.PlayIntent) {
	c.offsets += intent.IntentTime.Sub(c.anchor)
	c.members = append(c.members, intent)
}

// ClusterIntents groups intents into time blocks. Intents are walked in
// (intent_time, id) order; each joins the open cluster whose current center is
// nearest and no more than radius away, or seeds a new one. A cluster's center
// is the mean of its members' times, so it moves as members join and later
// intents are tested against the moved center. The result is independent of
// input order. Blocks come back by center time ascending.
func ClusterIntents(intents []*entities.PlayIntent, radius time.Duration) []*entities.TimeBlock {
	sorted := make([]*entities.PlayIntent, 0, len(intents))
	for _, intent := range intents {
		if intent != nil {
			sorted = append(sorted, intent)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].IntentTime.Equal(sorted[j].IntentTime) {
			return sorted[i].IntentTime.Before(sorted[j].IntentTime)
		}
		return sorted[i].ID < sorted[j].ID
	})

	var clusters []*cluster
	for _, intent := range sorted {
		var best *cluster
		var bestDistance time.Duration
		for _, c := range clusters {
			distance := absDuration(intent.IntentTime.Sub(c.center()))
			if distance > radius {
				continue
			}
			if best == nil || distance < bestDistance {
				best, bestDistance = c, distance
			}
		}

		if best == nil {
			best = &cluster{anchor: intent.IntentTime}
			clusters = append(clusters, best)
		}
		best.add(intent)
	}

	blocks := make([]*entities.TimeBlock, 0, len(clusters))
	for _, c := range clusters {
		blocks = append(blocks, c.block())
	}
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].CenterTime.Before(blocks[j].CenterTime)
	})
	return blocks
}

// FilterActive drops intents that have expired at now
func FilterActive(intents []*entities.PlayIntent, now time.Time) []*entities.PlayIntent {
	active := make([]*entities.PlayIntent, 0, len(intents))
	for _, intent := range intents {
		if intent != nil && intent.ActiveAt(now) {
			active = append(active, intent)
		}
	}
	return active
}

func (c *cluster) block() *entities.TimeBlock {
	block := &entities.TimeBlock{
		CenterTime:       c.center(),
		StartTime:        c.members[0].IntentTime,
		EndTime:          c.members[0].IntentTime,
		MemberIntents:    c.members,
		Participants:     make([]string, 0, len(c.members)),
		ParticipantCount: len(c.members),
	}

	seen := make(map[string]struct{}, len(c.members))
	for _, member := range c.members {
		if member.IntentTime.Before(block.StartTime) {
			block.StartTime = member.IntentTime
		}
		if member.IntentTime.After(block.EndTime) {
			block.EndTime = member.IntentTime
		}
		if _, ok := seen[member.UserID]; !ok {
			seen[member.UserID] = struct{}{}
			block.Participants = append(block.Participants, member.UserID)
		}
	}
	return block
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
