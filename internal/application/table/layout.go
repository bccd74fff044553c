package table

import "penalty-console/internal/application/permission"

type Density string

const (
	DensityDesktop Density = "desktop"
	DensityCompact Density = "compact"
	DensityMobile  Density = "mobile"
)

// Layout lists column keys shown inline and those behind the "show more" affordance.
type Layout struct {
	Visible  []string `json:"visible"`
	Expanded []string `json:"expanded"`
}

// VisibleColumns computes the layout for a density. Always columns are shown in every
// mode. On desktop, expanded-tier columns go behind "show more". In compact and mobile
// modes the remaining budget after always columns is filled in column order.
func VisibleColumns[T any](cols []Column[T], density Density, budget int) Layout {
	layout := Layout{Visible: []string{}, Expanded: []string{}}
	if density == DensityDesktop || density == "" {
		for _, c := range cols {
			if c.Tier == TierExpanded {
				layout.Expanded = append(layout.Expanded, c.Key)
			} else {
				layout.Visible = append(layout.Visible, c.Key)
			}
		}
		return layout
	}
	remaining := budget
	for _, c := range cols {
		if c.Tier == TierAlways {
			remaining--
		}
	}
	for _, c := range cols {
		switch {
		case c.Tier == TierAlways:
			layout.Visible = append(layout.Visible, c.Key)
		case c.Tier != TierExpanded && remaining > 0:
			layout.Visible = append(layout.Visible, c.Key)
			remaining--
		default:
			layout.Expanded = append(layout.Expanded, c.Key)
		}
	}
	return layout
}

const DefaultSwipeThreshold = 100.0

type SwipeAction struct {
	Name       string `json:"name"`
	Permission string `json:"permission,omitempty"`
}

// Swipe binds actions to the two drag directions of a mobile list row. Left fires on
// a drag towards the left (negative dx).
type Swipe struct {
	Threshold float64
	Left      *SwipeAction
	Right     *SwipeAction
}

// Resolve returns the action committed by a drag of dx pixels. Below the threshold, with
// no action bound, or without the action's permission the row springs back.
func (s Swipe) Resolve(dx float64, perms permission.Set) (SwipeAction, bool) {
	threshold := s.Threshold
	if threshold <= 0 {
		threshold = DefaultSwipeThreshold
	}
	var action *SwipeAction
	switch {
	case dx <= -threshold:
		action = s.Left
	case dx >= threshold:
		action = s.Right
	}
	if action == nil {
		return SwipeAction{}, false
	}
	if action.Permission != "" && !perms.Has(action.Permission) {
		return SwipeAction{}, false
	}
	return *action, true
}
