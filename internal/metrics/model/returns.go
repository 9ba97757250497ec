package model

import "time"

// ReturnCategory classifies a return by the stage it regressed from.
type ReturnCategory string

// Return categories.
const (
	ReturnCodeReview ReturnCategory = "codeReview"
	ReturnDevTesting ReturnCategory = "devTesting"
	ReturnStgTesting ReturnCategory = "stgTesting"
	ReturnOther      ReturnCategory = "other"
)

// CategorizeReturn maps the source state of a transition into FixRequired
// to its return category.
func CategorizeReturn(source State) ReturnCategory {
	switch source {
	case StateCodeReview:
		return ReturnCodeReview
	case StateDevInTesting, StateDevAcceptanceTesting:
		return ReturnDevTesting
	case StateStgInTesting, StateStgAcceptanceTesting:
		return ReturnStgTesting
	default:
		return ReturnOther
	}
}

// ReturnCounts holds per-category return counters.
type ReturnCounts struct {
	CodeReview int `json:"code_review"`
	DevTesting int `json:"dev_testing"`
	StgTesting int `json:"stg_testing"`
	Other      int `json:"other"`
}

// Add increments the counter for the given category.
func (c *ReturnCounts) Add(cat ReturnCategory) {
	switch cat {
	case ReturnCodeReview:
		c.CodeReview++
	case ReturnDevTesting:
		c.DevTesting++
	case ReturnStgTesting:
		c.StgTesting++
	default:
		c.Other++
	}
}

// Merge adds other's counters into c.
func (c *ReturnCounts) Merge(other ReturnCounts) {
	c.CodeReview += other.CodeReview
	c.DevTesting += other.DevTesting
	c.StgTesting += other.StgTesting
	c.Other += other.Other
}

// Total returns the sum over all categories.
func (c ReturnCounts) Total() int {
	return c.CodeReview + c.DevTesting + c.StgTesting + c.Other
}

// ReturnEvent is one observed regression into FixRequired. Developer is
// the last known developer at the moment of the return, not whoever is
// assigned at analysis time.
type ReturnEvent struct {
	WorkItemID  int            `json:"work_item_id"`
	SourceState State          `json:"source_state"`
	Timestamp   time.Time      `json:"timestamp"`
	Developer   string         `json:"developer"`
	Category    ReturnCategory `json:"category"`
}

// ReturnResult is the output of the return counter for one work item.
type ReturnResult struct {
	ByCategory   ReturnCounts
	PerDeveloper map[string]ReturnCounts
	Events       []ReturnEvent
}
