package workflow

import "github.com/taplistapp/taplist-server/internal/domain"

// Source selects where an add workflow takes its beverage data from.
type Source string

const (
	// SourceHistory reuses a previously entered beverage.
	SourceHistory Source = "history"
	// SourceNew enters a beverage from scratch.
	SourceNew Source = "new"
)

// Event is one operator input delivered to a session. The set of variants is
// closed; the front-end boundary decodes raw input into exactly one of them.
type Event interface {
	isEvent()
}

// TextEvent carries free-form operator text.
type TextEvent struct {
	Text string
}

// ChooseSourceEvent answers the history-or-new prompt.
type ChooseSourceEvent struct {
	Source Source
}

// ChooseHistoryEvent picks a history entry by ID.
type ChooseHistoryEvent struct {
	ID int64
}

// ChooseCandidateEvent picks a catalog candidate by list index.
type ChooseCandidateEvent struct {
	Index int
}

// ManualEvent declines the catalog candidates and continues with manual entry.
type ManualEvent struct{}

// SelectFieldEvent picks the field an edit workflow will change.
type SelectFieldEvent struct {
	Field domain.Field
}

// ConfirmEvent answers a yes/no prompt.
type ConfirmEvent struct {
	Confirmed bool
}

func (TextEvent) isEvent()            {}
func (ChooseSourceEvent) isEvent()    {}
func (ChooseHistoryEvent) isEvent()   {}
func (ChooseCandidateEvent) isEvent() {}
func (ManualEvent) isEvent()          {}
func (SelectFieldEvent) isEvent()     {}
func (ConfirmEvent) isEvent()         {}
