package workflow

// State names one step of a guided dialogue. Which states a session passes
// through depends on its kind and on what the operator enters.
type State string

const (
	// Add workflow states.
	StateChooseSource     State = "choose_source"
	StateBrowseHistory    State = "browse_history"
	StateEnterBreweryName State = "enter_brewery_name"
	StateChooseCandidate  State = "choose_candidate"
	StateEnterName        State = "enter_name"
	StateEnterStyle       State = "enter_style"
	StateEnterPrice       State = "enter_price"
	StateEnterServingCost State = "enter_serving_cost"
	StateEnterDescription State = "enter_description"

	// Edit workflow states.
	StateSelectField State = "select_field"
	StateEnterValue  State = "enter_value"

	// Delete workflow state.
	StateConfirmDelete State = "confirm_delete"

	// StateDone is terminal for every kind.
	StateDone State = "done"
)

// Kind distinguishes the three guided dialogues.
type Kind string

const (
	KindAdd    Kind = "add"
	KindEdit   Kind = "edit"
	KindDelete Kind = "delete"
)
