package action

// Action represents input actions that can be performed on the metronome
type Action int

const (
	// Front panel buttons
	TempoUp Action = iota
	TempoDown
	TimeSignatureCycle

	// Host features
	ToggleMute
	Snapshot
	Quit

	// Debug controls
	LogLevelIncrease
	LogLevelDecrease
)

// Category groups actions by what they drive.
type Category int

const (
	CategoryButton Category = iota
	CategoryApp
	CategoryDebug
)

// Info describes an action for help screens.
type Info struct {
	Description string
	Category    Category
}

var infos = map[Action]Info{
	TempoUp:            {Description: "Tempo up (hold to repeat)", Category: CategoryButton},
	TempoDown:          {Description: "Tempo down (hold to repeat)", Category: CategoryButton},
	TimeSignatureCycle: {Description: "Next time signature", Category: CategoryButton},
	ToggleMute:         {Description: "Mute speaker", Category: CategoryApp},
	Snapshot:           {Description: "Save display snapshot", Category: CategoryApp},
	Quit:               {Description: "Quit", Category: CategoryApp},
	LogLevelIncrease:   {Description: "More verbose logging", Category: CategoryDebug},
	LogLevelDecrease:   {Description: "Less verbose logging", Category: CategoryDebug},
}

// GetInfo returns the description and category of an action.
func GetInfo(a Action) (Info, bool) {
	info, ok := infos[a]
	return info, ok
}

// IsButton reports whether the action is wired to a front panel button.
func (a Action) IsButton() bool {
	info, ok := infos[a]
	return ok && info.Category == CategoryButton
}

func (a Action) String() string {
	switch a {
	case TempoUp:
		return "TempoUp"
	case TempoDown:
		return "TempoDown"
	case TimeSignatureCycle:
		return "TimeSignatureCycle"
	case ToggleMute:
		return "ToggleMute"
	case Snapshot:
		return "Snapshot"
	case Quit:
		return "Quit"
	case LogLevelIncrease:
		return "LogLevelIncrease"
	case LogLevelDecrease:
		return "LogLevelDecrease"
	default:
		return "Unknown"
	}
}
