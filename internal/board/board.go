package board

import (
	"sync"
)

// Service identifies one monitored service. Name is the key used in the
// status results and in the page's data-service attribute.
type Service struct {
	Name        string
	DisplayName string
}

// Indicator is the rendered dot and label of one service.
type Indicator struct {
	Service     string `json:"service"`
	DisplayName string `json:"display_name"`
	State       State  `json:"state"`
	DotClass    string `json:"dot_class"`
	Text        string `json:"text"`
	Color       string `json:"color,omitempty"`
}

// Trigger is the manual refresh control.
type Trigger struct {
	Disabled bool   `json:"disabled"`
	Label    string `json:"label"`
}

// Snapshot is a detached copy of the board.
type Snapshot struct {
	Indicators []Indicator `json:"indicators"`
	Trigger    Trigger     `json:"trigger"`
	LastCheck  string      `json:"last_check"`
}

// Indicator returns the indicator for name, if any.
func (s Snapshot) Indicator(name string) (Indicator, bool) {
	for _, ind := range s.Indicators {
		if ind.Service == name {
			return ind, true
		}
	}
	return Indicator{}, false
}

type Board struct {
	mutex      sync.RWMutex
	order      []string
	indicators map[string]*Indicator
	trigger    Trigger
	lastCheck  string
}

// New creates a board with every service in the Checking state and an idle,
// enabled trigger.
func New(services []Service) *Board {
	b := &Board{
		indicators: make(map[string]*Indicator, len(services)),
		trigger:    Trigger{Label: LabelIdle},
	}
	b.setServices(services)
	return b
}

// SetServices replaces the known service set. Retained services keep their
// indicator, new ones start in the Checking state.
func (b *Board) SetServices(services []Service) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.setServices(services)
}

func (b *Board) setServices(services []Service) {
	indicators := make(map[string]*Indicator, len(services))
	order := make([]string, 0, len(services))

	for _, s := range services {
		if _, dup := indicators[s.Name]; dup {
			continue
		}

		display := s.DisplayName
		if display == "" {
			display = s.Name
		}

		ind, ok := b.indicators[s.Name]
		if !ok {
			ind = &Indicator{Service: s.Name}
			checking(ind)
		}
		ind.DisplayName = display

		indicators[s.Name] = ind
		order = append(order, s.Name)
	}

	b.indicators = indicators
	b.order = order
}

// Services returns the known service names in display order.
func (b *Board) Services() []string {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	names := make([]string, len(b.order))
	copy(names, b.order)
	return names
}

// Reset puts every indicator back into the Checking state. Only the dot
// class and the text are reset; the text color keeps its previous value.
func (b *Board) Reset() {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	for _, ind := range b.indicators {
		checking(ind)
	}
}

// Update renders one service's reachability. Unknown services are ignored
// and reported with a false return.
func (b *Board) Update(name string, accessible bool) bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	ind, ok := b.indicators[name]
	if !ok {
		return false
	}

	render(ind, accessible)
	return true
}

// SetAll sets every indicator to state. StateError and StateChecking only
// replace the text and leave the dot class and color as they were.
func (b *Board) SetAll(state State) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	for _, ind := range b.indicators {
		switch state {
		case StateOnline, StateOffline:
			render(ind, state == StateOnline)
		case StateError:
			ind.State = StateError
			ind.Text = TextError
		default:
			ind.State = StateChecking
			ind.Text = TextChecking
		}
	}
}

// SetTrigger updates the manual refresh control.
func (b *Board) SetTrigger(disabled bool, label string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.trigger = Trigger{Disabled: disabled, Label: label}
}

// SetLastCheck records the display time of the latest successful check.
func (b *Board) SetLastCheck(value string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.lastCheck = value
}

// Snapshot returns a copy of the board with indicators in display order.
func (b *Board) Snapshot() Snapshot {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	snap := Snapshot{
		Indicators: make([]Indicator, 0, len(b.order)),
		Trigger:    b.trigger,
		LastCheck:  b.lastCheck,
	}

	for _, name := range b.order {
		snap.Indicators = append(snap.Indicators, *b.indicators[name])
	}

	return snap
}

func render(ind *Indicator, accessible bool) {
	if accessible {
		ind.State = StateOnline
		ind.DotClass = DotClassOnline
		ind.Text = TextOnline
		ind.Color = ColorOnline
		return
	}

	ind.State = StateOffline
	ind.DotClass = DotClassOffline
	ind.Text = TextOffline
	ind.Color = ColorOffline
}

func checking(ind *Indicator) {
	ind.State = StateChecking
	ind.DotClass = DotClass
	ind.Text = TextChecking
}
