package midi

// Port is one enumerable input source.
type Port struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Controller is an open MIDI input. Events is closed by Close.
type Controller interface {
	ID() string
	Name() string
	Events() <-chan Message
	Close() error
}
