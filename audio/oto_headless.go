//go:build headless

package audio

import "errors"

// OtoOutput is unavailable in headless builds.
type OtoOutput struct{}

func NewOtoOutput(host *Host, sampleRate int) (*OtoOutput, error) {
	return nil, errors.New("built without audio device support")
}

func (o *OtoOutput) Start() error { return nil }
func (o *OtoOutput) Close() error { return nil }

func Available() bool { return false }
