//go:build !headless

package audio

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"

	"go-juno/debug"
)

// OtoOutput plays a Host through the system sound device.
type OtoOutput struct {
	host    *Host
	ctx     *oto.Context
	player  *oto.Player
	started bool
	mu      sync.Mutex
}

// NewOtoOutput opens the device. oto allows one context per process.
func NewOtoOutput(host *Host, sampleRate int) (*OtoOutput, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: Channels,
		Format:       oto.FormatFloat32LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready
	debug.Log("audio", "oto context ready at %d Hz", sampleRate)

	return &OtoOutput{
		host:   host,
		ctx:    ctx,
		player: ctx.NewPlayer(host),
	}, nil
}

func (o *OtoOutput) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.player == nil {
		return fmt.Errorf("audio output closed")
	}
	if !o.started {
		o.player.Play()
		o.started = true
	}
	return nil
}

// Close silences the host first so the player drains zeros, then closes it.
func (o *OtoOutput) Close() error {
	o.host.Stop()
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.player == nil {
		return nil
	}
	err := o.player.Close()
	o.player = nil
	o.started = false
	return err
}

// Available reports whether this build can open a sound device.
func Available() bool { return true }
