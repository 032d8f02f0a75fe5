package msgsource

import (
	"log"
	"sync"

	"github.com/tinytelemetry/cards/internal/appmsg"
	"github.com/tinytelemetry/cards/internal/model"
)

// Stopper is a transport that feeds the hub.
type Stopper interface {
	Stop() error
}

// PhoneSource exposes frames from every transport attached to an
// appmsg.Hub. Stop shuts the transports down before closing the hub.
type PhoneSource struct {
	hub        *appmsg.Hub
	transports []Stopper
	ch         chan model.Envelope
	stopOnce   sync.Once
}

// NewPhoneSource creates a PhoneSource from a hub and its already-started
// transports.
func NewPhoneSource(hub *appmsg.Hub, transports ...Stopper) *PhoneSource {
	s := &PhoneSource{
		hub:        hub,
		transports: transports,
		ch:         make(chan model.Envelope),
	}
	go s.forward()
	return s
}

func (s *PhoneSource) forward() {
	defer close(s.ch)
	for {
		select {
		case <-s.hub.Done():
			return
		case env := <-s.hub.Lines():
			select {
			case s.ch <- env:
			case <-s.hub.Done():
				return
			}
		}
	}
}

func (s *PhoneSource) Lines() <-chan model.Envelope { return s.ch }
func (s *PhoneSource) Name() string                 { return "phone" }

func (s *PhoneSource) Stop() {
	s.stopOnce.Do(func() {
		for _, t := range s.transports {
			if err := t.Stop(); err != nil {
				log.Printf("msgsource: stopping transport: %v", err)
			}
		}
		s.hub.Close()
	})
}
