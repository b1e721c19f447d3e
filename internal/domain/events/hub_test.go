package events

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestHubDeliversToRegisteredUser(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Close()

	userID := uuid.New()
	conn := &Connection{UserID: userID, Send: make(chan []byte, 4)}
	hub.Register(conn)

	event := &Event{Type: EventCreditsUpdated, UserID: userID.String(), RemainingCredits: 7}

	// Registration is processed by the hub loop; retry until it lands.
	deadline := time.After(2 * time.Second)
	for {
		hub.SendToUser(userID, event)
		select {
		case data := <-conn.Send:
			if len(data) == 0 {
				t.Fatal("empty payload")
			}
			return
		case <-deadline:
			t.Fatal("event never delivered")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestHubIgnoresUnknownUser(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Close()

	conn := &Connection{UserID: uuid.New(), Send: make(chan []byte, 1)}
	hub.Register(conn)
	time.Sleep(20 * time.Millisecond)

	hub.SendToUser(uuid.New(), &Event{Type: EventCreditsUpdated})

	select {
	case <-conn.Send:
		t.Fatal("event delivered to wrong user")
	case <-time.After(50 * time.Millisecond):
	}
}
