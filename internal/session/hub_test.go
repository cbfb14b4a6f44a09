package session

import "testing"

func TestHubTargetedDelivery(t *testing.T) {
	hub := NewHub()

	anaCh, cancelAna := hub.Subscribe("scene-1", "u-ana", 4)
	defer cancelAna()
	boCh, cancelBo := hub.Subscribe("scene-1", "u-bo", 4)
	defer cancelBo()
	otherCh, cancelOther := hub.Subscribe("scene-2", "u-ana", 4)
	defer cancelOther()

	hub.Publish(Event{SceneID: "scene-1", UserIDs: []string{"u-ana"}, Type: EventWorkflowStarted})
	hub.Publish(Event{SceneID: "scene-1", Type: EventDiceBroadcast})

	if got := len(anaCh); got != 2 {
		t.Fatalf("ana received %d events, want 2", got)
	}
	if got := len(boCh); got != 1 {
		t.Fatalf("bo received %d events, want broadcast only", got)
	}
	if got := len(otherCh); got != 0 {
		t.Fatalf("other scene received %d events, want 0", got)
	}
}

func TestHubCancelClosesChannel(t *testing.T) {
	hub := NewHub()

	ch, cancel := hub.Subscribe("scene-1", "u-ana", 1)
	cancel()

	if _, open := <-ch; open {
		t.Fatal("channel still open after cancel")
	}

	// Publishing after cancel must not panic.
	hub.Publish(Event{SceneID: "scene-1", Type: EventDiceBroadcast})
}

func TestHubFullBufferDropsEvent(t *testing.T) {
	hub := NewHub()

	ch, cancel := hub.Subscribe("scene-1", "u-ana", 1)
	defer cancel()

	hub.Publish(Event{SceneID: "scene-1", Type: EventDiceBroadcast})
	hub.Publish(Event{SceneID: "scene-1", Type: EventDiceBroadcast})

	if got := len(ch); got != 1 {
		t.Fatalf("buffered %d events, want 1 with overflow dropped", got)
	}
}
