package notification

import (
	"context"
	"reflect"
	"testing"

	"f1lapcompare/pkg/model"
)

type sent struct {
	chats   []int64
	subject string
	message string
}

func TestToggle(t *testing.T) {
	m := newManager(context.Background(), nil)
	if !m.Toggle(10) || !m.Subscribed(10) {
		t.Error("Expected chat to be subscribed")
	}
	if m.Toggle(10) || m.Subscribed(10) {
		t.Error("Expected chat to be unsubscribed")
	}
}

func TestRunSendsToSubscribers(t *testing.T) {
	out := make(chan sent, 1)
	m := newManager(context.Background(), func(ctx context.Context, chatIDs []int64, subject, message string) error {
		out <- sent{chats: chatIDs, subject: subject, message: message}
		return nil
	})
	m.Toggle(2)
	m.Toggle(1)

	loaded := make(chan model.SessionLoaded, 1)
	exit := make(chan bool)
	done := make(chan struct{})
	go func() {
		m.run(exit, loaded)
		close(done)
	}()

	loaded <- model.SessionLoaded{Key: model.SessionKey{Year: 2025, Event: "China", Session: "R"}, Drivers: 20, Laps: 1100}
	got := <-out
	if !reflect.DeepEqual(got.chats, []int64{1, 2}) {
		t.Errorf("Expected chats [1 2], got %v", got.chats)
	}
	if got.message != "2025 China R: 20 drivers, 1100 laps" {
		t.Errorf("Unexpected message %q", got.message)
	}

	exit <- true
	<-done
}

func TestNoSubscribersSendsNothing(t *testing.T) {
	called := false
	m := newManager(context.Background(), func(ctx context.Context, chatIDs []int64, subject, message string) error {
		called = true
		return nil
	})
	m.handleNotification(model.SessionLoaded{})
	if called {
		t.Error("Expected no notification without subscribers")
	}
}
