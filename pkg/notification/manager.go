package notification

import (
	"context"
	"log"
	"sort"
	"sync"

	"f1lapcompare/pkg/model"
	"f1lapcompare/pkg/pubsub"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/nikoksr/notify"
	"github.com/nikoksr/notify/service/telegram"
)

const subject = "New session loaded:"

type sendFunc func(ctx context.Context, chatIDs []int64, subject, message string) error

// Manager announces loaded sessions to the Telegram chats that asked for it.
type Manager struct {
	ctx   context.Context
	send  sendFunc
	mu    sync.Mutex
	chats map[int64]bool
}

func NewManager(ctx context.Context, bot *tgbotapi.BotAPI) *Manager {
	return newManager(ctx, func(ctx context.Context, chatIDs []int64, subject, message string) error {
		tg := &telegram.Telegram{}
		tg.SetClient(bot)
		tg.AddReceivers(chatIDs...)

		n := notify.NewWithServices(tg)
		return n.Send(ctx, subject, message)
	})
}

func newManager(ctx context.Context, send sendFunc) *Manager {
	return &Manager{
		ctx:   ctx,
		send:  send,
		chats: map[int64]bool{},
	}
}

// Toggle subscribes or unsubscribes chatID and reports whether it is now subscribed.
func (m *Manager) Toggle(chatID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.chats[chatID] {
		delete(m.chats, chatID)
		return false
	}
	m.chats[chatID] = true
	return true
}

func (m *Manager) Subscribed(chatID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chats[chatID]
}

func (m *Manager) receivers() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0, len(m.chats))
	for id := range m.chats {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Start forwards SessionLoaded events until exitChan fires or the context ends.
func (m *Manager) Start(exitChan <-chan bool) {
	loadedChan := pubsub.SessionLoadedPubSub.Subscribe(pubsub.TopicSessionLoaded)
	defer pubsub.SessionLoadedPubSub.Unsubscribe(pubsub.TopicSessionLoaded, loadedChan)
	m.run(exitChan, loadedChan)
}

func (m *Manager) run(exitChan <-chan bool, loadedChan <-chan model.SessionLoaded) {
	for {
		select {
		case <-exitChan:
			return
		case <-m.ctx.Done():
			return
		case loaded, ok := <-loadedChan:
			if !ok {
				return
			}
			m.handleNotification(loaded)
		}
	}
}

func (m *Manager) handleNotification(loaded model.SessionLoaded) {
	receivers := m.receivers()
	if len(receivers) == 0 {
		return
	}
	log.Printf("Sending notification for %s to %d telegram chats\n", loaded.Key, len(receivers))
	err := m.send(m.ctx, receivers, subject, loaded.String())
	if err != nil {
		log.Printf("Error notifying users: %s", err.Error())
	}
}
