package apps

import (
	"context"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Accepter interface {
	AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error)
	AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error)
	AcceptCallback(query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error)
}

// Sender is the part of *tgbotapi.BotAPI the applications use.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// ReceiveUpdates dispatches updates to app until ctx is cancelled.
func ReceiveUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel, app Accepter) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			HandleUpdate(ctx, update, app)
		}
	}
}

func HandleUpdate(ctx context.Context, update tgbotapi.Update, app Accepter) {
	var err error
	switch {
	case update.Message != nil:
		err = handleMessage(ctx, update.Message, app)
	case update.CallbackQuery != nil:
		accept, handler := app.AcceptCallback(update.CallbackQuery)
		if accept {
			err = handler(ctx, update.CallbackQuery)
		}
	}
	if err != nil {
		log.Printf("An error occured: %s", err.Error())
	}
}

func handleMessage(ctx context.Context, message *tgbotapi.Message, app Accepter) error {
	if message.From == nil {
		return nil
	}
	text := message.Text
	log.Printf("%s wrote %s", message.From.FirstName, text)

	var accept bool
	var handler func(ctx context.Context, chatId int64) error
	if message.IsCommand() {
		accept, handler = app.AcceptCommand(text)
	} else {
		accept, handler = app.AcceptButton(text)
	}
	if !accept {
		return nil
	}
	return handler(ctx, message.Chat.ID)
}
