package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"f1lapcompare/pkg/apps"
	"f1lapcompare/pkg/apps/mainapp"
	"f1lapcompare/pkg/cache"
	"f1lapcompare/pkg/compare"
	"f1lapcompare/pkg/config"
	"f1lapcompare/pkg/notification"
	"f1lapcompare/pkg/provider"
	"f1lapcompare/pkg/session"
	"f1lapcompare/pkg/webserver"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func main() {
	settings := config.FromEnv()

	// Create a new cancellable background context. Calling `cancel()` leads to the cancellation of the context
	ctx, cancel := context.WithCancel(context.Background())

	if settings.MockProviderPort > 0 {
		settings.ProviderURL = CreateMockProvider(settings.MockProviderPort)
	}

	cm, err := cache.NewManager(settings.CacheDir)
	if err != nil {
		log.Panic(err)
	}
	defer cm.Close()
	if n, err := cm.Len(); err == nil {
		log.Printf("Response cache at %s holds %d entries\n", settings.CacheDir, n)
	}

	client := provider.NewClient(settings.ProviderURL, cm)
	store := session.NewStore(client, cm, settings.ProviderTimeout)
	engine := compare.NewEngine(store)

	ws := webserver.NewManager(settings.WebserverAddress, settings.ExportsDir, store, engine)
	wsDone := make(chan struct{})
	go func() {
		ws.Serve(ctx)
		close(wsDone)
	}()

	exitChan := make(chan bool, 1)
	if settings.TelegramToken != "" {
		bot, err := tgbotapi.NewBotAPI(settings.TelegramToken)
		if err != nil {
			// Abort if something is wrong
			log.Panic(err)
		}

		// Set this to true to log all interactions with telegram servers
		bot.Debug = false

		nm := notification.NewManager(ctx, bot)
		go nm.Start(exitChan)

		app := mainapp.NewMainApp(bot, store, engine, nm)

		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60

		// `updates` is a golang channel which receives telegram updates
		updates := bot.GetUpdatesChan(u)
		go apps.ReceiveUpdates(ctx, updates, app)

		log.Println("Start listening for telegram updates")
	}

	log.Println("Press Ctrl-C to stop")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	// lock the main thread until we receive a signal
	<-sigs

	exitChan <- true
	cancel()
	<-wsDone
}
