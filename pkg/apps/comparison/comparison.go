package comparison

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"f1lapcompare/pkg/apps"
	"f1lapcompare/pkg/chart"
	"f1lapcompare/pkg/compare"
	"f1lapcompare/pkg/config"
	"f1lapcompare/pkg/helper"
	"f1lapcompare/pkg/layout"
	"f1lapcompare/pkg/menus"
	"f1lapcompare/pkg/model"
	"f1lapcompare/pkg/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
)

const (
	CommandLoad       = "/load"
	CommandLaps       = "/laps"
	CommandCompare    = "/compare"
	CommandChannels   = "/channels"
	CommandWeather    = "/weather"
	CommandClearCache = "/clearcache"
	CommandNotify     = "/notify"

	buttonChannels   = "Channels"
	buttonWeather    = "Weather"
	buttonNotify     = "Notify"
	buttonClearCache = "Clear cache"

	SubcommandChannel = "ch"
	SubcommandZoom    = "zoom"
	SubcommandLaps    = "laps"

	zoomIn    = "in"
	zoomOut   = "out"
	zoomReset = "reset"
)

type Sessions interface {
	Load(ctx context.Context, key model.SessionKey) (session.LoadResult, error)
	LapsForDriver(driver string, slot session.Slot) ([]string, error)
	Laps(driver string) []model.Lap
	Weather() model.Weather
	ClearCache() (string, error)
}

type Comparer interface {
	Compare(ctx context.Context, req compare.Request) (*compare.Result, error)
}

type Notifier interface {
	Toggle(chatID int64) bool
}

// chatState is the last comparison a chat asked for.
type chatState struct {
	req  compare.Request
	res  *compare.Result
	view chart.View
}

type ComparisonApp struct {
	bot          apps.Sender
	appMenu      menus.ApplicationMenu
	sessions     Sessions
	comparer     Comparer
	notifier     Notifier
	menuKeyboard tgbotapi.ReplyKeyboardMarkup

	mu    sync.Mutex
	chats map[int64]*chatState
}

func NewComparisonApp(bot apps.Sender, appMenu menus.ApplicationMenu, sessions Sessions, comparer Comparer, notifier Notifier) *ComparisonApp {
	menuKeyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonChannels),
			tgbotapi.NewKeyboardButton(buttonWeather),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonNotify),
			tgbotapi.NewKeyboardButton(buttonClearCache),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(appMenu.ButtonBackTo()),
		),
	)

	return &ComparisonApp{
		bot:          bot,
		appMenu:      appMenu,
		sessions:     sessions,
		comparer:     comparer,
		notifier:     notifier,
		menuKeyboard: menuKeyboard,
		chats:        map[int64]*chatState{},
	}
}

// Usage lists the commands of the application, one per line.
func Usage() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s <year> <event> <session> - Loads a session\n", CommandLoad)
	fmt.Fprintf(&b, "%s <driver> [slot] - Shows the laps of a driver\n", CommandLaps)
	fmt.Fprintf(&b, "%s <driver> <lap> <driver> <lap> <channel> - Compares two laps\n", CommandCompare)
	fmt.Fprintf(&b, "%s - Lists the channels\n", CommandChannels)
	fmt.Fprintf(&b, "%s - Shows the session weather\n", CommandWeather)
	fmt.Fprintf(&b, "%s - Clears the session cache\n", CommandClearCache)
	fmt.Fprintf(&b, "%s - Toggles new session notifications\n", CommandNotify)
	return b.String()
}

func splitCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", nil
	}
	name := strings.SplitN(fields[0], "@", 2)[0]
	return name, fields[1:]
}

func (ca *ComparisonApp) AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error) {
	name, args := splitCommand(command)
	switch name {
	case CommandLoad:
		return true, ca.renderLoad(args)
	case CommandLaps:
		return true, ca.renderLaps(args)
	case CommandCompare:
		return true, ca.renderCompare(args)
	case CommandChannels:
		return true, ca.renderChannels()
	case CommandWeather:
		return true, ca.renderWeather()
	case CommandClearCache:
		return true, ca.renderClearCache()
	case CommandNotify:
		return true, ca.renderNotify()
	}
	return false, nil
}

func (ca *ComparisonApp) AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error) {
	switch button {
	case ca.appMenu.Name:
		return true, func(ctx context.Context, chatId int64) error {
			message := fmt.Sprintf("%s application\n\n%s", ca.appMenu.Name, Usage())
			msg := tgbotapi.NewMessage(chatId, message)
			msg.ReplyMarkup = ca.menuKeyboard
			_, err := ca.bot.Send(msg)
			return err
		}
	case ca.appMenu.ButtonBackTo():
		return true, func(ctx context.Context, chatId int64) error {
			msg := tgbotapi.NewMessage(chatId, "OK")
			msg.ReplyMarkup = ca.appMenu.PrevMenu()
			_, err := ca.bot.Send(msg)
			return err
		}
	case buttonChannels:
		return true, ca.renderChannels()
	case buttonWeather:
		return true, ca.renderWeather()
	case buttonNotify:
		return true, ca.renderNotify()
	case buttonClearCache:
		return true, ca.renderClearCache()
	}
	return false, nil
}

func (ca *ComparisonApp) AcceptCallback(query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error) {
	data := strings.SplitN(query.Data, ":", 2)
	if len(data) != 2 {
		return false, nil
	}
	switch data[0] {
	case SubcommandChannel:
		return true, ca.renderChannelCallback(data[1])
	case SubcommandZoom:
		return true, ca.renderZoomCallback(data[1])
	case SubcommandLaps:
		return true, func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
			return ca.renderLaps([]string{data[1]})(ctx, query.Message.Chat.ID)
		}
	}
	return false, nil
}

// ParseLoad reads "<year> <event> <session>". The event may span several
// words and the session type may be "Sprint Shootout".
func ParseLoad(args []string) (model.SessionKey, error) {
	if len(args) < 3 {
		return model.SessionKey{}, errors.Errorf("usage: %s <year> <event> <session>", CommandLoad)
	}
	year, err := strconv.Atoi(args[0])
	if err != nil {
		return model.SessionKey{}, errors.Errorf("invalid year %q", args[0])
	}
	rest := args[1:]
	if len(rest) >= 3 {
		last2 := strings.Join(rest[len(rest)-2:], " ")
		if config.ValidSessionType(last2) {
			return model.SessionKey{Year: year, Event: strings.Join(rest[:len(rest)-2], " "), Session: last2}, nil
		}
	}
	st := rest[len(rest)-1]
	if !config.ValidSessionType(st) {
		return model.SessionKey{}, errors.Errorf("unknown session type %q, expected one of %s", st, strings.Join(config.SessionTypes, ", "))
	}
	return model.SessionKey{Year: year, Event: strings.Join(rest[:len(rest)-1], " "), Session: st}, nil
}

// ParseLaps reads "<driver> [slot]".
func ParseLaps(args []string) (string, session.Slot, error) {
	if len(args) == 0 || len(args) > 2 {
		return "", 0, errors.Errorf("usage: %s <driver> [slot]", CommandLaps)
	}
	slot := session.Reference
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return "", 0, errors.Errorf("invalid slot %q", args[1])
		}
		slot = session.Slot(n)
	}
	return strings.ToUpper(args[0]), slot, nil
}

// ParseCompare reads "<driver> <lap> <driver> <lap> <channel>". Laps are lap
// numbers and the channel may span several words.
func ParseCompare(args []string) (compare.Request, error) {
	if len(args) < 5 {
		return compare.Request{}, errors.Errorf("usage: %s <driver> <lap> <driver> <lap> <channel>", CommandCompare)
	}
	return compare.Request{
		Driver1: strings.ToUpper(args[0]),
		Lap1:    lapSelector(args[1]),
		Driver2: strings.ToUpper(args[2]),
		Lap2:    lapSelector(args[3]),
		Channel: strings.Join(args[4:], " "),
	}, nil
}

func lapSelector(arg string) string {
	if _, err := strconv.Atoi(arg); err == nil {
		return "Lap " + arg
	}
	return arg
}

func (ca *ComparisonApp) sendText(chatId int64, text string) error {
	_, err := ca.bot.Send(tgbotapi.NewMessage(chatId, text))
	return err
}

// codeBlock renders title and a table as a MarkdownV2 preformatted message.
func codeBlock(chatId int64, title, body string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatId, fmt.Sprintf("```\n%s\n\n%s```", title, body))
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	return msg
}

func newTable(b *bytes.Buffer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(b)
	t.SetStyle(table.StyleRounded)
	return t
}

func (ca *ComparisonApp) renderLoad(args []string) func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		key, err := ParseLoad(args)
		if err != nil {
			return ca.sendText(chatId, err.Error())
		}
		if err := ca.sendText(chatId, fmt.Sprintf("Loading %s...", key)); err != nil {
			return err
		}
		res, err := ca.sessions.Load(ctx, key)
		if err != nil {
			return ca.sendText(chatId, err.Error())
		}
		msg := tgbotapi.NewMessage(chatId, fmt.Sprintf("%s\n%s\nDrivers: %s", res.Message, key, strings.Join(res.Drivers, ", ")))
		msg.ReplyMarkup = menus.InlineChoices(SubcommandLaps, res.Drivers, 5)
		_, err = ca.bot.Send(msg)
		return err
	}
}

func (ca *ComparisonApp) renderLaps(args []string) func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		driver, slot, err := ParseLaps(args)
		if err != nil {
			return ca.sendText(chatId, err.Error())
		}
		if _, err := ca.sessions.LapsForDriver(driver, slot); err != nil {
			return ca.sendText(chatId, err.Error())
		}

		var b bytes.Buffer
		t := newTable(&b)
		t.AppendHeader(table.Row{"Lap", "Time", "Tyre"})
		for _, l := range ca.sessions.Laps(driver) {
			compound := l.Compound
			if compound == "" {
				compound = config.UnknownCompound
			}
			t.AppendRow(table.Row{l.Number, helper.LapTime(l.Time, l.HasTime), compound})
		}
		t.Render()

		_, err = ca.bot.Send(codeBlock(chatId, fmt.Sprintf("Laps of %s (slot %d)", driver, slot), b.String()))
		return err
	}
}

func (ca *ComparisonApp) renderChannels() func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		names := make([]string, 0, len(compare.Channels))
		for _, c := range compare.Channels {
			names = append(names, c.String())
		}
		msg := tgbotapi.NewMessage(chatId, "Channels:\n"+strings.Join(names, "\n"))
		msg.ReplyMarkup = menus.InlineChoices(SubcommandChannel, names, 2)
		_, err := ca.bot.Send(msg)
		return err
	}
}

func (ca *ComparisonApp) renderWeather() func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		return ca.sendText(chatId, ca.sessions.Weather().Caption())
	}
}

func (ca *ComparisonApp) renderClearCache() func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		message, err := ca.sessions.ClearCache()
		if err != nil {
			message = err.Error()
		}
		return ca.sendText(chatId, message)
	}
}

func (ca *ComparisonApp) renderNotify() func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		if ca.notifier == nil {
			return ca.sendText(chatId, "Notifications are not available")
		}
		message := "You will not be notified about new sessions anymore"
		if ca.notifier.Toggle(chatId) {
			message = "You will be notified when a new session is loaded"
		}
		return ca.sendText(chatId, message)
	}
}

func (ca *ComparisonApp) renderCompare(args []string) func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		req, err := ParseCompare(args)
		if err != nil {
			return ca.sendText(chatId, err.Error())
		}
		return ca.compare(ctx, chatId, req)
	}
}

func (ca *ComparisonApp) compare(ctx context.Context, chatId int64, req compare.Request) error {
	res, err := ca.comparer.Compare(ctx, req)
	if err != nil {
		return ca.sendText(chatId, err.Error())
	}
	st := &chatState{req: req, res: res, view: chart.FitView(res)}
	ca.mu.Lock()
	ca.chats[chatId] = st
	ca.mu.Unlock()

	msg := codeBlock(chatId, res.Title, summary(res))
	msg.ReplyMarkup = resultKeyboard()
	if _, err := ca.bot.Send(msg); err != nil {
		return err
	}
	if err := ca.sendChart(chatId, res, st.view); err != nil {
		return err
	}
	return ca.sendMinimap(chatId, res)
}

func resultKeyboard() tgbotapi.InlineKeyboardMarkup {
	names := make([]string, 0, len(compare.Channels))
	for _, c := range compare.Channels {
		names = append(names, c.String())
	}
	kb := menus.InlineChoices(SubcommandChannel, names, 4)
	zoom := menus.InlineChoices(SubcommandZoom, []string{zoomIn, zoomOut, zoomReset}, 3)
	kb.InlineKeyboard = append(kb.InlineKeyboard, zoom.InlineKeyboard...)
	return kb
}

func formatPeak(ch compare.Channel, e compare.Extremum) string {
	if ch == compare.Delta {
		return fmt.Sprintf("%s @ %.0fm", strings.TrimSpace(helper.SecondsToDiff(e.Value)), e.Distance)
	}
	return fmt.Sprintf("%.1f @ %.0fm", e.Value, e.Distance)
}

// summary renders both series side by side.
func summary(res *compare.Result) string {
	var b bytes.Buffer
	t := newTable(&b)
	s1, s2 := res.Series[0], res.Series[1]
	t.AppendHeader(table.Row{"", "Reference", "Compared"})
	t.AppendRow(table.Row{"Driver", s1.Driver, s2.Driver})
	t.AppendRow(table.Row{"Lap", s1.Lap, s2.Lap})
	t.AppendRow(table.Row{"Team", s1.Team, s2.Team})
	t.AppendRow(table.Row{"Tyre", s1.Compound, s2.Compound})
	t.AppendRow(table.Row{"Position", s1.Position, s2.Position})
	t.AppendSeparator()
	peak2 := formatPeak(res.Channel, s2.Peak)
	if res.Channel == compare.Delta {
		peak2 = "-"
	}
	t.AppendRow(table.Row{"Peak", formatPeak(res.Channel, s1.Peak), peak2})
	t.Render()
	return b.String() + res.Caption + "\n"
}

func (ca *ComparisonApp) sendChart(chatId int64, res *compare.Result, view chart.View) error {
	var b bytes.Buffer
	if err := chart.Render(&b, res, view, chart.FormatPNG); err != nil {
		log.Printf("Error rendering chart: %s\n", err)
		return ca.sendText(chatId, err.Error())
	}
	photo := tgbotapi.NewPhoto(chatId, tgbotapi.FileBytes{Name: chart.FileName(res, chart.FormatPNG), Bytes: b.Bytes()})
	photo.Caption = res.Title
	_, err := ca.bot.Send(photo)
	return err
}

func (ca *ComparisonApp) sendMinimap(chatId int64, res *compare.Result) error {
	var b bytes.Buffer
	if err := layout.BuildPNG(&b, layout.FromResult(res), nil); err != nil {
		log.Printf("Error rendering minimap: %s\n", err)
		return ca.sendText(chatId, err.Error())
	}
	photo := tgbotapi.NewPhoto(chatId, tgbotapi.FileBytes{Name: "minimap.png", Bytes: b.Bytes()})
	_, err := ca.bot.Send(photo)
	return err
}

func (ca *ComparisonApp) state(chatId int64) (chatState, bool) {
	ca.mu.Lock()
	defer ca.mu.Unlock()
	st, ok := ca.chats[chatId]
	if !ok {
		return chatState{}, false
	}
	return *st, true
}

func (ca *ComparisonApp) renderChannelCallback(channel string) func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	return func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
		chatId := query.Message.Chat.ID
		st, ok := ca.state(chatId)
		if !ok {
			return ca.sendText(chatId, fmt.Sprintf("Compare two laps first with %s", CommandCompare))
		}
		req := st.req
		req.Channel = channel
		return ca.compare(ctx, chatId, req)
	}
}

func (ca *ComparisonApp) renderZoomCallback(direction string) func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	return func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
		chatId := query.Message.Chat.ID
		ca.mu.Lock()
		st, ok := ca.chats[chatId]
		if !ok {
			ca.mu.Unlock()
			return ca.sendText(chatId, fmt.Sprintf("Compare two laps first with %s", CommandCompare))
		}
		switch direction {
		case zoomIn:
			st.view = st.view.ZoomIn()
		case zoomOut:
			st.view = st.view.ZoomOut()
		default:
			st.view = chart.FitView(st.res)
		}
		res, view := st.res, st.view
		ca.mu.Unlock()
		return ca.sendChart(chatId, res, view)
	}
}
