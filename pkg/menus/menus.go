package menus

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var (
	buttonBackTo = "Back to"
)

// Menuer returns the reply keyboard an application goes back to.
type Menuer interface {
	Menu() tgbotapi.ReplyKeyboardMarkup
}

type ApplicationMenu struct {
	Name     string
	From     string
	prevMenu Menuer
}

func NewApplicationMenu(name, from string, prevMenu Menuer) ApplicationMenu {
	return ApplicationMenu{
		Name:     name,
		From:     from,
		prevMenu: prevMenu,
	}
}

func (am ApplicationMenu) ButtonBackTo() string {
	return buttonBackTo + " " + am.From
}

func (am ApplicationMenu) PrevMenu() tgbotapi.ReplyKeyboardMarkup {
	return am.prevMenu.Menu()
}

// InlineChoices lays options out perRow buttons per row. The callback data of
// each button is prefix:option.
func InlineChoices(prefix string, options []string, perRow int) tgbotapi.InlineKeyboardMarkup {
	if perRow <= 0 {
		perRow = 1
	}
	rows := [][]tgbotapi.InlineKeyboardButton{}
	row := []tgbotapi.InlineKeyboardButton{}
	for _, opt := range options {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(opt, fmt.Sprintf("%s:%s", prefix, opt)))
		if len(row) == perRow {
			rows = append(rows, row)
			row = []tgbotapi.InlineKeyboardButton{}
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
