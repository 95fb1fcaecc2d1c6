package telegram

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"family-planner/internal/ingredient"
	"family-planner/internal/shopping"
)

type addCommand struct {
	quantity float64
	unit     string
	name     string
}

// parseAdd reads "[qty] [unit] <name>". The quantity defaults to 1 and the
// unit to the shopping default; a unit is only taken when it is a known one.
func parseAdd(args string) (addCommand, error) {
	fields := strings.Fields(args)
	cmd := addCommand{quantity: 1}

	if len(fields) > 0 {
		if q, err := strconv.ParseFloat(strings.ReplaceAll(fields[0], ",", "."), 64); err == nil {
			if q < 0 {
				return addCommand{}, errors.New("quantity must not be negative")
			}
			cmd.quantity = q
			fields = fields[1:]
		}
	}
	if len(fields) > 1 && ingredient.IsKnownUnit(fields[0]) {
		cmd.unit = fields[0]
		fields = fields[1:]
	}
	cmd.name = strings.Join(fields, " ")
	if cmd.name == "" {
		return addCommand{}, errors.New("missing item name")
	}
	return cmd, nil
}

// splitNameUnit splits "<name> [unit]".
func splitNameUnit(args string) (name, unit string) {
	fields := strings.Fields(args)
	if len(fields) > 1 && ingredient.IsKnownUnit(fields[len(fields)-1]) {
		unit = fields[len(fields)-1]
		fields = fields[:len(fields)-1]
	}
	return strings.Join(fields, " "), unit
}

func matchingItems(list shopping.List, name string) []shopping.Item {
	key := ingredient.MatchKey(name)
	var out []shopping.Item
	for _, it := range list.Items {
		if it.MatchKey == key || ingredient.KeyHasName(it.MatchKey, name) {
			out = append(out, it)
		}
	}
	return out
}

func formatList(list shopping.List) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🛒 *Shopping list, week of %s*\n\n", escape(list.WeekStart)))
	if len(list.Items) == 0 {
		sb.WriteString("_Nothing to buy yet. Plan some meals and /sync._")
		return sb.String()
	}

	done := 0
	for _, it := range list.Items {
		mark := "⬜"
		if it.Checked {
			mark = "✅"
			done++
		}
		name := it.Name
		if it.NameSecondary != "" {
			name += " / " + it.NameSecondary
		}
		sb.WriteString(fmt.Sprintf("%s %s\n", mark, escape(describeAmount(name, it.Quantity, it.Unit))))
	}
	sb.WriteString(fmt.Sprintf("\n%d/%d bought", done, len(list.Items)))
	return sb.String()
}

func describeAmount(name string, quantity float64, unit string) string {
	if unit == "" {
		unit = shopping.DefaultUnit
	}
	return fmt.Sprintf("%s %s %s", formatQuantity(quantity), unit, name)
}

// formatQuantity prints at most two decimals and no trailing zeros.
func formatQuantity(q float64) string {
	s := strconv.FormatFloat(q, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

// userMessage returns the text of errors caused by the user's input, and ""
// for internal failures.
func userMessage(err error) string {
	switch {
	case errors.Is(err, shopping.ErrInvalidWeek),
		errors.Is(err, shopping.ErrInvalidItem),
		errors.Is(err, shopping.ErrItemNotFound):
		return err.Error()
	case errors.Is(err, shopping.ErrNoFamily):
		return "your account is not linked to a family"
	}
	return ""
}
