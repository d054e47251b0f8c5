package projection

import (
	"strings"

	"github.com/rs/zerolog/log"
)

// DisplaySlot receives the rendered value of one row.
type DisplaySlot interface {
	SetText(text string)
}

// SlotFunc adapts a function to DisplaySlot.
type SlotFunc func(text string)

func (f SlotFunc) SetText(text string) { f(text) }

// Row is one investment row as rendered: raw amount text, creation timestamp text,
// status and the slot its projected value is written to.
type Row struct {
	Amount    string
	CreatedAt string
	Status    string
	Slot      DisplaySlot
}

// PassResult summarises one ApplyRows pass.
type PassResult struct {
	Rows      int `json:"rows"`
	Projected int `json:"projected"`
	Fallbacks int `json:"fallbacks"`
}

// ApplyRows writes a projected value into every row's slot, using a single clock
// reading for the whole pass. Rows without a slot are skipped. A row with invalid
// input gets its unprojected amount and the pass continues.
func (c *Calculator) ApplyRows(rows []Row) PassResult {
	now := c.clock()
	var res PassResult
	for i, r := range rows {
		if r.Slot == nil {
			continue
		}
		res.Rows++
		text, err := c.ProjectText(r.Amount, r.CreatedAt, r.Status, now)
		if err != nil {
			log.Warn().Err(err).
				Int("row", i).
				Str("amount", r.Amount).
				Str("created_at", r.CreatedAt).
				Str("status", r.Status).
				Msg("projection: falling back to raw amount")
			r.Slot.SetText(unprojected(r.Amount))
			res.Fallbacks++
			continue
		}
		if r.Status == StatusCompleted {
			res.Projected++
		}
		r.Slot.SetText(text)
	}
	return res
}

func unprojected(amount string) string {
	if d, err := ParseAmount(amount); err == nil {
		return Format(d)
	}
	return strings.TrimSpace(amount)
}
