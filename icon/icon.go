// Package icon renders UI symbols in the variant chosen by icons.variant.
package icon

import (
	"github.com/mpvkit/mpvkit/key"
	"github.com/spf13/viper"
)

const (
	emoji = "emoji"
	nerd  = "nerd"
	plain = "plain"
)

// AvailableVariants returns every supported icon variant.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain}
}

// Icon identifies a symbol.
type Icon int

const (
	Fail Icon = iota
	Success
	Progress
	Play
	Pause
	Volume
	Mute
	Idle
	Resume
)

type iconDef struct {
	emoji string
	nerd  string
	plain string
}

func (d iconDef) Get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case plain:
		return d.plain
	default:
		return ""
	}
}

var icons = map[Icon]iconDef{
	Fail:     {emoji: "💀", nerd: "\uf00d", plain: "X"},
	Success:  {emoji: "🎉", nerd: "\uf00c", plain: "V"},
	Progress: {emoji: "⏳", nerd: "\uf110", plain: "..."},
	Play:     {emoji: "▶️", nerd: "\uf04b", plain: ">"},
	Pause:    {emoji: "⏸️", nerd: "\uf04c", plain: "||"},
	Volume:   {emoji: "🔊", nerd: "\uf028", plain: "vol"},
	Mute:     {emoji: "🔇", nerd: "\uf026", plain: "mute"},
	Idle:     {emoji: "💤", nerd: "\uf186", plain: "-"},
	Resume:   {emoji: "⏩", nerd: "\uf04e", plain: ">>"},
}

// Get returns the rendered symbol for i.
func Get(i Icon) string {
	return icons[i].Get()
}
