package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/mpvkit/mpvkit/color"
	"github.com/mpvkit/mpvkit/constant"
	"github.com/mpvkit/mpvkit/key"
	"github.com/mpvkit/mpvkit/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field is a registered configuration entry.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty renders the field for `config info`.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable bound to this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.App + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON includes both the current and the default value.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	default:
		return "unknown"
	}
}

// Default holds every registered field by key.
var Default = make(map[string]Field)

// EnvExposed holds the keys bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc}
		EnvExposed = append(EnvExposed, k)
	}

	register(key.EngineBackend, constant.BackendIPC, "Playback engine backend.\nAvailable options are: ipc (spawned mpv process), libmpv (embedded, needs a libmpv build)")
	register(key.EngineBinary, "mpv", "Path or name of the mpv executable used by the ipc backend")
	register(key.EngineOptions, []string{}, "Extra engine options as key=value pairs.\nApplied after the built-in options, so they override them")
	register(key.EngineHwdec, "auto-safe", "Hardware decoding preference passed to the engine")
	register(key.EngineProfile, "gpu-hq", "Engine rendering profile")
	register(key.RenderFlipY, true, "Flip frames vertically when rendering into the GL surface")
	register(key.WindowWidth, 1280, "Initial video window width in points")
	register(key.WindowHeight, 720, "Initial video window height in points")
	register(key.WindowTitle, constant.App, "Video window title")
	register(key.PlayerVolume, 100, "Initial volume, from 0 to 100")
	register(key.PlayerSeekStep, 5, "Seek step of the control panel and the video window, in seconds")
	register(key.PlayerResume, true, "Resume files from the last known position")
	register(key.HistorySave, true, "Save the reached position of a file when playback stops")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, nerd, plain")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"blue":     style.Fg(color.Blue),
	"purple":   style.Fg(color.Purple),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
