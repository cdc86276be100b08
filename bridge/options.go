package bridge

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mpvkit/mpvkit/key"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Option is one engine option as a key/value string pair.
type Option struct {
	Name  string
	Value string
}

func (o Option) String() string {
	return o.Name + "=" + o.Value
}

// DefaultOptions is the built-in tuning applied to every engine: window and
// quality profile, scaling and interpolation, color management, hardware
// decoding, caching and log verbosity.
func DefaultOptions() []Option {
	return []Option{
		{"force-window", "immediate"},
		{"profile", "gpu-hq"},
		{"scale", "ewa_lanczossharp"},
		{"cscale", "ewa_lanczossharp"},
		{"video-sync", "display-resample"},
		{"interpolation", "yes"},
		{"tscale", "oversample"},
		{"target-prim", "auto"},
		{"target-trc", "auto"},
		{"icc-profile-auto", "yes"},
		{"hwdec", "auto-safe"},
		{"msg-level", "all=warn"},
		{"terminal", "yes"},
		{"cache", "yes"},
		{"demuxer-max-bytes", "128MiB"},
		{"demuxer-max-back-bytes", "50MiB"},
		{"demuxer-readahead-secs", "5.0"},
	}
}

// ConfiguredOptions is DefaultOptions with the engine.* keys applied:
// engine.profile and engine.hwdec replace their defaults, engine.options
// entries are appended last so the engine sees them as overrides.
func ConfiguredOptions() ([]Option, error) {
	options := lo.Map(DefaultOptions(), func(o Option, _ int) Option {
		var configured string
		switch o.Name {
		case "profile":
			configured = viper.GetString(key.EngineProfile)
		case "hwdec":
			configured = viper.GetString(key.EngineHwdec)
		}
		o.Value = lo.Ternary(configured != "", configured, o.Value)
		return o
	})

	for _, raw := range viper.GetStringSlice(key.EngineOptions) {
		option, err := ParseOption(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key.EngineOptions, err)
		}
		options = append(options, option)
	}

	return options, nil
}

// ParseOption parses "name=value", "--name=value" or a bare "name",
// which mpv treats as "name=yes".
func ParseOption(raw string) (Option, error) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "--")
	name, value, found := strings.Cut(raw, "=")
	name = strings.TrimSpace(name)

	if name == "" {
		return Option{}, errors.New("empty option name")
	}
	if !found {
		value = "yes"
	}
	return Option{Name: name, Value: value}, nil
}
