package cmd

import (
	"testing"

	"github.com/mpvkit/mpvkit/config"
	"github.com/mpvkit/mpvkit/constant"
	"github.com/mpvkit/mpvkit/filesystem"
	"github.com/mpvkit/mpvkit/key"
	"github.com/mpvkit/mpvkit/where"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestEngineFactory(t *testing.T) {
	Convey("engineFactory", t, func() {
		Convey("defaults to the ipc backend", func() {
			factory, err := engineFactory("")
			So(err, ShouldBeNil)
			So(factory, ShouldNotBeNil)

			factory, err = engineFactory(constant.BackendIPC)
			So(err, ShouldBeNil)
			So(factory, ShouldNotBeNil)
		})

		Convey("rejects unknown backends", func() {
			_, err := engineFactory("vlc")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "vlc")
		})
	})
}

func TestPlayRequest(t *testing.T) {
	Convey("Given default configuration", t, func() {
		So(config.Setup(), ShouldBeNil)
		viper.Set(key.EngineBackend, constant.BackendIPC)

		cmd := &cobra.Command{Use: "play"}
		addPlayFlags(cmd)

		Convey("Configuration provides the defaults", func() {
			viper.Set(key.PlayerVolume, 80)
			viper.Set(key.PlayerResume, true)
			Reset(func() {
				viper.Set(key.PlayerVolume, 100)
			})

			req, err := newPlayRequest(cmd, "movie.mkv")
			So(err, ShouldBeNil)
			So(req.options.Volume, ShouldAlmostEqual, 0.8)
			So(req.options.Resume, ShouldBeTrue)
			So(req.options.FlipY, ShouldBeTrue)
			So(req.options.Engine, ShouldNotBeEmpty)
			So(req.seekStep, ShouldEqual, 5)
		})

		Convey("Flags override configuration", func() {
			So(cmd.Flags().Set("volume", "150"), ShouldBeNil)
			So(cmd.Flags().Set("resume", "false"), ShouldBeNil)
			So(cmd.Flags().Set("json", "true"), ShouldBeNil)

			req, err := newPlayRequest(cmd, "movie.mkv")
			So(err, ShouldBeNil)
			So(req.options.Volume, ShouldEqual, 1)
			So(req.options.Resume, ShouldBeFalse)
			So(req.mode, ShouldEqual, modeJSON)
		})
	})
}

func TestJoinNames(t *testing.T) {
	Convey("joinNames", t, func() {
		So(joinNames([]string{"logs"}), ShouldEqual, "logs")
		So(joinNames([]string{"logs", "cache"}), ShouldEqual, "logs and cache")
		So(joinNames([]string{"a", "b", "c"}), ShouldEqual, "a, b and c")
	})
}

func TestConfigHelpers(t *testing.T) {
	Convey("parseValue follows the type of the default", t, func() {
		v, err := parseValue(config.Default[key.PlayerVolume], []string{"70"})
		So(err, ShouldBeNil)
		So(v, ShouldEqual, 70)

		v, err = parseValue(config.Default[key.RenderFlipY], []string{"false"})
		So(err, ShouldBeNil)
		So(v, ShouldEqual, false)

		v, err = parseValue(config.Default[key.EngineOptions], []string{"a=1", "b=2"})
		So(err, ShouldBeNil)
		So(v, ShouldResemble, []string{"a=1", "b=2"})

		_, err = parseValue(config.Default[key.PlayerVolume], []string{"loud"})
		So(err, ShouldNotBeNil)

		_, err = parseValue(config.Default[key.EngineBinary], nil)
		So(err, ShouldNotBeNil)
	})

	Convey("Unknown keys suggest the closest one", t, func() {
		err := errUnknownKey("engine.backnd")
		So(err.Error(), ShouldContainSubstring, key.EngineBackend)
	})

	Convey("envVariables carries the prefix and the config path override", t, func() {
		vars := envVariables()
		So(vars, ShouldContain, "MPVKIT_ENGINE_BACKEND")
		So(vars, ShouldContain, where.EnvConfigPath)
	})
}
