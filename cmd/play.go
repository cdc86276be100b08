package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mpvkit/mpvkit/bridge"
	"github.com/mpvkit/mpvkit/constant"
	"github.com/mpvkit/mpvkit/dispatch"
	"github.com/mpvkit/mpvkit/icon"
	"github.com/mpvkit/mpvkit/key"
	"github.com/mpvkit/mpvkit/log"
	"github.com/mpvkit/mpvkit/player"
	"github.com/mpvkit/mpvkit/state"
	"github.com/mpvkit/mpvkit/tui"
	"github.com/mpvkit/mpvkit/util"
	"github.com/mpvkit/mpvkit/window"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// pollInterval paces window event polling on the render thread.
const pollInterval = 10 * time.Millisecond

func addPlayFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false, "Print a JSON snapshot line on every state change instead of the control panel")
	cmd.Flags().BoolP("resume", "r", false, "Resume from the saved position (default from player.resume)")
	cmd.Flags().Bool("no-tui", false, "Do not show the control panel")
	cmd.Flags().IntP("volume", "V", 0, "Initial volume from 0 to 100 (default from player.volume)")
	cmd.MarkFlagsMutuallyExclusive("json", "no-tui")
}

func init() {
	rootCmd.AddCommand(playCmd)
	addPlayFlags(playCmd)
}

var playCmd = &cobra.Command{
	Use:     "play [file or url]",
	Short:   "Play a file or url",
	Args:    cobra.ExactArgs(1),
	Example: "  " + constant.App + " play ~/Movies/film.mkv\n  " + constant.App + " play --backend libmpv --json https://example.com/stream.m3u8",
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(runPlay(cmd, args[0]))
	},
}

type playMode int

const (
	modePanel playMode = iota
	modeJSON
	modeQuiet
)

type playRequest struct {
	uri      string
	mode     playMode
	options  player.Options
	seekStep float64
}

func newPlayRequest(cmd *cobra.Command, uri string) (*playRequest, error) {
	engineOptions, err := bridge.ConfiguredOptions()
	if err != nil {
		return nil, err
	}

	factory, err := engineFactory(viper.GetString(key.EngineBackend))
	if err != nil {
		return nil, err
	}

	resume := viper.GetBool(key.PlayerResume)
	if cmd.Flags().Changed("resume") {
		resume = lo.Must(cmd.Flags().GetBool("resume"))
	}

	volume := viper.GetInt(key.PlayerVolume)
	if cmd.Flags().Changed("volume") {
		volume = lo.Must(cmd.Flags().GetInt("volume"))
	}

	mode := modePanel
	switch {
	case lo.Must(cmd.Flags().GetBool("json")):
		mode = modeJSON
	case lo.Must(cmd.Flags().GetBool("no-tui")), !util.IsTerminal():
		mode = modeQuiet
	}

	return &playRequest{
		uri:  uri,
		mode: mode,
		options: player.Options{
			Factory: factory,
			Engine:  engineOptions,
			FlipY:   viper.GetBool(key.RenderFlipY),
			Volume:  util.Clamp(float64(volume), 0, 100) / 100,
			Resume:  resume,
			History: viper.GetBool(key.HistorySave),
		},
		seekStep: viper.GetFloat64(key.PlayerSeekStep),
	}, nil
}

func runPlay(cmd *cobra.Command, uri string) error {
	req, err := newPlayRequest(cmd, uri)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if viper.GetString(key.EngineBackend) == constant.BackendLibmpv {
		return playEmbedded(ctx, req)
	}

	if err := checkBinary(viper.GetString(key.EngineBinary)); err != nil {
		return err
	}
	return playDetached(ctx, req)
}

// playDetached lets the engine open its own window.
func playDetached(ctx context.Context, req *playRequest) (err error) {
	session := player.New(req.options)
	defer func() {
		if closeErr := session.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := session.Start(nil); err != nil {
		return err
	}
	if err := session.Play(req.uri); err != nil {
		return err
	}

	return present(ctx, session, req)
}

// playEmbedded renders into an own window. The window and every render
// pass live on the main thread, which runs the dispatch queue.
func playEmbedded(ctx context.Context, req *playRequest) (err error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	queue := dispatch.NewQueue()
	req.options.Dispatcher = queue
	session := player.New(req.options)

	var win window.Window
	queue.Post(func() {
		if win, err = window.Open(window.ConfigFromViper()); err != nil {
			cancel()
			return
		}
		if err = session.Start(win); err != nil {
			cancel()
			return
		}
		if err = session.Play(req.uri); err != nil {
			cancel()
			return
		}

		go pollWindow(ctx, cancel, queue, win, session, req.seekStep)
		go func() {
			if presentErr := present(ctx, session, req); presentErr != nil {
				log.With("cmd").WithError(presentErr).Error("control panel")
			}
			cancel()
		}()
	})

	queue.Run(ctx)

	closeErr := session.Close()
	if win != nil {
		win.Close()
	}
	if err == nil {
		err = closeErr
	}
	return err
}

func pollWindow(ctx context.Context, cancel context.CancelFunc, queue *dispatch.Queue, win window.Window, session *player.Session, seekStep float64) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	redraw := session.Bridge().Driver().RenderFrame
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			queue.Post(func() {
				if window.Apply(win.Poll(), session.Model(), seekStep, redraw) {
					cancel()
				}
			})
		}
	}
}

// present shows playback state until the user or the engine ends it.
func present(ctx context.Context, session *player.Session, req *playRequest) error {
	model := session.Model()

	switch req.mode {
	case modeJSON:
		encoder := json.NewEncoder(os.Stdout)
		model.Subscribe(func(s state.Snapshot) {
			if err := encoder.Encode(s); err != nil {
				log.With("cmd").WithError(err).Warn("encode snapshot")
			}
		})
	case modePanel:
		send, updates := tui.Forward()
		model.Subscribe(send)

		done := make(chan struct{})
		go func() {
			defer close(done)
			select {
			case <-ctx.Done():
			case <-session.Done():
			}
		}()

		return tui.Run(model, tui.Options{
			Title:    req.uri,
			SeekStep: req.seekStep,
			Updates:  updates,
			Done:     done,
			Notice:   fmt.Sprintf("%s %s", icon.Get(icon.Play), req.uri),
		})
	}

	select {
	case <-ctx.Done():
	case <-session.Done():
	}
	return nil
}
