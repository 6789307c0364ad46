// SPDX-License-Identifier: EPL-2.0

package sound_test

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ik5/audgraph/audio"
	"github.com/ik5/audgraph/eventloop"
	"github.com/ik5/audgraph/graph/soft"
	"github.com/ik5/audgraph/sound"
)

func Example() {
	loop := eventloop.NewManual(time.Unix(0, 0))
	ctx := soft.New(soft.Options{SampleRate: 12800, Dispatch: loop.Post})
	engine := sound.New(ctx, loop, sound.Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	defer engine.Close()

	// 100ms of silence, played twice
	buf := audio.NewBuffer(2, 1280, 12800)
	s, _ := engine.NewSample(sound.Decoded{Buffer: buf}, sound.SampleOptions{
		Params: sound.PlayParams{Loops: 1},
	})
	s.Events().On(sound.SamplePlaybackEnd, func(sound.SampleNotice) {
		fmt.Println("end")
	})
	s.Events().On(sound.SamplePlaybackDestroyed, func(sound.SampleNotice) {
		fmt.Println("destroyed")
	})

	p, _ := s.Play(nil)
	fmt.Println("playback before load:", p != nil)

	for range 30 {
		ctx.RenderFrames(soft.Quantum)
		loop.Advance(10 * time.Millisecond)
	}
	fmt.Println("playbacks left:", len(s.Playbacks()))

	// Output:
	// playback before load: false
	// end
	// end
	// destroyed
	// playbacks left: 0
}
