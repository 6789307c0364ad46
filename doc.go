// SPDX-License-Identifier: EPL-2.0

// Package audgraph plays decoded audio through a node graph with declicked
// pause, stop and mute, per-sound effect chains, and hierarchical groups.
//
// The work is split across subpackages:
//   - audio: buffers, sources, resampling and the decoder registry
//   - formats/...: WAV, MP3, Ogg Vorbis and AIFF decoders
//   - graph, graph/soft: the node graph interface and a software renderer
//   - eventloop: the single goroutine engine state lives on
//   - sound: the engine, samples, playbacks, groups and effects
//   - output: the system speaker and WAV rendering
//
// # Live Playback
//
// The engine runs on an event loop; every engine call must happen on it:
//
//	loop := eventloop.New()
//	loop.Start()
//	ctx := soft.New(soft.Options{SampleRate: 44100, Dispatch: loop.Post})
//
//	loop.Do(func() {
//	    eng := sound.New(ctx, loop, sound.Options{})
//	    eng.NewSample(sound.URL("beep.ogg"), sound.SampleOptions{Autoplay: true})
//	})
//
//	spk := output.NewSpeaker(ctx, 2048)
//	spk.Start()
//
// # Offline Rendering
//
// Offline drives the same engine from a manual clock, so the audio clock
// and timers advance together and faster than real time:
//
//	off := audgraph.NewOffline(44100, sound.Options{})
//	defer off.Close()
//
//	s, _ := off.Engine.NewSample(sound.URL("beep.ogg"), sound.SampleOptions{})
//	off.Wait(context.Background(), s)
//	s.Play(nil)
//	off.RenderWAV(file, 2*time.Second)
//
// # Sample Format
//
// Samples are float32 in [-1.0, 1.0]. The graph renders interleaved stereo;
// Mono16 converts a rendered buffer to mono 16-bit PCM at any rate.
package audgraph
