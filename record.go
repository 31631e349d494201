package main

import (
	"github.com/rs/zerolog"

	"drivesim/engine/internal/networking"
	"drivesim/engine/internal/replay"
)

// startRecorderDrain consumes snapshot frames on a dedicated goroutine so
// replay disk writes never touch the tick path. The returned stop function
// drains the queue before closing the recorder, keeping a session's tail
// frames.
func startRecorderDrain(recorder *replay.Recorder, frames chan networking.SnapshotFrame, logger zerolog.Logger) func() {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for frame := range frames {
			if err := recorder.RecordDiff(frame.Tick, frame); err != nil {
				logger.Warn().Err(err).Msg("replay diff write failed")
			}
			if err := recorder.RecordKeyframe(frame.Tick, frame); err != nil {
				logger.Warn().Err(err).Msg("replay keyframe write failed")
			}
		}
	}()
	return func() {
		//1.- Close the feed, wait for the drain, then release the files.
		close(frames)
		<-done
		if err := recorder.Close(); err != nil {
			logger.Warn().Err(err).Msg("replay recorder close failed")
		}
	}
}
