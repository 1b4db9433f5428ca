package presence

import (
	"context"
	"log/slog"
)

// Frame is an opaque video frame handed to a Detector.
type Frame []byte

// Detector wraps a per-frame presence classifier.
type Detector interface {
	Detect(ctx context.Context, frame Frame) (Sample, error)
}

// DetectorFunc adapts a function to Detector.
type DetectorFunc func(ctx context.Context, frame Frame) (Sample, error)

func (f DetectorFunc) Detect(ctx context.Context, frame Frame) (Sample, error) {
	return f(ctx, frame)
}

// Pump classifies frames as they arrive and forwards the samples to out. A
// failing classification is logged and produces no sample for that frame.
// Pump closes out when frames is closed or ctx is done.
func Pump(ctx context.Context, frames <-chan Frame, detector Detector, out chan<- Sample, logger *slog.Logger) {
	defer close(out)
	if logger == nil {
		logger = slog.Default()
	}
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			sample, err := detector.Detect(ctx, frame)
			if err != nil {
				logger.Warn("presence detection failed", "error", err)
				continue
			}
			select {
			case out <- sample:
			case <-ctx.Done():
				return
			}
		}
	}
}
