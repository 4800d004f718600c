package reduction

import (
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	// roiMargin is the inset of every corner ROI from the image edges
	roiMargin = 50
	// roiSize is the side of every corner ROI
	roiSize = 50
)

// ROIStats holds the background level measured in the four image corners.
type ROIStats struct {
	Label string

	// Means of the top-left, top-right, bottom-left and bottom-right ROIs
	Means [4]float64

	// Average is the mean of the four ROI means
	Average float64
}

func (s ROIStats) String() string {
	return fmt.Sprintf("%s : ROIs mean values %.6g %.6g %.6g %.6g - Average %.6g ADU",
		s.Label, s.Means[0], s.Means[1], s.Means[2], s.Means[3], s.Average)
}

// Reporter receives the ROI statistics of an image
type Reporter interface {
	ReportROI(s ROIStats)
}

// LogReporter writes ROI statistics to a zap logger
type LogReporter struct {
	logger *zap.Logger
}

func NewLogReporter(logger *zap.Logger) *LogReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogReporter{logger: logger}
}

func (r *LogReporter) ReportROI(s ROIStats) {
	r.logger.Info(s.String(),
		zap.String("label", s.Label),
		zap.Float64s("roi_means", s.Means[:]),
		zap.Float64("average", s.Average))
}

// span resolves a slice expression [start:stop] over an axis of length n
// with negative indices counted from the end, clamped to the axis.
func span(start, stop, n int) (int, int) {
	clamp := func(i int) int {
		if i < 0 {
			i += n
		}
		return max(0, min(i, n))
	}
	lo, hi := clamp(start), clamp(stop)
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

func regionMean(m mat.Matrix, r0, r1, c0, c1 int) float64 {
	values := make([]float64, 0, (r1-r0)*(c1-c0))
	for r := r0; r < r1; r++ {
		for c := c0; c < c1; c++ {
			values = append(values, m.At(r, c))
		}
	}
	// NaN for an empty region
	return stat.Mean(values, nil)
}

// CornerROIs measures the four 50x50 corner regions inset by 50 pixels.
// The offsets are fixed: images smaller than 150 pixels on a side yield
// reduced or empty regions, and an empty region has a NaN mean.
func CornerROIs(image mat.Matrix) ROIStats {
	rows, cols := image.Dims()

	top0, top1 := span(roiMargin, roiMargin+roiSize, rows)
	bot0, bot1 := span(-(roiMargin + roiSize), -roiMargin, rows)
	left0, left1 := span(roiMargin, roiMargin+roiSize, cols)
	right0, right1 := span(-(roiMargin + roiSize), -roiMargin, cols)

	s := ROIStats{}
	s.Means[0] = regionMean(image, top0, top1, left0, left1)
	s.Means[1] = regionMean(image, top0, top1, right0, right1)
	s.Means[2] = regionMean(image, bot0, bot1, left0, left1)
	s.Means[3] = regionMean(image, bot0, bot1, right0, right1)
	s.Average = stat.Mean(s.Means[:], nil)
	return s
}

// ROIMean reports the corner ROI statistics of image under label and returns
// their average, used as a background level indicator.
func ROIMean(image mat.Matrix, label string, reporter Reporter) float64 {
	s := CornerROIs(image)
	s.Label = label
	if reporter != nil {
		reporter.ReportROI(s)
	}
	return s.Average
}
