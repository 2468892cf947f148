package model

type TimingMetrics struct {
	OnsetErrorMsMedian  float64 `json:"onset_error_ms_median"`
	OnsetErrorMsP90Abs  float64 `json:"onset_error_ms_p90_abs"`
	OnsetErrorMsMeanAbs float64 `json:"onset_error_ms_mean_abs"`
}

type DurationMetrics struct {
	DurationRatioMedian   float64 `json:"duration_ratio_median"`
	DurationTooShortRatio float64 `json:"duration_too_short_ratio"`
	DurationTooLongRatio  float64 `json:"duration_too_long_ratio"`
}

// DynamicsMetrics values are nil when the attempt has no notes for that hand.
type DynamicsMetrics struct {
	LeftMeanVelocity  *float64 `json:"left_mean_velocity"`
	RightMeanVelocity *float64 `json:"right_mean_velocity"`
	VelocityImbalance *float64 `json:"velocity_imbalance"`
}

type Metrics struct {
	Timing   TimingMetrics   `json:"timing"`
	Duration DurationMetrics `json:"duration"`
	Dynamics DynamicsMetrics `json:"dynamics"`
}
