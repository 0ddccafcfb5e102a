package statistics

import (
	"strconv"
	"sync"
	"time"
)

// Data collects statistics about node operations
type Data struct {
	metrics *Metrics

	CallStart struct {
		sync.RWMutex
		height uint64
		time   time.Time
	}
	LastCall struct {
		sync.RWMutex
		info LastCallInfo
	}
}

type LastCallInfo struct {
	Height    uint64
	Type      string
	Code      uint32
	Duration  float64
	Timestamp uint64
}

func New(metrics *Metrics) *Data {
	if metrics == nil {
		metrics = NopMetrics()
	}
	return &Data{metrics: metrics}
}

func (d *Data) Metrics() *Metrics {
	if d == nil {
		return NopMetrics()
	}
	return d.metrics
}

func (d *Data) SetStartCall(height uint64, now time.Time) {
	if d == nil {
		return
	}

	d.CallStart.Lock()
	defer d.CallStart.Unlock()

	d.CallStart.height = height
	d.CallStart.time = now
}

// SetEndCall records the call started with SetStartCall at the same height
func (d *Data) SetEndCall(timeEnd time.Time, height uint64, txType string, code uint32, timestamp uint64) {
	if d == nil {
		return
	}

	d.CallStart.RLock()
	defer d.CallStart.RUnlock()

	if height != d.CallStart.height {
		return
	}

	durationSeconds := timeEnd.Sub(d.CallStart.time).Seconds()

	d.metrics.Calls.With("type", txType, "code", strconv.FormatUint(uint64(code), 10)).Add(1)
	d.metrics.CallDuration.Observe(durationSeconds)

	d.LastCall.Lock()
	defer d.LastCall.Unlock()

	d.LastCall.info = LastCallInfo{
		Height:    height,
		Type:      txType,
		Code:      code,
		Duration:  durationSeconds,
		Timestamp: timestamp,
	}
}

func (d *Data) SetHeight(height int64) {
	if d == nil {
		return
	}
	d.metrics.Height.Set(float64(height))
}

func (d *Data) SetSale(privateSold, publicSold, participants uint64) {
	if d == nil {
		return
	}
	d.metrics.PrivateSoldAmount.Set(float64(privateSold))
	d.metrics.PublicSoldAmount.Set(float64(publicSold))
	d.metrics.Participants.Set(float64(participants))
}

func (d *Data) AddFailedInstruction(txType string) {
	if d == nil {
		return
	}
	d.metrics.FailedInstructions.With("type", txType).Add(1)
}

func (d *Data) SetApiTime(duration time.Duration, path string) {
	if d == nil {
		return
	}
	d.metrics.APIResponseTime.With("path", path).Set(duration.Seconds())
}

func (d *Data) GetLastCallInfo() LastCallInfo {
	if d == nil {
		return LastCallInfo{}
	}

	d.LastCall.RLock()
	defer d.LastCall.RUnlock()

	return d.LastCall.info
}
