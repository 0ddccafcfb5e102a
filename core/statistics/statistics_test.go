package statistics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestData_LastCall(t *testing.T) {
	t.Parallel()

	data := New(nil)
	start := time.Unix(100, 0)

	data.SetStartCall(5, start)
	data.SetEndCall(start.Add(time.Second), 4, "0x13", 0, 100)
	assert.Equal(t, LastCallInfo{}, data.GetLastCallInfo())

	data.SetEndCall(start.Add(2*time.Second), 5, "0x13", 0, 100)
	assert.Equal(t, LastCallInfo{Height: 5, Type: "0x13", Duration: 2, Timestamp: 100}, data.GetLastCallInfo())
}

func TestData_Nil(t *testing.T) {
	t.Parallel()

	var data *Data
	data.SetStartCall(1, time.Now())
	data.SetEndCall(time.Now(), 1, "0x01", 0, 0)
	data.SetHeight(1)
	data.SetSale(1, 2, 3)
	data.AddFailedInstruction("0x01")
	data.SetApiTime(time.Second, "/v2/status")
	assert.Equal(t, LastCallInfo{}, data.GetLastCallInfo())
	assert.NotNil(t, data.Metrics())
}

func TestPrometheusMetrics(t *testing.T) {
	t.Parallel()

	data := New(PrometheusMetrics("statistics_test"))
	data.SetStartCall(1, time.Now())
	data.SetEndCall(time.Now(), 1, "0x01", 0, 0)
	data.AddFailedInstruction("0x01")
	data.SetApiTime(time.Millisecond, "/v2/status")
	data.SetSale(1, 2, 3)
	data.SetHeight(1)
}
