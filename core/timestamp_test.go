package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    time.Time
		wantErr bool
	}{
		{name: "RFC3339 with zone", data: `"2024-03-01T08:15:00+00:00"`, want: time.Date(2024, 3, 1, 8, 15, 0, 0, time.UTC)},
		{name: "fractional, no zone", data: `"2024-03-01T08:15:00.250000"`, want: time.Date(2024, 3, 1, 8, 15, 0, 250000000, time.UTC)},
		{name: "space separated", data: `"2024-03-01 08:15:00"`, want: time.Date(2024, 3, 1, 8, 15, 0, 0, time.UTC)},
		{name: "empty", data: `""`},
		{name: "garbage", data: `"yesterday"`, wantErr: true},
		{name: "not a string", data: `42`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			err := json.Unmarshal([]byte(tt.data), &ts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(ts.Time), "got %v, want %v", ts.Time, tt.want)
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	assert.Equal(t, "", ValidationError{}.Error())
	assert.Equal(t, "name: name is required", ValidationError{Fields: []FieldError{{Field: "name", Error: "name is required"}}}.Error())
	assert.Equal(t, "boom", NewValidationError(errBoom).Error())
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote(&RemoteError{Operation: "listing subjects", StatusCode: 500}))
	assert.False(t, IsRemote(errBoom))

	unreachable := &RemoteError{Operation: "listing subjects", Err: errBoom}
	assert.True(t, unreachable.Unreachable())
	assert.Equal(t, "listing subjects: boom", unreachable.Error())
	assert.ErrorIs(t, unreachable, errBoom)
	assert.Equal(t, "listing subjects: backend responded 503 Service Unavailable", (&RemoteError{Operation: "listing subjects", StatusCode: 503}).Error())
	assert.True(t, IsShutdown(NewShutdownError("bye")))
}
