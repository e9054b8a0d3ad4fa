package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormInput_Parse(t *testing.T) {
	tests := []struct {
		name    string
		input   FormInput
		want    NewRecord
		wantMsg string
	}{
		{name: "blank total", input: FormInput{SubjectID: 1, Date: "2024-03-10", Attended: "1"}, wantMsg: "Total lectures is required"},
		{name: "blank attended", input: FormInput{SubjectID: 1, Date: "2024-03-10", Total: "1", Attended: "  "}, wantMsg: "Lectures attended is required"},
		{name: "not a number", input: FormInput{SubjectID: 1, Date: "2024-03-10", Total: "1.5", Attended: "1"}, wantMsg: "Total lectures must be a whole number"},
		{
			name:  "valid",
			input: FormInput{SubjectID: 4, Date: " 2024-03-10 ", Total: " 3", Attended: "2 "},
			want:  NewRecord{SubjectID: 4, Date: "2024-03-10", TotalLectures: 3, AttendedLectures: 2},
		},
		{
			name:  "negatives parse, range is checked later",
			input: FormInput{SubjectID: 4, Date: "2024-03-10", Total: "-3", Attended: "2"},
			want:  NewRecord{SubjectID: 4, Date: "2024-03-10", TotalLectures: -3, AttendedLectures: 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.input.Parse()
			if tt.wantMsg != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantMsg, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPreviewAbsent(t *testing.T) {
	tests := []struct {
		total, attended string
		want            int
		wantOK          bool
	}{
		{total: "", attended: ""},
		{total: "5", attended: ""},
		{total: "", attended: "2"},
		{total: "x", attended: "2"},
		{total: "5", attended: "2", want: 3, wantOK: true},
		{total: "0", attended: "0", want: 0, wantOK: true},
		{total: "2", attended: "5", want: -3, wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.total+"-"+tt.attended, func(t *testing.T) {
			got, ok := PreviewAbsent(tt.total, tt.attended)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectDate(t *testing.T) {
	now := time.Date(2024, 3, 10, 23, 30, 0, 0, time.UTC)
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "blank", raw: "", want: "2024-03-10"},
		{name: "garbage", raw: "tomorrow", want: "2024-03-10"},
		{name: "future", raw: "2024-03-11", want: "2024-03-10"},
		{name: "today", raw: "2024-03-10", want: "2024-03-10"},
		{name: "past", raw: "2023-12-31", want: "2023-12-31"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectDate(tt.raw, now))
		})
	}
}

func TestFormState(t *testing.T) {
	s := FormIdle
	assert.False(t, s.Disabled())
	assert.Equal(t, "Save Attendance", s.ButtonLabel())

	s, ok := s.Submit()
	require.True(t, ok)
	assert.Equal(t, FormSaving, s)
	assert.True(t, s.Disabled())

	// a second submit while saving is refused
	_, ok = s.Submit()
	assert.False(t, ok)

	assert.Equal(t, FormIdle, s.Done(errFake))
	s = s.Done(nil)
	assert.Equal(t, FormSaved, s)
	assert.Equal(t, "✓ Saved!", s.ButtonLabel())
	assert.True(t, s.Disabled())

	_, ok = s.Submit()
	assert.False(t, ok)
	assert.Equal(t, FormIdle, s.Expire())
}

var errFake = assert.AnError

func TestRecord_Absent(t *testing.T) {
	assert.Equal(t, 2, Record{TotalLectures: 5, AttendedLectures: 3}.Absent())
	assert.Equal(t, 2, Record{TotalLectures: 5, AttendedLectures: 3, AbsentLectures: 2}.Absent())
}
