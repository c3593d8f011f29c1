package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobIDs_ParseBothForms(t *testing.T) {
	tests := []struct {
		in   string
		want domain.JobIDs
	}{
		{"[7,8]", domain.JobIDs{7, 8}},
		{"7,8", domain.JobIDs{7, 8}},
		{" 7 , 8 ,", domain.JobIDs{7, 8}},
		{"[7,7,8]", domain.JobIDs{7, 8}},
		{"", domain.JobIDs{}},
	}
	for _, tt := range tests {
		got, err := domain.ParseJobIDs(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := domain.ParseJobIDs("7,x")
	assert.Error(t, err)
}

func TestJobIDs_ValueScanRoundTrip(t *testing.T) {
	ids := domain.JobIDs{10, 11}
	v, err := ids.Value()
	require.NoError(t, err)
	assert.Equal(t, "[10,11]", v)

	var scanned domain.JobIDs
	require.NoError(t, scanned.Scan([]byte("[10,11]")))
	assert.Equal(t, ids, scanned)

	var empty domain.JobIDs
	nilValue, err := empty.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", nilValue)
}

func TestJobIDs_SetOperations(t *testing.T) {
	ids := domain.JobIDs{7, 8}
	assert.True(t, ids.Contains(7))
	assert.False(t, ids.Contains(9))
	assert.Equal(t, domain.JobIDs{8}, ids.Without(7))
	assert.Equal(t, domain.JobIDs{}, domain.JobIDs{7}.Without(7))
	assert.True(t, ids.SameSet(domain.JobIDs{8, 7}))
	assert.False(t, ids.SameSet(domain.JobIDs{7}))
	assert.Equal(t, domain.JobIDs{7, 8}, ids, "SameSet must not reorder the receiver")
}

func TestLineItems_RoundTrip(t *testing.T) {
	items := domain.LineItems{
		{Description: "Key visual, 3 rounds", Quantity: 2, Rate: 1250.75, Amount: 2501.5},
		{Description: "Unicode ✓ \"quoted\"", Quantity: 0.5, Rate: 99.99, Amount: 49.995},
	}

	v, err := items.Value()
	require.NoError(t, err)

	var scanned domain.LineItems
	require.NoError(t, scanned.Scan(v))
	assert.Equal(t, items, scanned)

	body, err := json.Marshal(items)
	require.NoError(t, err)
	var decoded domain.LineItems
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, items, decoded)
}

func TestRawJSON_KeepsDocument(t *testing.T) {
	doc := `[{"name":"Ann","phone":"+971 50 000"}]`
	var r domain.RawJSON
	require.NoError(t, json.Unmarshal([]byte(doc), &r))

	v, err := r.Value()
	require.NoError(t, err)
	assert.JSONEq(t, doc, v.(string))

	var scanned domain.RawJSON
	require.NoError(t, scanned.Scan(v))
	out, err := json.Marshal(scanned)
	require.NoError(t, err)
	assert.JSONEq(t, doc, string(out))

	var empty domain.RawJSON
	out, err = json.Marshal(empty)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(out))
}

func TestDate_JSONAndScan(t *testing.T) {
	var d domain.Date
	require.NoError(t, json.Unmarshal([]byte(`"2026-03-14"`), &d))
	assert.Equal(t, 2026, d.Year())

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2026-03-14"`, string(out))

	var zero domain.Date
	out, err = json.Marshal(zero)
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))

	var scanned domain.Date
	require.NoError(t, scanned.Scan("2026-03-14 00:00:00+00:00"))
	assert.True(t, scanned.Equal(d.Time))

	require.NoError(t, scanned.Scan(time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)))
	assert.True(t, scanned.Equal(d.Time))
}

func TestClockHelpers(t *testing.T) {
	d, err := domain.ParseClock("01:30:15")
	require.NoError(t, err)
	assert.Equal(t, time.Hour+30*time.Minute+15*time.Second, d)

	d, err = domain.ParseClock("26:05")
	require.NoError(t, err)
	assert.Equal(t, "26:05:00", domain.FormatClock(d))

	_, err = domain.ParseClock("1:xx")
	assert.Error(t, err)

	a, b := "02:15:00", "00:50:00"
	total := domain.ClockSum(&a, &b, nil)
	assert.Equal(t, "3:05", domain.FormatHoursMinutes(total))
}

func TestLogID_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(domain.LogID{ID: 42})
	require.NoError(t, err)
	assert.Equal(t, "42", string(out))

	out, err = json.Marshal(domain.LogID{Pending: "pending_3_emp_9"})
	require.NoError(t, err)
	assert.Equal(t, `"pending_3_emp_9"`, string(out))
}
