package core

import (
	"encoding/json"
	"testing"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2024-06-10", true},
		{" 2024-06-10 ", true},
		{"2024-6-1", false},
		{"10/06/2024", false},
		{"", false},
	}
	for i, tc := range cases {
		d, err := ParseDate(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
		if tc.ok && d.String() != "2024-06-10" {
			t.Fatalf("case %d got %q", i, d.String())
		}
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2024, 6, 10)
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"2024-06-10"` {
		t.Fatalf("got %s", data)
	}

	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !SameDay(back.Time, d.Time) {
		t.Fatalf("round trip changed the date: %v != %v", back, d)
	}
}

func TestDateJSONZero(t *testing.T) {
	var d Date
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `""` {
		t.Fatalf("zero date should marshal empty, got %s", data)
	}

	var back Date
	if err := json.Unmarshal([]byte(`""`), &back); err != nil {
		t.Fatalf("unmarshal empty: %v", err)
	}
	if !back.IsZero() {
		t.Fatalf("expected zero date")
	}
}

func TestRecordValidate(t *testing.T) {
	good := Record{Label: "Acme", Date: NewDate(2024, 6, 10), Value: 500}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Record{
		{Label: "", Date: NewDate(2024, 6, 10), Value: 500},
		{Label: "   ", Date: NewDate(2024, 6, 10), Value: 500},
		{Label: "Acme", Value: 500}, // zero date
		{Label: "Acme", Date: NewDate(2024, 6, 10), Value: -1},
	}
	for i, r := range bads {
		if err := r.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTimeEntryDuration(t *testing.T) {
	closed := TimeEntry{StartTime: 1000, EndTime: 4000}
	if closed.Open() {
		t.Fatalf("closed entry reported open")
	}
	if got := closed.Duration(99999); got != 3000 {
		t.Fatalf("closed duration ignores now, got %d", got)
	}

	open := TimeEntry{StartTime: 1000}
	if !open.Open() {
		t.Fatalf("open entry reported closed")
	}
	if got := open.Duration(5000); got != 4000 {
		t.Fatalf("open duration, got %d", got)
	}
}
