package synonym

import "testing"

func TestFindCanonicalRelativeDay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"lịch hôm nay có gì", "hôm nay"},
		{"lich hom nay co gi", "hôm nay"},
		{"ngày mai họp không", "ngày mai"},
		{"tuần sau thì sao", "tuần sau"},
		{"tuần tới có lịch gì", "tuần sau"},
		{"lịch tuần này", "tuần này"},
		{"chuyện khác hẳn", ""},
	}

	for _, tt := range tests {
		if got := FindCanonical(tt.input, RelativeDay); got != tt.want {
			t.Errorf("FindCanonical(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFindCanonicalLeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"lịch của hiệu trưởng", "hiệu trưởng"},
		{"lich cua hieu truong hom nay", "hiệu trưởng"},
		{"phó hiệu trưởng tuần này", "phó hiệu trưởng"},
		{"pht có họp không", "phó hiệu trưởng"},
		{"trưởng phòng đào tạo", "trưởng phòng"},
		{"sinh viên năm nhất", ""},
	}

	for _, tt := range tests {
		if got := FindCanonical(tt.input, Leader); got != tt.want {
			t.Errorf("FindCanonical(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFindCanonicalWeekdayWholeWord(t *testing.T) {
	t.Parallel()

	if got := FindCanonical("thứ 5 có lịch gì", Weekday); got != "thứ 5" {
		t.Errorf("got %q, want %q", got, "thứ 5")
	}
	if got := FindCanonical("t2 họp không", Weekday); got != "thứ 2" {
		t.Errorf("got %q, want %q", got, "thứ 2")
	}
	// "cn" must not match inside another token
	if got := FindCanonical("công nghệ thông tin", Weekday); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestFindCanonicalDeterministic(t *testing.T) {
	t.Parallel()

	// "tuần sau" contains "tuần"; the more specific entry is declared
	// first and must always win.
	for range 50 {
		if got := FindCanonical("lịch tuần sau", RelativeDay); got != "tuần sau" {
			t.Fatalf("got %q, want %q", got, "tuần sau")
		}
	}
}

func TestContainsAny(t *testing.T) {
	t.Parallel()

	if !ContainsAny("xin chào bạn", GreetingKeywords) {
		t.Error("greeting not detected")
	}
	if !ContainsAny("cam on nhieu", ThanksKeywords) {
		t.Error("folded thanks not detected")
	}
	if ContainsAny("lịch họp ngày mai", GreetingKeywords) {
		t.Error("false greeting match")
	}
}
