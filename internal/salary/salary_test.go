package salary

import "testing"

func TestParseBounds(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantMin int
		wantMax int
	}{
		{"range with separators truncated to five digits", "月給180,000円〜220,000円", 18000, 22000},
		{"single amount", "時給1,050円", 1050, 1050},
		{"full-width comma", "月給180，000円", 18000, 18000},
		{"full-width digits and comma", "月給１８０，０００円〜２２０，０００円", 18000, 22000},
		{"five digit cap on plain run", "基本給 1800000円", 18000, 18000},
		{"order is positional", "上限30000円 下限20000円", 30000, 20000},
		{"third amount ignored", "100 200 300", 100, 200},
		{"short runs skipped", "賞与 年2回 4.0ヶ月 月給250000", 25000, 25000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := ParseBounds(tt.in)
			if lo == nil || hi == nil {
				t.Fatalf("expected bounds, got nil")
			}
			if *lo != tt.wantMin || *hi != tt.wantMax {
				t.Fatalf("got (%d, %d), want (%d, %d)", *lo, *hi, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestParseBounds_NoAmount(t *testing.T) {
	for _, in := range []string{"", "応相談", "月給20万円", "12-34"} {
		lo, hi := ParseBounds(in)
		if lo != nil || hi != nil {
			t.Fatalf("%q: expected nil bounds, got %v %v", in, lo, hi)
		}
	}
}
