package osscert

import (
	"errors"
	"testing"
	"time"
)

func TestCertificateInfoExpiry(t *testing.T) {
	tests := map[string]struct {
		value   string
		want    time.Time
		wantErr bool
	}{
		"single digit day": {
			value: "Jan 1 00:00:00 2000 GMT",
			want:  time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		"space padded day": {
			value: "Mar  7 08:30:00 2030 GMT",
			want:  time.Date(2030, 3, 7, 8, 30, 0, 0, time.UTC),
		},
		"two digit day": {
			value: "Oct 19 23:59:59 2025 GMT",
			want:  time.Date(2025, 10, 19, 23, 59, 59, 0, time.UTC),
		},
		"rfc3339": {
			value:   "2025-10-19T23:59:59Z",
			wantErr: true,
		},
		"empty": {
			value:   "",
			wantErr: true,
		},
		"missing zone": {
			value:   "Oct 19 23:59:59 2025",
			wantErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			c := &CertificateInfo{ID: "cert-1", ValidEndDate: tc.value}
			got, err := c.Expiry()
			if tc.wantErr {
				if !errors.Is(err, ErrDateParse) {
					t.Fatalf("Expiry() error = %v, want %v", err, ErrDateParse)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expiry() error = %v", err)
			}
			if !got.Equal(tc.want) || got.Location() != time.UTC {
				t.Errorf("Expiry() = %v, want %v UTC", got, tc.want)
			}
		})
	}
}

func TestTimeFormatRoundTrip(t *testing.T) {
	if got := TimeFormat(time.Time{}); got != "" {
		t.Errorf("TimeFormat(zero) = %q, want empty", got)
	}
	parsed, err := ParseTime("")
	if err != nil || !parsed.IsZero() {
		t.Errorf("ParseTime(\"\") = %v, %v; want zero, nil", parsed, err)
	}

	in := time.Date(2025, 3, 1, 10, 0, 0, 0, time.FixedZone("CST", 8*3600))
	out, err := ParseTime(TimeFormat(in))
	if err != nil {
		t.Fatalf("ParseTime() error = %v", err)
	}
	if !out.Equal(in) {
		t.Errorf("round trip = %v, want %v", out, in)
	}
}

func TestExitCode(t *testing.T) {
	tests := map[string]struct {
		err  error
		want int
	}{
		"nil":        {err: nil, want: ExitOK},
		"lookup":     {err: ErrLookupFailure, want: ExitInput},
		"incomplete": {err: ErrIncompleteInput, want: ExitInput},
		"date parse": {err: ErrDateParse, want: ExitRuntime},
		"provider":   {err: &ProviderError{Op: "update certificate", Err: errors.New("x")}, want: ExitRuntime},
		"other":      {err: errors.New("x"), want: ExitRuntime},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := ExitCode(tc.err); got != tc.want {
				t.Errorf("ExitCode() = %d, want %d", got, tc.want)
			}
		})
	}
}
