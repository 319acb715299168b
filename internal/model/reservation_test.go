package model

import (
	"errors"
	"math"
	"testing"
)

func rng(t *testing.T, start, end string) DateRange {
	t.Helper()
	s, err := ParseDate(start)
	if err != nil {
		t.Fatalf("parse %q: %v", start, err)
	}
	e, err := ParseDate(end)
	if err != nil {
		t.Fatalf("parse %q: %v", end, err)
	}
	return DateRange{Start: s, End: e}
}

func TestDateRangeOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b [2]string
		want bool
	}{
		{name: "touching boundary", a: [2]string{"2025-01-01", "2025-01-05"}, b: [2]string{"2025-01-05", "2025-01-10"}, want: false},
		{name: "partial overlap", a: [2]string{"2025-01-01", "2025-01-05"}, b: [2]string{"2025-01-04", "2025-01-10"}, want: true},
		{name: "contained", a: [2]string{"2025-01-01", "2025-01-10"}, b: [2]string{"2025-01-03", "2025-01-04"}, want: true},
		{name: "identical", a: [2]string{"2025-01-01", "2025-01-05"}, b: [2]string{"2025-01-01", "2025-01-05"}, want: true},
		{name: "disjoint", a: [2]string{"2025-01-01", "2025-01-03"}, b: [2]string{"2025-02-01", "2025-02-03"}, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := rng(t, tc.a[0], tc.a[1])
			b := rng(t, tc.b[0], tc.b[1])
			if got := a.Overlaps(b); got != tc.want {
				t.Fatalf("a.Overlaps(b) = %v, want %v", got, tc.want)
			}
			if got := b.Overlaps(a); got != tc.want {
				t.Fatalf("b.Overlaps(a) = %v, want %v (not symmetric)", got, tc.want)
			}
		})
	}
}

func TestDateRangeValidate(t *testing.T) {
	cases := []struct {
		name       string
		start, end string
		wantErr    bool
	}{
		{name: "valid", start: "2025-01-01", end: "2025-01-02"},
		{name: "zero length", start: "2025-01-01", end: "2025-01-01", wantErr: true},
		{name: "inverted", start: "2025-01-05", end: "2025-01-01", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := rng(t, tc.start, tc.end).Validate()
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Fatalf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}

	if err := (DateRange{}).Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty range: expected ErrInvalidInput, got %v", err)
	}
}

func TestParseStatus(t *testing.T) {
	cases := []struct {
		input   string
		want    Status
		wantErr bool
	}{
		{input: "PENDING", want: StatusPending},
		{input: " approved ", want: StatusApproved},
		{input: "canceled", want: StatusCanceled},
		{input: "CONFIRMED", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseStatus(tc.input)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Fatalf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Fatalf("ParseStatus(%q) = %q, %v; want %q", tc.input, got, err, tc.want)
			}
		})
	}
}

func TestSearchFilterResolve(t *testing.T) {
	size, number, err := SearchFilter{}.Resolve()
	if err != nil || size != 10 || number != 0 {
		t.Fatalf("defaults = (%d, %d, %v), want (10, 0, nil)", size, number, err)
	}

	s, n := 25, 3
	size, number, err = SearchFilter{PageSize: &s, PageNumber: &n}.Resolve()
	if err != nil || size != 25 || number != 3 {
		t.Fatalf("explicit = (%d, %d, %v), want (25, 3, nil)", size, number, err)
	}

	zero := 0
	if _, _, err := (SearchFilter{PageSize: &zero}).Resolve(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("zero page size: expected ErrInvalidInput, got %v", err)
	}
	neg := -1
	if _, _, err := (SearchFilter{PageNumber: &neg}).Resolve(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("negative page: expected ErrInvalidInput, got %v", err)
	}
}

func TestSearchFilterResolveRejectsOffsetOverflow(t *testing.T) {
	cases := []struct {
		name         string
		size, number int
		wantErr      bool
	}{
		{"half max size, page 2", math.MaxInt/2 + 1, 2, true},
		{"max size, page 1", math.MaxInt, 1, false},
		{"max size, page 2", math.MaxInt, 2, true},
		{"size 10, last page that fits", 10, math.MaxInt / 10, false},
		{"size 10, one past", 10, math.MaxInt/10 + 1, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			size, number := tc.size, tc.number
			_, _, err := SearchFilter{PageSize: &size, PageNumber: &number}.Resolve()
			if tc.wantErr && !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error %v", err)
			}
		})
	}
}
